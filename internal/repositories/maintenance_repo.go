package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, request *models.MaintenanceRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)
	ListByRequester(ctx context.Context, requestedBy uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)

	AddImage(ctx context.Context, image *models.MaintenanceImage) error
	ListImages(ctx context.Context, maintenanceID uuid.UUID) ([]*models.MaintenanceImage, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

type maintenanceRepo struct {
	db Database
}

func NewMaintenanceRepo(db Database) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

const maintenanceColumns = `id, property_id, requested_by, title, description, priority, status, requested_date, scheduled_date, resolved_date, created_at, updated_at`

func (r *maintenanceRepo) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, property_id, requested_by, title, description, priority, status, requested_date, scheduled_date, resolved_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, request.ID, request.PropertyID, request.RequestedBy, request.Title, request.Description, request.Priority, request.Status, request.RequestedDate, request.ScheduledDate, request.ResolvedDate)
	return err
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	request := &models.MaintenanceRequest{}
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&request.ID, &request.PropertyID, &request.RequestedBy, &request.Title, &request.Description, &request.Priority, &request.Status, &request.RequestedDate, &request.ScheduledDate, &request.ResolvedDate, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *maintenanceRepo) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET title = $1, description = $2, priority = $3, status = $4, scheduled_date = $5, resolved_date = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, request.Title, request.Description, request.Priority, request.Status, request.ScheduledDate, request.ResolvedDate, request.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM maintenance_requests WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepo) list(ctx context.Context, query string, args ...any) ([]*models.MaintenanceRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.MaintenanceRequest
	for rows.Next() {
		request := &models.MaintenanceRequest{}
		if err := rows.Scan(&request.ID, &request.PropertyID, &request.RequestedBy, &request.Title, &request.Description, &request.Priority, &request.Status, &request.RequestedDate, &request.ScheduledDate, &request.ResolvedDate, &request.CreatedAt, &request.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *maintenanceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM maintenance_requests
		WHERE property_id = $1
		ORDER BY requested_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, propertyID, limit, offset)
}

func (r *maintenanceRepo) ListByRequester(ctx context.Context, requestedBy uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM maintenance_requests
		WHERE requested_by = $1
		ORDER BY requested_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, requestedBy, limit, offset)
}

func (r *maintenanceRepo) AddImage(ctx context.Context, image *models.MaintenanceImage) error {
	query := `
		INSERT INTO maintenance_images (id, maintenance_id, image_url, image_type, notes, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, image.ID, image.MaintenanceID, image.ImageURL, image.ImageType, image.Notes, image.UploadedBy)
	return err
}

func (r *maintenanceRepo) ListImages(ctx context.Context, maintenanceID uuid.UUID) ([]*models.MaintenanceImage, error) {
	query := `
		SELECT id, maintenance_id, image_url, image_type, notes, uploaded_by, created_at
		FROM maintenance_images
		WHERE maintenance_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, maintenanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.MaintenanceImage
	for rows.Next() {
		image := &models.MaintenanceImage{}
		if err := rows.Scan(&image.ID, &image.MaintenanceID, &image.ImageURL, &image.ImageType, &image.Notes, &image.UploadedBy, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *maintenanceRepo) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	query := `DELETE FROM maintenance_images WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, imageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
