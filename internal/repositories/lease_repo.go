package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeaseRepository interface {
	Create(ctx context.Context, lease *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	Update(ctx context.Context, lease *models.Lease) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Lease, error)
}

type leaseRepo struct {
	db Database
}

func NewLeaseRepo(db Database) LeaseRepository {
	return &leaseRepo{db: db}
}

const leaseColumns = `id, property_id, tenant_id, start_date, end_date, rent_amount, payment_day, status, created_at, updated_at`

func (r *leaseRepo) Create(ctx context.Context, lease *models.Lease) error {
	query := `
		INSERT INTO leases (id, property_id, tenant_id, start_date, end_date, rent_amount, payment_day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, lease.ID, lease.PropertyID, lease.TenantID, lease.StartDate, lease.EndDate, lease.RentAmount, lease.PaymentDay, lease.Status)
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	lease := &models.Lease{}
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&lease.ID, &lease.PropertyID, &lease.TenantID, &lease.StartDate, &lease.EndDate, &lease.RentAmount, &lease.PaymentDay, &lease.Status, &lease.CreatedAt, &lease.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return lease, nil
}

func (r *leaseRepo) Update(ctx context.Context, lease *models.Lease) error {
	query := `
		UPDATE leases
		SET start_date = $1, end_date = $2, rent_amount = $3, payment_day = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, lease.StartDate, lease.EndDate, lease.RentAmount, lease.PaymentDay, lease.Status, lease.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM leases WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaseRepo) list(ctx context.Context, query string, args ...any) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []*models.Lease
	for rows.Next() {
		lease := &models.Lease{}
		if err := rows.Scan(&lease.ID, &lease.PropertyID, &lease.TenantID, &lease.StartDate, &lease.EndDate, &lease.RentAmount, &lease.PaymentDay, &lease.Status, &lease.CreatedAt, &lease.UpdatedAt); err != nil {
			return nil, err
		}
		leases = append(leases, lease)
	}
	return leases, rows.Err()
}

func (r *leaseRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	query := `
		SELECT ` + leaseColumns + `
		FROM leases
		WHERE property_id = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, propertyID, limit, offset)
}

func (r *leaseRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	query := `
		SELECT ` + leaseColumns + `
		FROM leases
		WHERE tenant_id = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, tenantID, limit, offset)
}

// ListActive returns active leases across all owners. The overdue-payment
// sweep walks these.
func (r *leaseRepo) ListActive(ctx context.Context, limit, offset int) ([]*models.Lease, error) {
	query := `
		SELECT ` + leaseColumns + `
		FROM leases
		WHERE status = 'active'
		ORDER BY start_date DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}
