package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Property, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error)
	AssignTenant(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) error
	AssignTenantTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, tenantID *uuid.UUID) error
}

type propertyRepo struct {
	db Database
}

func NewPropertyRepo(db Database) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `id, owner_id, tenant_id, name, address, city, state, zip_code, bedrooms, bathrooms, square_feet, monthly_rent, security_deposit, available_from, description, amenities, created_at, updated_at`

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, owner_id, tenant_id, name, address, city, state, zip_code, bedrooms, bathrooms, square_feet, monthly_rent, security_deposit, available_from, description, amenities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		property.ID, property.OwnerID, property.TenantID, property.Name,
		property.Address, property.City, property.State, property.ZipCode,
		property.Bedrooms, property.Bathrooms, property.SquareFeet,
		property.MonthlyRent, property.SecurityDeposit, property.AvailableFrom,
		property.Description, property.Amenities)
	return err
}

func (r *propertyRepo) scanRow(row pgx.Row) (*models.Property, error) {
	property := &models.Property{}
	err := row.Scan(&property.ID, &property.OwnerID, &property.TenantID, &property.Name,
		&property.Address, &property.City, &property.State, &property.ZipCode,
		&property.Bedrooms, &property.Bathrooms, &property.SquareFeet,
		&property.MonthlyRent, &property.SecurityDeposit, &property.AvailableFrom,
		&property.Description, &property.Amenities, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return property, nil
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return r.scanRow(r.db.QueryRow(ctx, query, id))
}

func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET name = $1, address = $2, city = $3, state = $4, zip_code = $5, bedrooms = $6, bathrooms = $7, square_feet = $8, monthly_rent = $9, security_deposit = $10, available_from = $11, description = $12, amenities = $13, updated_at = NOW()
		WHERE id = $14
	`
	tag, err := r.db.Exec(ctx, query,
		property.Name, property.Address, property.City, property.State,
		property.ZipCode, property.Bedrooms, property.Bathrooms,
		property.SquareFeet, property.MonthlyRent, property.SecurityDeposit,
		property.AvailableFrom, property.Description, property.Amenities,
		property.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the property row. Deleting an id that no longer exists
// returns pgx.ErrNoRows rather than succeeding silently.
func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepo) list(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.OwnerID, &property.TenantID, &property.Name,
			&property.Address, &property.City, &property.State, &property.ZipCode,
			&property.Bedrooms, &property.Bathrooms, &property.SquareFeet,
			&property.MonthlyRent, &property.SecurityDeposit, &property.AvailableFrom,
			&property.Description, &property.Amenities, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, rows.Err()
}

func (r *propertyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, ownerID, limit, offset)
}

func (r *propertyRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, tenantID, limit, offset)
}

const assignTenantSQL = `UPDATE properties SET tenant_id = $1, updated_at = NOW() WHERE id = $2`

func (r *propertyRepo) AssignTenant(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx, assignTenantSQL, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepo) AssignTenantTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, tenantID *uuid.UUID) error {
	tag, err := tx.Exec(ctx, assignTenantSQL, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
