package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	CreateTx(ctx context.Context, tx pgx.Tx, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	SearchByRole(ctx context.Context, role models.Role, username string, limit, offset int) ([]*models.Profile, error)
}

type profileRepo struct {
	db Database
}

func NewProfileRepo(db Database) ProfileRepository {
	return &profileRepo{db: db}
}

const insertProfileSQL = `
		INSERT INTO profiles (id, username, full_name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	_, err := r.db.Exec(ctx, insertProfileSQL, profile.ID, profile.Username, profile.FullName, profile.AvatarURL, profile.Role)
	return err
}

func (r *profileRepo) CreateTx(ctx context.Context, tx pgx.Tx, profile *models.Profile) error {
	_, err := tx.Exec(ctx, insertProfileSQL, profile.ID, profile.Username, profile.FullName, profile.AvatarURL, profile.Role)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, username, full_name, avatar_url, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, username, full_name, avatar_url, role, created_at, updated_at
		FROM profiles
		WHERE username = $1
	`
	err := r.db.QueryRow(ctx, query, username).Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET username = $1, full_name = $2, avatar_url = $3, role = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, profile.Username, profile.FullName, profile.AvatarURL, profile.Role, profile.ID)
	return err
}

func (r *profileRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	query := `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, role, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM profiles WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SearchByRole finds profiles of the given role whose username contains the
// supplied fragment. Used by the tenant-assignment search box.
func (r *profileRepo) SearchByRole(ctx context.Context, role models.Role, username string, limit, offset int) ([]*models.Profile, error) {
	query := `
		SELECT id, username, full_name, avatar_url, role, created_at, updated_at
		FROM profiles
		WHERE role = $1 AND username ILIKE '%' || $2 || '%'
		ORDER BY username ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, role, username, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
