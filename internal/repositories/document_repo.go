package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Document, error)
}

type documentRepo struct {
	db Database
}

func NewDocumentRepo(db Database) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (id, property_id, name, document_type, file_url, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, document.ID, document.PropertyID, document.Name, document.DocumentType, document.FileURL, document.UploadedBy)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document := &models.Document{}
	query := `
		SELECT id, property_id, name, document_type, file_url, uploaded_by, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&document.ID, &document.PropertyID, &document.Name, &document.DocumentType, &document.FileURL, &document.UploadedBy, &document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return document, nil
}

func (r *documentRepo) Update(ctx context.Context, document *models.Document) error {
	query := `
		UPDATE documents
		SET name = $1, document_type = $2, file_url = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, document.Name, document.DocumentType, document.FileURL, document.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT id, property_id, name, document_type, file_url, uploaded_by, created_at, updated_at
		FROM documents
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document := &models.Document{}
		if err := rows.Scan(&document.ID, &document.PropertyID, &document.Name, &document.DocumentType, &document.FileURL, &document.UploadedBy, &document.CreatedAt, &document.UpdatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, rows.Err()
}
