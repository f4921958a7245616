package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

const presignedURLExpiry = 15 * time.Minute

type DocumentService interface {
	Upload(ctx context.Context, document *models.Document, reader io.Reader, size int64, contentType string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Document, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	storageSvc   StorageService
	bucket       string
}

func NewDocumentService(documentRepo repositories.DocumentRepository, storageSvc StorageService, bucket string) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		storageSvc:   storageSvc,
		bucket:       bucket,
	}
}

// Upload stores the file bytes first and the row second, so a failed insert
// never leaves a row pointing at a missing object.
func (s *documentService) Upload(ctx context.Context, document *models.Document, reader io.Reader, size int64, contentType string) error {
	if document.Name == "" {
		return errors.New("document name is required")
	}
	if document.DocumentType == "" {
		return errors.New("document type is required")
	}

	document.ID = uuid.New()
	objectName := s.objectName(document)

	if err := s.storageSvc.UploadObject(ctx, s.bucket, objectName, reader, size, contentType); err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	document.FileURL = objectName
	if err := s.documentRepo.Create(ctx, document); err != nil {
		// Best effort: do not leave an unreferenced object behind
		s.storageSvc.DeleteObject(ctx, s.bucket, objectName)
		return err
	}

	return nil
}

func (s *documentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.documentRepo.GetByID(ctx, id)
}

func (s *documentService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storageSvc.GetPresignedURL(ctx, s.bucket, document.FileURL, presignedURLExpiry)
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.storageSvc.DeleteObject(ctx, s.bucket, document.FileURL); err != nil {
		// Row is gone; an orphaned object is recoverable by a storage sweep
		return fmt.Errorf("document removed but object deletion failed: %w", err)
	}
	return nil
}

func (s *documentService) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	return s.documentRepo.ListByProperty(ctx, propertyID, limit, offset)
}

func (s *documentService) objectName(document *models.Document) string {
	return fmt.Sprintf("properties/%s/documents/%s/%s", document.PropertyID, document.ID, document.Name)
}
