package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

type MaintenanceService interface {
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, request *models.MaintenanceRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)
	ListByRequester(ctx context.Context, requestedBy uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)

	AttachImage(ctx context.Context, image *models.MaintenanceImage, fileName string, reader io.Reader, size int64, contentType string) error
	ListImages(ctx context.Context, maintenanceID uuid.UUID) ([]*models.MaintenanceImage, error)
}

type maintenanceService struct {
	maintenanceRepo repositories.MaintenanceRepository
	propertyRepo    repositories.PropertyRepository
	storageSvc      StorageService
	bucket          string
}

func NewMaintenanceService(maintenanceRepo repositories.MaintenanceRepository, propertyRepo repositories.PropertyRepository, storageSvc StorageService, bucket string) MaintenanceService {
	return &maintenanceService{
		maintenanceRepo: maintenanceRepo,
		propertyRepo:    propertyRepo,
		storageSvc:      storageSvc,
		bucket:          bucket,
	}
}

func (s *maintenanceService) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	if request.Title == "" {
		return errors.New("title is required")
	}
	if request.Description == "" {
		return errors.New("description is required")
	}
	if request.Priority == "" {
		request.Priority = "medium"
	}
	if request.Status == "" {
		request.Status = "pending"
	}
	if err := common.ValidateMaintenancePriority(request.Priority); err != nil {
		return err
	}
	if err := common.ValidateMaintenanceStatus(request.Status); err != nil {
		return err
	}

	if _, err := s.propertyRepo.GetByID(ctx, request.PropertyID); err != nil {
		return errors.New("property not found")
	}

	request.ID = uuid.New()
	if request.RequestedDate.IsZero() {
		request.RequestedDate = time.Now()
	}
	return s.maintenanceRepo.Create(ctx, request)
}

func (s *maintenanceService) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	return s.maintenanceRepo.GetByID(ctx, id)
}

func (s *maintenanceService) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	if err := common.ValidateMaintenancePriority(request.Priority); err != nil {
		return err
	}
	if err := common.ValidateMaintenanceStatus(request.Status); err != nil {
		return err
	}
	if request.Status == "resolved" && request.ResolvedDate == nil {
		now := time.Now()
		request.ResolvedDate = &now
	}
	return s.maintenanceRepo.Update(ctx, request)
}

func (s *maintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.maintenanceRepo.Delete(ctx, id)
}

func (s *maintenanceService) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	return s.maintenanceRepo.ListByProperty(ctx, propertyID, limit, offset)
}

func (s *maintenanceService) ListByRequester(ctx context.Context, requestedBy uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	return s.maintenanceRepo.ListByRequester(ctx, requestedBy, limit, offset)
}

func (s *maintenanceService) AttachImage(ctx context.Context, image *models.MaintenanceImage, fileName string, reader io.Reader, size int64, contentType string) error {
	if image.ImageType != "before" && image.ImageType != "after" {
		return errors.New("image type must be 'before' or 'after'")
	}

	if _, err := s.maintenanceRepo.GetByID(ctx, image.MaintenanceID); err != nil {
		return errors.New("maintenance request not found")
	}

	image.ID = uuid.New()
	objectName := fmt.Sprintf("maintenance/%s/images/%s/%s", image.MaintenanceID, image.ID, fileName)

	if err := s.storageSvc.UploadObject(ctx, s.bucket, objectName, reader, size, contentType); err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}

	image.ImageURL = objectName
	if err := s.maintenanceRepo.AddImage(ctx, image); err != nil {
		s.storageSvc.DeleteObject(ctx, s.bucket, objectName)
		return err
	}
	return nil
}

func (s *maintenanceService) ListImages(ctx context.Context, maintenanceID uuid.UUID) ([]*models.MaintenanceImage, error) {
	return s.maintenanceRepo.ListImages(ctx, maintenanceID)
}
