package services

import (
	"context"
	"errors"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

type LeaseService interface {
	Create(ctx context.Context, lease *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	Update(ctx context.Context, lease *models.Lease) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error)
}

type leaseService struct {
	leaseRepo    repositories.LeaseRepository
	propertyRepo repositories.PropertyRepository
	profileRepo  repositories.ProfileRepository
}

func NewLeaseService(leaseRepo repositories.LeaseRepository, propertyRepo repositories.PropertyRepository, profileRepo repositories.ProfileRepository) LeaseService {
	return &leaseService{
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		profileRepo:  profileRepo,
	}
}

func (s *leaseService) validate(lease *models.Lease) error {
	if lease.EndDate.Before(lease.StartDate) {
		return errors.New("end date cannot be before start date")
	}
	if lease.RentAmount <= 0 {
		return errors.New("rent amount must be greater than 0")
	}
	if lease.PaymentDay < 1 || lease.PaymentDay > 31 {
		return errors.New("payment day must be between 1 and 31")
	}
	if err := common.ValidateLeaseStatus(lease.Status); err != nil {
		return err
	}
	return nil
}

func (s *leaseService) Create(ctx context.Context, lease *models.Lease) error {
	if lease.Status == "" {
		lease.Status = "pending"
	}
	if err := s.validate(lease); err != nil {
		return err
	}

	if _, err := s.propertyRepo.GetByID(ctx, lease.PropertyID); err != nil {
		return errors.New("property not found")
	}

	tenant, err := s.profileRepo.GetByID(ctx, lease.TenantID)
	if err != nil {
		return errors.New("tenant profile not found")
	}
	if tenant.Role != models.RoleRenter {
		return errors.New("lease tenant must have the renter role")
	}

	lease.ID = uuid.New()
	return s.leaseRepo.Create(ctx, lease)
}

func (s *leaseService) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return s.leaseRepo.GetByID(ctx, id)
}

func (s *leaseService) Update(ctx context.Context, lease *models.Lease) error {
	if err := s.validate(lease); err != nil {
		return err
	}
	return s.leaseRepo.Update(ctx, lease)
}

func (s *leaseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.leaseRepo.Delete(ctx, id)
}

func (s *leaseService) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	return s.leaseRepo.ListByProperty(ctx, propertyID, limit, offset)
}

func (s *leaseService) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	return s.leaseRepo.ListByTenant(ctx, tenantID, limit, offset)
}
