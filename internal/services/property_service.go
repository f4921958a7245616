package services

import (
	"context"
	"errors"
	"time"

	"rentfolio/internal/caching"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

const propertyCacheTTL = 5 * time.Minute

type PropertyService interface {
	Create(ctx context.Context, ownerID uuid.UUID, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForProfile(ctx context.Context, profileID uuid.UUID, role models.Role, limit, offset int) ([]*models.Property, error)
	AssignTenant(ctx context.Context, propertyID uuid.UUID, tenantID *uuid.UUID) error
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	profileRepo  repositories.ProfileRepository
	cacheSvc     caching.CacheService
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, profileRepo repositories.ProfileRepository, cacheSvc caching.CacheService) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		profileRepo:  profileRepo,
		cacheSvc:     cacheSvc,
	}
}

func (s *propertyService) validate(property *models.Property) error {
	if property.Name == "" {
		return errors.New("property name is required")
	}
	if property.Address == "" || property.City == "" || property.State == "" || property.ZipCode == "" {
		return errors.New("address, city, state and zip code are required")
	}
	if property.Bedrooms < 0 || property.Bathrooms < 0 || property.SquareFeet < 0 {
		return errors.New("bedrooms, bathrooms and square feet cannot be negative")
	}
	if property.MonthlyRent <= 0 {
		return errors.New("monthly rent must be greater than 0")
	}
	if property.SecurityDeposit < 0 {
		return errors.New("security deposit cannot be negative")
	}
	return nil
}

func (s *propertyService) Create(ctx context.Context, ownerID uuid.UUID, property *models.Property) error {
	if err := s.validate(property); err != nil {
		return err
	}

	property.ID = uuid.New()
	property.OwnerID = ownerID

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return err
	}

	s.cacheSvc.DeletePropertyList(ctx, ownerID)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if cached, err := s.cacheSvc.GetProperty(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSvc.SetProperty(ctx, property, propertyCacheTTL)
	return property, nil
}

func (s *propertyService) Update(ctx context.Context, property *models.Property) error {
	if err := s.validate(property); err != nil {
		return err
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return err
	}

	s.invalidate(ctx, property)
	return nil
}

func (s *propertyService) Delete(ctx context.Context, id uuid.UUID) error {
	// Fetch first so the cache keys for the owning profile can be dropped
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, property)
	return nil
}

// ListForProfile returns the property set visible to the profile: owned
// units for owners, assigned units for renters.
func (s *propertyService) ListForProfile(ctx context.Context, profileID uuid.UUID, role models.Role, limit, offset int) ([]*models.Property, error) {
	if cached, err := s.cacheSvc.GetPropertyList(ctx, profileID, limit, offset); err == nil && cached != nil {
		return cached, nil
	}

	var properties []*models.Property
	var err error
	switch role {
	case models.RoleRenter:
		properties, err = s.propertyRepo.ListByTenant(ctx, profileID, limit, offset)
	default:
		properties, err = s.propertyRepo.ListByOwner(ctx, profileID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	s.cacheSvc.SetPropertyList(ctx, profileID, limit, offset, properties, propertyCacheTTL)
	return properties, nil
}

func (s *propertyService) AssignTenant(ctx context.Context, propertyID uuid.UUID, tenantID *uuid.UUID) error {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}

	if tenantID != nil {
		tenant, err := s.profileRepo.GetByID(ctx, *tenantID)
		if err != nil {
			return errors.New("tenant profile not found")
		}
		if tenant.Role != models.RoleRenter {
			return errors.New("assigned profile must have the renter role")
		}
	}

	if err := s.propertyRepo.AssignTenant(ctx, propertyID, tenantID); err != nil {
		return err
	}

	s.invalidate(ctx, property)
	if tenantID != nil {
		s.cacheSvc.DeletePropertyList(ctx, *tenantID)
	}
	return nil
}

// invalidate drops the single-row key plus the list keys of every profile
// the row is visible to.
func (s *propertyService) invalidate(ctx context.Context, property *models.Property) {
	s.cacheSvc.DeleteProperty(ctx, property.ID)
	s.cacheSvc.DeletePropertyList(ctx, property.OwnerID)
	if property.TenantID != nil {
		s.cacheSvc.DeletePropertyList(ctx, *property.TenantID)
	}
}
