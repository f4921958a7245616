package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rentfolio/internal/caching"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// TxBeginner opens database transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProvisionRenterRequest carries everything needed to create a renter and
// attach them to a property in one shot.
type ProvisionRenterRequest struct {
	PropertyID uuid.UUID
	Email      string
	Password   string
	FullName   string
	Username   string
}

type TenancyService interface {
	AssignRenter(ctx context.Context, propertyID, profileID uuid.UUID) error
	ProvisionRenter(ctx context.Context, req *ProvisionRenterRequest) (*models.Profile, error)
	RemoveRenter(ctx context.Context, propertyID uuid.UUID) error
}

// tenancyService owns the pool directly because renter provisioning writes
// users, profiles and properties inside a single transaction.
type tenancyService struct {
	pool         TxBeginner
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	propertyRepo repositories.PropertyRepository
	cache        caching.CacheService
}

func NewTenancyService(pool TxBeginner, userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository, propertyRepo repositories.PropertyRepository, cache caching.CacheService) TenancyService {
	return &tenancyService{
		pool:         pool,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		propertyRepo: propertyRepo,
		cache:        cache,
	}
}

// AssignRenter links an existing renter profile to a property.
func (s *tenancyService) AssignRenter(ctx context.Context, propertyID, profileID uuid.UUID) error {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return errors.New("property not found")
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return errors.New("profile not found")
	}
	if profile.Role != models.RoleRenter {
		return errors.New("profile is not a renter")
	}

	if err := s.propertyRepo.AssignTenant(ctx, propertyID, &profileID); err != nil {
		return err
	}
	s.invalidate(ctx, property, &profileID)
	return nil
}

// ProvisionRenter creates the auth identity, the renter profile and the
// property link atomically. Any failure rolls the whole thing back so a
// half-created renter never leaks into the system.
func (s *tenancyService) ProvisionRenter(ctx context.Context, req *ProvisionRenterRequest) (*models.Profile, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if req.Username == "" {
		return nil, errors.New("username is required")
	}

	property, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, errors.New("property not found")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, errors.New("a user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: string(hash),
		Status:       "active",
	}
	profile := &models.Profile{
		ID:       userID,
		Username: &req.Username,
		Role:     models.RoleRenter,
	}
	if req.FullName != "" {
		profile.FullName = &req.FullName
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.CreateTx(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.profileRepo.CreateTx(ctx, tx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if err := s.propertyRepo.AssignTenantTx(ctx, tx, req.PropertyID, &userID); err != nil {
		return nil, fmt.Errorf("failed to assign property: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, property, &userID)
	return profile, nil
}

// RemoveRenter clears the tenant link on a property.
func (s *tenancyService) RemoveRenter(ctx context.Context, propertyID uuid.UUID) error {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return errors.New("property not found")
	}
	if err := s.propertyRepo.AssignTenant(ctx, propertyID, nil); err != nil {
		return err
	}
	s.invalidate(ctx, property, property.TenantID)
	return nil
}

func (s *tenancyService) invalidate(ctx context.Context, property *models.Property, tenantID *uuid.UUID) {
	if err := s.cache.DeleteProperty(ctx, property.ID); err != nil {
		log.Printf("WARN: failed to invalidate property cache: %v", err)
	}
	s.cache.DeletePropertyList(ctx, property.OwnerID)
	if property.TenantID != nil {
		s.cache.DeletePropertyList(ctx, *property.TenantID)
	}
	if tenantID != nil {
		s.cache.DeletePropertyList(ctx, *tenantID)
	}
}
