package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rentfolio/internal/caching"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

const profileCacheTTL = 10 * time.Minute

// ProfileService reads and updates application-level user records. Reads go
// through the cache; every mutation drops the cached row.
type ProfileService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	SetAvatar(ctx context.Context, id uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (string, error)
	SearchRenters(ctx context.Context, username string, limit, offset int) ([]*models.Profile, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	cacheSvc    caching.CacheService
	storageSvc  StorageService
	bucket      string
}

func NewProfileService(profileRepo repositories.ProfileRepository, cacheSvc caching.CacheService, storageSvc StorageService, bucket string) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		cacheSvc:    cacheSvc,
		storageSvc:  storageSvc,
		bucket:      bucket,
	}
}

func (s *profileService) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if cached, err := s.cacheSvc.GetProfile(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSvc.SetProfile(ctx, profile, profileCacheTTL)
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, profile *models.Profile) error {
	if !profile.Role.Valid() {
		return errors.New("invalid role")
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return err
	}

	s.cacheSvc.DeleteProfile(ctx, profile.ID)
	return nil
}

func (s *profileService) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	if !role.Valid() {
		return errors.New("invalid role")
	}

	if err := s.profileRepo.UpdateRole(ctx, id, role); err != nil {
		return err
	}

	s.cacheSvc.DeleteProfile(ctx, id)
	return nil
}

func (s *profileService) SetAvatar(ctx context.Context, id uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("avatars/%s/%s", id, fileName)
	if err := s.storageSvc.UploadObject(ctx, s.bucket, objectName, reader, size, contentType); err != nil {
		return "", err
	}

	profile.AvatarURL = &objectName
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		s.storageSvc.DeleteObject(ctx, s.bucket, objectName)
		return "", err
	}

	s.cacheSvc.DeleteProfile(ctx, id)
	return objectName, nil
}

func (s *profileService) SearchRenters(ctx context.Context, username string, limit, offset int) ([]*models.Profile, error) {
	return s.profileRepo.SearchByRole(ctx, models.RoleRenter, username, limit, offset)
}
