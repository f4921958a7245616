package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService is the shared query cache. Keys are namespaced by resource
// kind and id; every mutation path invalidates exactly the keys it affects.
type CacheService interface {
	// Profile caching
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error

	// Property caching
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error
	DeleteProperty(ctx context.Context, propertyID uuid.UUID) error

	// Property list caching, keyed by the scoping profile (owner or renter)
	// plus the requested page. Invalidation drops every page for the scope.
	GetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*models.Property, error)
	SetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int, properties []*models.Property, ttl time.Duration) error
	DeletePropertyList(ctx context.Context, scopeID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	KeysByPattern(ctx context.Context, pattern string) ([]string, error)
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	key := fmt.Sprintf("rentfolio:profile:%s", profileID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *redisCacheService) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	key := fmt.Sprintf("rentfolio:profile:%s", profile.ID.String())
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	key := fmt.Sprintf("rentfolio:profile:%s", profileID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	key := fmt.Sprintf("rentfolio:property:%s", propertyID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var property models.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *redisCacheService) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	key := fmt.Sprintf("rentfolio:property:%s", property.ID.String())
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProperty(ctx context.Context, propertyID uuid.UUID) error {
	key := fmt.Sprintf("rentfolio:property:%s", propertyID.String())
	return r.client.Del(ctx, key).Err()
}

func propertyListKey(scopeID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("rentfolio:properties:%s:%d:%d", scopeID.String(), limit, offset)
}

func (r *redisCacheService) GetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	data, err := r.client.Get(ctx, propertyListKey(scopeID, limit, offset)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var properties []*models.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *redisCacheService) SetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int, properties []*models.Property, ttl time.Duration) error {
	data, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, propertyListKey(scopeID, limit, offset), data, ttl).Err()
}

func (r *redisCacheService) DeletePropertyList(ctx context.Context, scopeID uuid.UUID) error {
	return r.DeleteByPattern(ctx, fmt.Sprintf("rentfolio:properties:%s:*", scopeID.String()))
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("rentfolio:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) KeysByPattern(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

func (r *redisCacheService) DeleteByPattern(ctx context.Context, pattern string) error {
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
