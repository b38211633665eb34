package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "estatehub"

type CacheService interface {
	// Property caching
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error
	DeleteProperty(ctx context.Context, propertyID uuid.UUID) error

	// Held role caching
	GetHeldRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, bool, error)
	SetHeldRoles(ctx context.Context, userID uuid.UUID, roles []models.Role, ttl time.Duration) error
	DeleteHeldRoles(ctx context.Context, userID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Pub/sub
	Publish(ctx context.Context, channel string, payload any) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client redis.UniversalClient
}

// NewRedisClient creates a client, accepting plain host:port or redis:// addresses.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	log.Printf("DEBUG: Creating Redis client with address: %s", parsedAddr)

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return client
}

func NewRedisCacheService(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

func PropertyKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("%s:property:%s", keyPrefix, propertyID.String())
}

func HeldRolesKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:roles:%s", keyPrefix, userID.String())
}

func RateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

// NotificationChannel is the pub/sub channel of a user's notifications.
func NotificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("%s:notifications:%s", keyPrefix, userID.String())
}

func (r *redisCacheService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	data, err := r.client.Get(ctx, PropertyKey(propertyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, PropertyKey(property.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProperty(ctx context.Context, propertyID uuid.UUID) error {
	return r.client.Del(ctx, PropertyKey(propertyID)).Err()
}

func (r *redisCacheService) GetHeldRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, bool, error) {
	data, err := r.client.Get(ctx, HeldRolesKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var roles []models.Role
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, false, err
	}
	return roles, true, nil
}

func (r *redisCacheService) SetHeldRoles(ctx context.Context, userID uuid.UUID, roles []models.Role, ttl time.Duration) error {
	if roles == nil {
		roles = []models.Role{}
	}
	data, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, HeldRolesKey(userID), data, ttl).Err()
}

func (r *redisCacheService) DeleteHeldRoles(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, HeldRolesKey(userID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := RateLimitKey(key)
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

func (r *redisCacheService) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
