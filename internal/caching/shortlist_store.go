package caching

import (
	"context"
	"encoding/json"
	"fmt"

	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ShortlistStore keeps per-user property shortlists as Redis hashes keyed by property id.
type ShortlistStore interface {
	// Add inserts the snapshot unless it is already present or the list holds capacity entries.
	// A capacity of zero means unbounded.
	Add(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID, snapshot models.PropertySnapshot, capacity int) (models.AddResult, error)
	Remove(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) error
	Contains(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) (bool, error)
	List(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) ([]models.PropertySnapshot, error)
	Clear(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) error
}

// addScript returns 0 when added, 1 when already present and 2 when at capacity.
var addScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 1
end
local capacity = tonumber(ARGV[3])
if capacity > 0 and redis.call('HLEN', KEYS[1]) >= capacity then
	return 2
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 0
`)

type redisShortlistStore struct {
	client redis.UniversalClient
}

func NewRedisShortlistStore(client redis.UniversalClient) ShortlistStore {
	return &redisShortlistStore{client: client}
}

func ShortlistKey(kind models.ShortlistKind, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, userID.String())
}

func (s *redisShortlistStore) Add(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID, snapshot models.PropertySnapshot, capacity int) (models.AddResult, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return models.Added, err
	}

	code, err := addScript.Run(ctx, s.client, []string{ShortlistKey(kind, userID)}, snapshot.ID.String(), data, capacity).Int()
	if err != nil {
		return models.Added, err
	}

	switch code {
	case 0:
		return models.Added, nil
	case 1:
		return models.AlreadyPresent, nil
	case 2:
		return models.AtCapacity, nil
	}
	return models.Added, fmt.Errorf("unexpected shortlist script result %d", code)
}

func (s *redisShortlistStore) Remove(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) error {
	return s.client.HDel(ctx, ShortlistKey(kind, userID), propertyID.String()).Err()
}

func (s *redisShortlistStore) Contains(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) (bool, error) {
	return s.client.HExists(ctx, ShortlistKey(kind, userID), propertyID.String()).Result()
}

func (s *redisShortlistStore) List(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) ([]models.PropertySnapshot, error) {
	values, err := s.client.HGetAll(ctx, ShortlistKey(kind, userID)).Result()
	if err != nil {
		return nil, err
	}

	snapshots := make([]models.PropertySnapshot, 0, len(values))
	for _, raw := range values {
		var snapshot models.PropertySnapshot
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *redisShortlistStore) Clear(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) error {
	return s.client.Del(ctx, ShortlistKey(kind, userID)).Err()
}
