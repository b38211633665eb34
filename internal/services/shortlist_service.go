package services

import (
	"context"
	"sort"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/google/uuid"
)

// ShortlistService manages the comparison and favorites lists of a user.
type ShortlistService interface {
	Add(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (models.AddResult, error)
	Remove(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) error
	Contains(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (bool, error)
	List(ctx context.Context, session models.Session, kind models.ShortlistKind) ([]models.PropertySnapshot, error)
	Clear(ctx context.Context, session models.Session, kind models.ShortlistKind) error
}

type shortlistService struct {
	store      caching.ShortlistStore
	properties PropertyService
	now        func() time.Time
}

func NewShortlistService(store caching.ShortlistStore, properties PropertyService) ShortlistService {
	return &shortlistService{store: store, properties: properties, now: time.Now}
}

func capacityOf(kind models.ShortlistKind) (int, error) {
	switch kind {
	case models.ShortlistComparison:
		return models.ComparisonCapacity, nil
	case models.ShortlistFavorites:
		return 0, nil
	}
	return 0, common.NewValidationError("kind", "unknown shortlist")
}

func storeError(err error) error {
	return common.WrapError(common.CodeInternal, "shortlist store unavailable", err)
}

func (s *shortlistService) Add(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (models.AddResult, error) {
	capacity, err := capacityOf(kind)
	if err != nil {
		return models.Added, err
	}
	property, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return models.Added, err
	}
	result, err := s.store.Add(ctx, kind, session.UserID(), property.Snapshot(s.now().UTC()), capacity)
	if err != nil {
		return models.Added, storeError(err)
	}
	return result, nil
}

func (s *shortlistService) Remove(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) error {
	if _, err := capacityOf(kind); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, kind, session.UserID(), propertyID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *shortlistService) Contains(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (bool, error) {
	if _, err := capacityOf(kind); err != nil {
		return false, err
	}
	ok, err := s.store.Contains(ctx, kind, session.UserID(), propertyID)
	if err != nil {
		return false, storeError(err)
	}
	return ok, nil
}

// List orders entries by when they were added.
func (s *shortlistService) List(ctx context.Context, session models.Session, kind models.ShortlistKind) ([]models.PropertySnapshot, error) {
	if _, err := capacityOf(kind); err != nil {
		return nil, err
	}
	items, err := s.store.List(ctx, kind, session.UserID())
	if err != nil {
		return nil, storeError(err)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (s *shortlistService) Clear(ctx context.Context, session models.Session, kind models.ShortlistKind) error {
	if _, err := capacityOf(kind); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, kind, session.UserID()); err != nil {
		return storeError(err)
	}
	return nil
}
