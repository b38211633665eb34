package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ShortlistServiceTestSuite struct {
	suite.Suite
	store        *MockShortlistStore
	propertyRepo *MockPropertyRepository
	cache        *MockCacheService
	service      *shortlistService
	session      models.Session
	clock        time.Time
	ctx          context.Context
}

func (suite *ShortlistServiceTestSuite) SetupTest() {
	suite.store = &MockShortlistStore{}
	suite.propertyRepo = &MockPropertyRepository{}
	suite.cache = &MockCacheService{}
	suite.store.Test(suite.T())
	suite.propertyRepo.Test(suite.T())
	suite.cache.Test(suite.T())

	properties := NewPropertyService(suite.propertyRepo, &MockLeaseRepository{}, &MockAccessService{}, suite.cache)
	suite.service = NewShortlistService(suite.store, properties).(*shortlistService)
	suite.clock = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.clock }
	suite.session = newSession(uuid.New(), models.RoleTenant)
	suite.ctx = context.Background()
}

func (suite *ShortlistServiceTestSuite) TearDownTest() {
	suite.store.AssertExpectations(suite.T())
	suite.propertyRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestShortlistServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShortlistServiceTestSuite))
}

func (suite *ShortlistServiceTestSuite) cachedProperty() *models.Property {
	p := &models.Property{ID: uuid.New(), Title: "Loft", City: "Porto", Status: models.PropertyStatusAvailable}
	suite.cache.On("GetProperty", suite.ctx, p.ID).Return(p, nil).Once()
	return p
}

func (suite *ShortlistServiceTestSuite) TestAddComparison_UsesCapacity() {
	p := suite.cachedProperty()
	suite.store.On("Add", suite.ctx, models.ShortlistComparison, suite.session.UserID(), p.Snapshot(suite.clock), models.ComparisonCapacity).
		Return(models.AtCapacity, nil).Once()

	result, err := suite.service.Add(suite.ctx, suite.session, models.ShortlistComparison, p.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AtCapacity, result)
}

func (suite *ShortlistServiceTestSuite) TestAddFavorite_Unbounded() {
	p := suite.cachedProperty()
	suite.store.On("Add", suite.ctx, models.ShortlistFavorites, suite.session.UserID(), mock.AnythingOfType("models.PropertySnapshot"), 0).
		Return(models.Added, nil).Once()

	result, err := suite.service.Add(suite.ctx, suite.session, models.ShortlistFavorites, p.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.Added, result)
}

func (suite *ShortlistServiceTestSuite) TestAdd_UnknownKind() {
	_, err := suite.service.Add(suite.ctx, suite.session, models.ShortlistKind("wishlist"), uuid.New())
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
}

func (suite *ShortlistServiceTestSuite) TestList_OrderedByAddedAt() {
	first := models.PropertySnapshot{ID: uuid.New(), AddedAt: suite.clock.Add(-time.Hour)}
	second := models.PropertySnapshot{ID: uuid.New(), AddedAt: suite.clock}
	suite.store.On("List", suite.ctx, models.ShortlistComparison, suite.session.UserID()).
		Return([]models.PropertySnapshot{second, first}, nil).Once()

	items, err := suite.service.List(suite.ctx, suite.session, models.ShortlistComparison)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 2)
	assert.Equal(suite.T(), first.ID, items[0].ID)
	assert.Equal(suite.T(), second.ID, items[1].ID)
}

func (suite *ShortlistServiceTestSuite) TestStoreFailure() {
	suite.store.On("Clear", suite.ctx, models.ShortlistFavorites, suite.session.UserID()).Return(errors.New("redis down")).Once()

	err := suite.service.Clear(suite.ctx, suite.session, models.ShortlistFavorites)
	assert.True(suite.T(), errors.Is(err, common.ErrInternal))
}
