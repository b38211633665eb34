package caching

import (
	"context"
	"testing"

	"estatehub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ShortlistStoreTestSuite struct {
	suite.Suite
	server *miniredis.Miniredis
	client *redis.Client
	store  ShortlistStore
	userID uuid.UUID
	ctx    context.Context
}

func (suite *ShortlistStoreTestSuite) SetupTest() {
	suite.server = miniredis.RunT(suite.T())
	suite.client = redis.NewClient(&redis.Options{Addr: suite.server.Addr()})
	suite.store = NewRedisShortlistStore(suite.client)
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *ShortlistStoreTestSuite) TearDownTest() {
	suite.client.Close()
}

func TestShortlistStoreTestSuite(t *testing.T) {
	suite.Run(t, new(ShortlistStoreTestSuite))
}

func snapshot(city string) models.PropertySnapshot {
	return models.PropertySnapshot{
		ID:     uuid.New(),
		Title:  "Flat in " + city,
		City:   city,
		Price:  decimal.NewFromInt(950),
		Status: models.PropertyStatusAvailable,
	}
}

func (suite *ShortlistStoreTestSuite) add(kind models.ShortlistKind, s models.PropertySnapshot, capacity int) models.AddResult {
	result, err := suite.store.Add(suite.ctx, kind, suite.userID, s, capacity)
	require.NoError(suite.T(), err)
	return result
}

func (suite *ShortlistStoreTestSuite) TestComparison_StopsAtCapacity() {
	var first models.PropertySnapshot
	for i := 0; i < models.ComparisonCapacity; i++ {
		s := snapshot("Porto")
		if i == 0 {
			first = s
		}
		assert.Equal(suite.T(), models.Added, suite.add(models.ShortlistComparison, s, models.ComparisonCapacity))
	}

	extra := snapshot("Braga")
	assert.Equal(suite.T(), models.AtCapacity, suite.add(models.ShortlistComparison, extra, models.ComparisonCapacity))

	listed, err := suite.store.List(suite.ctx, models.ShortlistComparison, suite.userID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), listed, models.ComparisonCapacity)

	found, err := suite.store.Contains(suite.ctx, models.ShortlistComparison, suite.userID, extra.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), found)

	// a full list still reports existing members as present
	assert.Equal(suite.T(), models.AlreadyPresent, suite.add(models.ShortlistComparison, first, models.ComparisonCapacity))
}

func (suite *ShortlistStoreTestSuite) TestComparison_RemoveFreesSlot() {
	var last models.PropertySnapshot
	for i := 0; i < models.ComparisonCapacity; i++ {
		last = snapshot("Lisbon")
		suite.add(models.ShortlistComparison, last, models.ComparisonCapacity)
	}
	require.NoError(suite.T(), suite.store.Remove(suite.ctx, models.ShortlistComparison, suite.userID, last.ID))

	assert.Equal(suite.T(), models.Added, suite.add(models.ShortlistComparison, snapshot("Faro"), models.ComparisonCapacity))
}

func (suite *ShortlistStoreTestSuite) TestFavorites_Unbounded() {
	for i := 0; i < 10; i++ {
		assert.Equal(suite.T(), models.Added, suite.add(models.ShortlistFavorites, snapshot("Coimbra"), 0))
	}

	listed, err := suite.store.List(suite.ctx, models.ShortlistFavorites, suite.userID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), listed, 10)
}

func (suite *ShortlistStoreTestSuite) TestListsAreSeparate() {
	s := snapshot("Aveiro")
	suite.add(models.ShortlistFavorites, s, 0)

	assert.Equal(suite.T(), models.Added, suite.add(models.ShortlistComparison, s, models.ComparisonCapacity))
	assert.Equal(suite.T(), models.AlreadyPresent, suite.add(models.ShortlistFavorites, s, 0))
}

func (suite *ShortlistStoreTestSuite) TestList_RoundTripsSnapshot() {
	s := snapshot("Evora")
	suite.add(models.ShortlistFavorites, s, 0)

	listed, err := suite.store.List(suite.ctx, models.ShortlistFavorites, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), listed, 1)
	assert.Equal(suite.T(), s.ID, listed[0].ID)
	assert.True(suite.T(), s.Price.Equal(listed[0].Price))
}

func (suite *ShortlistStoreTestSuite) TestClear() {
	suite.add(models.ShortlistFavorites, snapshot("Sintra"), 0)
	require.NoError(suite.T(), suite.store.Clear(suite.ctx, models.ShortlistFavorites, suite.userID))
	require.NoError(suite.T(), suite.store.Clear(suite.ctx, models.ShortlistFavorites, suite.userID))

	listed, err := suite.store.List(suite.ctx, models.ShortlistFavorites, suite.userID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), listed)
}
