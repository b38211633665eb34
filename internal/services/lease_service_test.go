package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LeaseServiceTestSuite struct {
	suite.Suite
	leaseRepo    *MockLeaseRepository
	propertyRepo *MockPropertyRepository
	profileRepo  *MockProfileRepository
	access       *MockAccessService
	cache        *MockCacheService
	service      LeaseService
	ctx          context.Context

	lease    *models.Lease
	property *models.Property
}

func (suite *LeaseServiceTestSuite) SetupTest() {
	suite.leaseRepo = &MockLeaseRepository{}
	suite.propertyRepo = &MockPropertyRepository{}
	suite.profileRepo = &MockProfileRepository{}
	suite.access = &MockAccessService{}
	suite.cache = &MockCacheService{}
	suite.service = NewLeaseService(suite.leaseRepo, suite.propertyRepo, suite.profileRepo, suite.access, suite.cache)
	suite.ctx = context.Background()

	suite.property = &models.Property{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Title:    "Garden flat",
		Address:  "12 Rua Nova",
		City:     "Porto",
		Country:  "PT",
		Currency: "EUR",
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.lease = &models.Lease{
		ID:          uuid.New(),
		PropertyID:  suite.property.ID,
		TenantID:    uuid.New(),
		StartDate:   start,
		EndDate:     start.AddDate(1, 0, 0),
		MonthlyRent: decimal.Zero,
		Status:      models.LeaseStatusActive,
	}
}

func (suite *LeaseServiceTestSuite) TearDownTest() {
	suite.leaseRepo.AssertExpectations(suite.T())
	suite.propertyRepo.AssertExpectations(suite.T())
	suite.profileRepo.AssertExpectations(suite.T())
	suite.access.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestLeaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LeaseServiceTestSuite))
}

func (suite *LeaseServiceTestSuite) TestGet_TenantReadsOwnLease() {
	tenant := newSession(suite.lease.TenantID, models.RoleTenant)
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)

	lease, err := suite.service.Get(suite.ctx, tenant, suite.lease.ID)

	suite.Require().NoError(err)
	suite.Equal(suite.lease.ID, lease.ID)
	suite.access.AssertNotCalled(suite.T(), "Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LeaseServiceTestSuite) TestGet_StrangerDenied() {
	stranger := newSession(uuid.New(), models.RoleTenant)
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.access.On("Authorize", suite.ctx, stranger, ActionLeaseView, &suite.lease.PropertyID).
		Return(common.NewPermissionDenied(string(ActionLeaseView)))

	_, err := suite.service.Get(suite.ctx, stranger, suite.lease.ID)

	suite.ErrorIs(err, common.ErrPermissionDenied)
}

func (suite *LeaseServiceTestSuite) TestUpdateTerms_TenantCannotEdit() {
	tenant := newSession(suite.lease.TenantID, models.RoleTenant)
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.access.On("Authorize", suite.ctx, tenant, ActionLeaseUpdate, &suite.lease.PropertyID).
		Return(common.NewPermissionDenied(string(ActionLeaseUpdate)))

	_, err := suite.service.UpdateTerms(suite.ctx, tenant, suite.lease.ID, models.LeaseTerms{
		MonthlyRent: decimal.NewFromInt(900),
		StartDate:   suite.lease.StartDate,
		EndDate:     suite.lease.EndDate,
	})

	suite.ErrorIs(err, common.ErrPermissionDenied)
	suite.leaseRepo.AssertNotCalled(suite.T(), "UpdateTerms", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LeaseServiceTestSuite) TestUpdateTerms_Validation() {
	landlord := newSession(suite.property.OwnerID, models.RoleLandlord)

	_, err := suite.service.UpdateTerms(suite.ctx, landlord, suite.lease.ID, models.LeaseTerms{
		MonthlyRent: decimal.NewFromInt(-1),
		StartDate:   suite.lease.StartDate,
		EndDate:     suite.lease.EndDate,
	})
	suite.ErrorIs(err, common.ErrValidation)

	_, err = suite.service.UpdateTerms(suite.ctx, landlord, suite.lease.ID, models.LeaseTerms{
		StartDate: suite.lease.EndDate,
		EndDate:   suite.lease.StartDate,
	})
	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *LeaseServiceTestSuite) TestUpdateTerms_EndedLeaseConflict() {
	landlord := newSession(suite.property.OwnerID, models.RoleLandlord)
	terms := models.LeaseTerms{
		MonthlyRent:   decimal.NewFromInt(900),
		DepositAmount: decimal.NewFromInt(1800),
		StartDate:     suite.lease.StartDate,
		EndDate:       suite.lease.EndDate,
	}
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.access.On("Authorize", suite.ctx, landlord, ActionLeaseUpdate, &suite.lease.PropertyID).Return(nil)
	suite.leaseRepo.On("UpdateTerms", suite.ctx, suite.lease.ID, terms).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.UpdateTerms(suite.ctx, landlord, suite.lease.ID, terms)

	suite.ErrorIs(err, common.ErrConflict)
}

func (suite *LeaseServiceTestSuite) TestEnd_InvalidatesPropertyCache() {
	landlord := newSession(suite.property.OwnerID, models.RoleLandlord)
	ended := *suite.lease
	ended.Status = models.LeaseStatusEnded
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.access.On("Authorize", suite.ctx, landlord, ActionLeaseUpdate, &suite.lease.PropertyID).Return(nil)
	suite.leaseRepo.On("End", suite.ctx, suite.lease.ID).Return(&ended, nil)
	suite.cache.On("DeleteProperty", suite.ctx, suite.property.ID).Return(nil)

	lease, err := suite.service.End(suite.ctx, landlord, suite.lease.ID)

	suite.Require().NoError(err)
	suite.Equal(models.LeaseStatusEnded, lease.Status)
}

func (suite *LeaseServiceTestSuite) TestEnd_AlreadyEnded() {
	landlord := newSession(suite.property.OwnerID, models.RoleLandlord)
	suite.lease.Status = models.LeaseStatusEnded
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.access.On("Authorize", suite.ctx, landlord, ActionLeaseUpdate, &suite.lease.PropertyID).Return(nil)

	_, err := suite.service.End(suite.ctx, landlord, suite.lease.ID)

	suite.ErrorIs(err, common.ErrConflict)
}

func (suite *LeaseServiceTestSuite) TestEndExpiredLeases_TruncatesToDay() {
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	suite.leaseRepo.On("EndExpired", suite.ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)).Return(int64(2), nil)

	ended, err := suite.service.EndExpiredLeases(suite.ctx, now)

	suite.Require().NoError(err)
	suite.Equal(int64(2), ended)
}

func (suite *LeaseServiceTestSuite) TestRenderAgreement() {
	tenant := newSession(suite.lease.TenantID, models.RoleTenant)
	suite.leaseRepo.On("GetByID", suite.ctx, suite.lease.ID).Return(suite.lease, nil)
	suite.propertyRepo.On("GetByID", suite.ctx, suite.property.ID).Return(suite.property, nil)
	suite.profileRepo.On("GetByID", suite.ctx, suite.lease.TenantID).
		Return(&models.Profile{FirstName: "Rita", LastName: "Costa", Email: "rita@example.com"}, nil)
	suite.profileRepo.On("GetByID", suite.ctx, suite.property.OwnerID).
		Return(&models.Profile{FirstName: "Joao", LastName: "Pinto", Email: "joao@example.com"}, nil)

	pdf, err := suite.service.RenderAgreement(suite.ctx, tenant, suite.lease.ID)

	suite.Require().NoError(err)
	suite.True(bytes.HasPrefix(pdf, []byte("%PDF-")))
}
