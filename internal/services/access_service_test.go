package services

import (
	"context"
	"errors"
	"testing"

	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AccessServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockPropertyRepository
	service    AccessService
	propertyID uuid.UUID
	ownerID    uuid.UUID
	ctx        context.Context
}

func (suite *AccessServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockPropertyRepository{}
	suite.mockRepo.Test(suite.T())
	suite.service = NewAccessService(suite.mockRepo)
	suite.propertyID = uuid.New()
	suite.ownerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *AccessServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAccessServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceTestSuite))
}

func (suite *AccessServiceTestSuite) relations(userID uuid.UUID, manager, agent bool) {
	suite.mockRepo.On("Relations", suite.ctx, suite.propertyID, userID).Return(&models.PropertyRelations{
		PropertyID:     suite.propertyID,
		OwnerID:        suite.ownerID,
		IsManager:      manager,
		IsActiveAgent:  agent,
		PropertyExists: true,
	}, nil).Once()
}

func (suite *AccessServiceTestSuite) TestAdminBypassesRelations() {
	session := newSession(uuid.New(), models.RoleAdmin)
	err := suite.service.Authorize(suite.ctx, session, ActionPropertyDelete, &suite.propertyID)
	assert.NoError(suite.T(), err)
}

// Held roles grant access even when another role is active.
func (suite *AccessServiceTestSuite) TestHeldRoleNotActiveRole() {
	session, err := models.NewSession(uuid.New(), models.NewRoleSet(models.RoleTenant, models.RoleModerator), models.RoleTenant)
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.service.Authorize(suite.ctx, session, ActionKYCReview, nil))
}

func (suite *AccessServiceTestSuite) TestOwnerGrant() {
	session := newSession(suite.ownerID, models.RoleLandlord)
	suite.relations(suite.ownerID, false, false)

	assert.NoError(suite.T(), suite.service.Authorize(suite.ctx, session, ActionPropertyDelete, &suite.propertyID))
}

func (suite *AccessServiceTestSuite) TestPolicyTable() {
	userID := uuid.New()
	cases := []struct {
		name    string
		action  Action
		manager bool
		agent   bool
		allowed bool
	}{
		{"manager updates", ActionPropertyUpdate, true, false, true},
		{"agent updates", ActionPropertyUpdate, false, true, true},
		{"manager cannot delete", ActionPropertyDelete, true, false, false},
		{"agent cannot delete", ActionPropertyDelete, false, true, false},
		{"agent creates lease", ActionLeaseCreate, false, true, true},
		{"agent cannot edit lease", ActionLeaseUpdate, false, true, false},
		{"manager records payment", ActionPaymentRecord, true, false, true},
		{"agent cannot assign agents", ActionAgentAssign, false, true, false},
		{"stranger denied", ActionPropertyTenants, false, false, false},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			session := newSession(userID, models.RoleAgent, models.RoleManager)
			suite.relations(userID, tc.manager, tc.agent)

			err := suite.service.Authorize(suite.ctx, session, tc.action, &suite.propertyID)
			if tc.allowed {
				assert.NoError(suite.T(), err)
			} else {
				assert.True(suite.T(), errors.Is(err, common.ErrPermissionDenied), "got %v", err)
			}
		})
	}
}

func (suite *AccessServiceTestSuite) TestGlobalActionWithoutProperty() {
	session := newSession(uuid.New(), models.RoleTenant)
	err := suite.service.Authorize(suite.ctx, session, ActionPropertyCreate, nil)
	assert.True(suite.T(), errors.Is(err, common.ErrPermissionDenied))
}

func (suite *AccessServiceTestSuite) TestMissingProperty() {
	userID := uuid.New()
	session := newSession(userID, models.RoleLandlord)
	suite.mockRepo.On("Relations", suite.ctx, suite.propertyID, userID).Return(nil, pgx.ErrNoRows).Once()

	err := suite.service.Authorize(suite.ctx, session, ActionPropertyUpdate, &suite.propertyID)
	assert.True(suite.T(), errors.Is(err, common.ErrNotFound))
}

func (suite *AccessServiceTestSuite) TestUnknownAction() {
	session := newSession(uuid.New(), models.RoleAdmin)
	err := suite.service.Authorize(suite.ctx, session, Action("property.teleport"), nil)
	assert.True(suite.T(), errors.Is(err, common.ErrInternal))
}
