package services

import (
	"context"
	"errors"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var maxCommission = decimal.NewFromInt(100)

type DelegationService interface {
	AssignAgent(ctx context.Context, session models.Session, propertyID, agentID uuid.UUID, terms models.AgentTerms) (*models.AgentAssignment, error)
	RemoveAgent(ctx context.Context, session models.Session, propertyID, agentID uuid.UUID) error
	ListAgents(ctx context.Context, propertyID uuid.UUID) ([]*models.AgentAssignment, error)
	ListAgentProperties(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.Property, error)

	AssignManager(ctx context.Context, session models.Session, propertyID, managerID uuid.UUID) (*models.ManagerAssignment, error)
	RemoveManager(ctx context.Context, session models.Session, propertyID uuid.UUID) error
	GetManager(ctx context.Context, propertyID uuid.UUID) (*models.ManagerAssignment, error)
	ListManagedProperties(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*models.Property, error)
}

type delegationService struct {
	agentRepo    repositories.AgentAssignmentRepository
	managerRepo  repositories.ManagerAssignmentRepository
	userRoleRepo repositories.UserRoleRepository
	access       AccessService
	now          func() time.Time
}

func NewDelegationService(agentRepo repositories.AgentAssignmentRepository, managerRepo repositories.ManagerAssignmentRepository, userRoleRepo repositories.UserRoleRepository, access AccessService) DelegationService {
	return &delegationService{
		agentRepo:    agentRepo,
		managerRepo:  managerRepo,
		userRoleRepo: userRoleRepo,
		access:       access,
		now:          time.Now,
	}
}

func (s *delegationService) requireRole(ctx context.Context, userID uuid.UUID, role models.Role, field string) error {
	ok, err := s.userRoleRepo.HasRole(ctx, userID, role)
	if err != nil {
		return common.FromDBError(err, "user role")
	}
	if !ok {
		return common.NewValidationError(field, "user does not hold the "+string(role)+" role")
	}
	return nil
}

func (s *delegationService) AssignAgent(ctx context.Context, session models.Session, propertyID, agentID uuid.UUID, terms models.AgentTerms) (*models.AgentAssignment, error) {
	if err := s.access.Authorize(ctx, session, ActionAgentAssign, &propertyID); err != nil {
		return nil, err
	}
	if terms.CommissionPercentage.IsNegative() || terms.CommissionPercentage.GreaterThan(maxCommission) {
		return nil, common.NewValidationError("commission_percentage", "commission must be between 0 and 100")
	}
	if terms.StartDate.IsZero() {
		now := s.now().UTC()
		terms.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if terms.EndDate != nil {
		if err := common.ValidateDateRange(terms.StartDate, *terms.EndDate); err != nil {
			return nil, err
		}
	}
	if err := s.requireRole(ctx, agentID, models.RoleAgent, "agent_id"); err != nil {
		return nil, err
	}

	assignment := &models.AgentAssignment{
		ID:                   uuid.New(),
		PropertyID:           propertyID,
		AgentID:              agentID,
		CommissionPercentage: terms.CommissionPercentage,
		IsExclusive:          terms.IsExclusive,
		StartDate:            terms.StartDate,
		EndDate:              terms.EndDate,
	}
	if err := s.agentRepo.Upsert(ctx, assignment); err != nil {
		if errors.Is(err, repositories.ErrExclusiveAssignment) {
			return nil, common.WrapError(common.CodeConflict, "property has an exclusive agent", err)
		}
		return nil, common.FromDBError(err, "agent assignment")
	}
	return assignment, nil
}

func (s *delegationService) RemoveAgent(ctx context.Context, session models.Session, propertyID, agentID uuid.UUID) error {
	if err := s.access.Authorize(ctx, session, ActionAgentAssign, &propertyID); err != nil {
		return err
	}
	if err := s.agentRepo.Delete(ctx, propertyID, agentID); err != nil {
		return common.FromDBError(err, "agent assignment")
	}
	return nil
}

func (s *delegationService) ListAgents(ctx context.Context, propertyID uuid.UUID) ([]*models.AgentAssignment, error) {
	assignments, err := s.agentRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, common.FromDBError(err, "agent assignment")
	}
	return assignments, nil
}

func (s *delegationService) ListAgentProperties(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	properties, err := s.agentRepo.ListPropertiesByAgent(ctx, agentID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	return properties, nil
}

func (s *delegationService) AssignManager(ctx context.Context, session models.Session, propertyID, managerID uuid.UUID) (*models.ManagerAssignment, error) {
	if err := s.access.Authorize(ctx, session, ActionManagerAssign, &propertyID); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, managerID, models.RoleManager, "manager_id"); err != nil {
		return nil, err
	}

	assignment := &models.ManagerAssignment{
		ID:         uuid.New(),
		PropertyID: propertyID,
		ManagerID:  managerID,
		AssignedBy: session.UserID(),
	}
	if err := s.managerRepo.Upsert(ctx, assignment); err != nil {
		return nil, common.FromDBError(err, "manager assignment")
	}
	return assignment, nil
}

// RemoveManager leaves the property unmanaged. No successor is chosen.
func (s *delegationService) RemoveManager(ctx context.Context, session models.Session, propertyID uuid.UUID) error {
	if err := s.access.Authorize(ctx, session, ActionManagerAssign, &propertyID); err != nil {
		return err
	}
	if err := s.managerRepo.Delete(ctx, propertyID); err != nil {
		return common.FromDBError(err, "manager assignment")
	}
	return nil
}

func (s *delegationService) GetManager(ctx context.Context, propertyID uuid.UUID) (*models.ManagerAssignment, error) {
	assignment, err := s.managerRepo.GetByProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeNotFound, "property has no manager")
		}
		return nil, common.FromDBError(err, "manager assignment")
	}
	return assignment, nil
}

func (s *delegationService) ListManagedProperties(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	properties, err := s.managerRepo.ListPropertiesByManager(ctx, managerID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	return properties, nil
}
