package services

import (
	"context"
	"errors"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Action names a guarded operation.
type Action string

const (
	ActionPropertyCreate    Action = "property.create"
	ActionPropertyUpdate    Action = "property.update"
	ActionPropertyDelete    Action = "property.delete"
	ActionPropertyTenants   Action = "property.tenants"
	ActionAgentAssign       Action = "agent.assign"
	ActionManagerAssign     Action = "manager.assign"
	ActionLeaseCreate       Action = "lease.create"
	ActionLeaseView         Action = "lease.view"
	ActionLeaseUpdate       Action = "lease.update"
	ActionPaymentRecord     Action = "payment.record"
	ActionMaintenanceManage Action = "maintenance.manage"
	ActionKYCReview         Action = "kyc.review"
	ActionRoleManage        Action = "role.manage"
	ActionTerritoryManage   Action = "territory.manage"
)

// policy grants an action to holders of any listed role, and optionally to the property's
// owner, its manager or an actively assigned agent.
type policy struct {
	roles   []models.Role
	owner   bool
	manager bool
	agent   bool
}

func (p policy) propertyScoped() bool {
	return p.owner || p.manager || p.agent
}

var policies = map[Action]policy{
	ActionPropertyCreate:    {roles: []models.Role{models.RoleLandlord, models.RoleAgent, models.RoleAdmin}},
	ActionPropertyUpdate:    {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true, agent: true},
	ActionPropertyDelete:    {roles: []models.Role{models.RoleAdmin}, owner: true},
	ActionPropertyTenants:   {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true, agent: true},
	ActionAgentAssign:       {roles: []models.Role{models.RoleAdmin}, owner: true},
	ActionManagerAssign:     {roles: []models.Role{models.RoleAdmin}, owner: true},
	ActionLeaseCreate:       {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true, agent: true},
	ActionLeaseView:         {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true, agent: true},
	ActionLeaseUpdate:       {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true},
	ActionPaymentRecord:     {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true},
	ActionMaintenanceManage: {roles: []models.Role{models.RoleAdmin}, owner: true, manager: true},
	ActionKYCReview:         {roles: []models.Role{models.RoleAdmin, models.RoleModerator}},
	ActionRoleManage:        {roles: []models.Role{models.RoleAdmin}},
	ActionTerritoryManage:   {roles: []models.Role{models.RoleAgent}},
}

type AccessService interface {
	// Authorize returns nil when the session may perform action, PERMISSION_DENIED otherwise.
	// propertyID is required for the owner and delegate grants and may be nil for global actions.
	Authorize(ctx context.Context, session models.Session, action Action, propertyID *uuid.UUID) error
}

type accessService struct {
	propertyRepo repositories.PropertyRepository
}

func NewAccessService(propertyRepo repositories.PropertyRepository) AccessService {
	return &accessService{propertyRepo: propertyRepo}
}

func (s *accessService) Authorize(ctx context.Context, session models.Session, action Action, propertyID *uuid.UUID) error {
	p, ok := policies[action]
	if !ok {
		return common.NewAppError(common.CodeInternal, "unknown action "+string(action))
	}

	// Held roles decide, not the active one.
	if session.Holds(p.roles...) {
		return nil
	}
	if propertyID == nil || !p.propertyScoped() {
		return common.NewPermissionDenied(string(action))
	}

	rel, err := s.propertyRepo.Relations(ctx, *propertyID, session.UserID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("property")
		}
		return common.FromDBError(err, "property")
	}

	switch {
	case p.owner && rel.OwnerID == session.UserID():
		return nil
	case p.manager && rel.IsManager:
		return nil
	case p.agent && rel.IsActiveAgent:
		return nil
	}
	return common.NewPermissionDenied(string(action))
}
