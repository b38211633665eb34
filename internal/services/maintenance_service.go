package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MaintenanceInput is a new maintenance request.
type MaintenanceInput struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Priority    models.MaintenancePriority `json:"priority"`
}

type MaintenanceService interface {
	Create(ctx context.Context, session models.Session, propertyID uuid.UUID, input MaintenanceInput) (*models.MaintenanceRequest, error)
	ListForProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, session models.Session, id uuid.UUID, status models.MaintenanceStatus) (*models.MaintenanceRequest, error)
	AssignVendor(ctx context.Context, session models.Session, id, vendorID uuid.UUID) (*models.MaintenanceRequest, error)
}

type maintenanceService struct {
	maintenanceRepo repositories.MaintenanceRepository
	leaseRepo       repositories.LeaseRepository
	userRoleRepo    repositories.UserRoleRepository
	access          AccessService
}

func NewMaintenanceService(maintenanceRepo repositories.MaintenanceRepository, leaseRepo repositories.LeaseRepository, userRoleRepo repositories.UserRoleRepository, access AccessService) MaintenanceService {
	return &maintenanceService{
		maintenanceRepo: maintenanceRepo,
		leaseRepo:       leaseRepo,
		userRoleRepo:    userRoleRepo,
		access:          access,
	}
}

func (s *maintenanceService) isActiveTenant(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	tenants, err := s.leaseRepo.ListActiveTenants(ctx, propertyID)
	if err != nil {
		return false, common.FromDBError(err, "lease")
	}
	for _, t := range tenants {
		if t.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// authorizeProperty admits property managers and, when tenants is set, active tenants.
func (s *maintenanceService) authorizeProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, tenants bool) error {
	err := s.access.Authorize(ctx, session, ActionMaintenanceManage, &propertyID)
	if err == nil || !tenants || !errors.Is(err, common.ErrPermissionDenied) {
		return err
	}
	ok, lookupErr := s.isActiveTenant(ctx, session.UserID(), propertyID)
	if lookupErr != nil {
		return lookupErr
	}
	if !ok {
		return err
	}
	return nil
}

func (s *maintenanceService) Create(ctx context.Context, session models.Session, propertyID uuid.UUID, input MaintenanceInput) (*models.MaintenanceRequest, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := common.ValidateRequiredString(input.Title, "title"); err != nil {
		return nil, err
	}
	if len(input.Title) > 200 {
		return nil, common.NewValidationError("title", "title cannot exceed 200 characters")
	}
	if err := common.SanitizeHTMLField(&input.Description, "description", 5000); err != nil {
		return nil, err
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, common.NewValidationError("priority", "priority must be low, medium, high or urgent")
	}
	if err := s.authorizeProperty(ctx, session, propertyID, true); err != nil {
		return nil, err
	}

	req := &models.MaintenanceRequest{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		RequesterID: session.UserID(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.MaintenanceStatusPending,
		Priority:    input.Priority,
	}
	if err := s.maintenanceRepo.Create(ctx, req); err != nil {
		return nil, common.FromDBError(err, "maintenance request")
	}
	return req, nil
}

func (s *maintenanceService) ListForProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	if err := s.authorizeProperty(ctx, session, propertyID, true); err != nil {
		return nil, err
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	requests, err := s.maintenanceRepo.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "maintenance request")
	}
	return requests, nil
}

func (s *maintenanceService) UpdateStatus(ctx context.Context, session models.Session, id uuid.UUID, status models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	if !status.IsValid() {
		return nil, common.NewValidationError("status", "unknown maintenance status")
	}
	req, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "maintenance request")
	}
	assignedVendor := req.VendorID != nil && *req.VendorID == session.UserID()
	if !assignedVendor {
		if err := s.authorizeProperty(ctx, session, req.PropertyID, false); err != nil {
			return nil, err
		}
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, &common.AppError{
			Code:    common.CodeConflict,
			Message: fmt.Sprintf("a %s request cannot become %s", req.Status, status),
			Details: map[string]string{"status": string(req.Status)},
		}
	}

	updated, err := s.maintenanceRepo.Transition(ctx, id, req.Status, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "maintenance request changed concurrently")
		}
		return nil, common.FromDBError(err, "maintenance request")
	}
	return updated, nil
}

func (s *maintenanceService) AssignVendor(ctx context.Context, session models.Session, id, vendorID uuid.UUID) (*models.MaintenanceRequest, error) {
	req, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "maintenance request")
	}
	if err := s.authorizeProperty(ctx, session, req.PropertyID, false); err != nil {
		return nil, err
	}
	isVendor, err := s.userRoleRepo.HasRole(ctx, vendorID, models.RoleVendor)
	if err != nil {
		return nil, common.FromDBError(err, "user role")
	}
	if !isVendor {
		return nil, common.NewValidationError("vendor_id", "user does not hold the vendor role")
	}

	updated, err := s.maintenanceRepo.AssignVendor(ctx, id, vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "maintenance request is closed")
		}
		return nil, common.FromDBError(err, "maintenance request")
	}
	return updated, nil
}
