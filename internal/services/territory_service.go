package services

import (
	"context"
	"strings"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
)

type TerritoryService interface {
	AddTerritory(ctx context.Context, session models.Session, name string, region *string, primary bool) (*models.AgentTerritory, error)
	ListTerritories(ctx context.Context, agentID uuid.UUID) ([]*models.AgentTerritory, error)
	SetPrimary(ctx context.Context, session models.Session, territoryID uuid.UUID) error
	DeleteTerritory(ctx context.Context, session models.Session, territoryID uuid.UUID) error

	UpsertSpecialization(ctx context.Context, session models.Session, propertyType models.PropertyType, certification map[string]any, years int) (*models.AgentSpecialization, error)
	ListSpecializations(ctx context.Context, agentID uuid.UUID) ([]*models.AgentSpecialization, error)
	DeleteSpecialization(ctx context.Context, session models.Session, propertyType models.PropertyType) error
}

type territoryService struct {
	territoryRepo      repositories.TerritoryRepository
	specializationRepo repositories.SpecializationRepository
	access             AccessService
}

func NewTerritoryService(territoryRepo repositories.TerritoryRepository, specializationRepo repositories.SpecializationRepository, access AccessService) TerritoryService {
	return &territoryService{
		territoryRepo:      territoryRepo,
		specializationRepo: specializationRepo,
		access:             access,
	}
}

func (s *territoryService) AddTerritory(ctx context.Context, session models.Session, name string, region *string, primary bool) (*models.AgentTerritory, error) {
	if err := s.access.Authorize(ctx, session, ActionTerritoryManage, nil); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, err
	}
	if len(name) > 120 {
		return nil, common.NewValidationError("name", "name cannot exceed 120 characters")
	}
	if err := common.ValidateOptionalString(region, "region", 120); err != nil {
		return nil, err
	}

	territory := &models.AgentTerritory{
		ID:        uuid.New(),
		AgentID:   session.UserID(),
		Name:      name,
		Region:    region,
		IsPrimary: primary,
	}
	if err := s.territoryRepo.Add(ctx, territory); err != nil {
		return nil, common.FromDBError(err, "territory")
	}
	return territory, nil
}

func (s *territoryService) ListTerritories(ctx context.Context, agentID uuid.UUID) ([]*models.AgentTerritory, error) {
	territories, err := s.territoryRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, common.FromDBError(err, "territory")
	}
	return territories, nil
}

func (s *territoryService) SetPrimary(ctx context.Context, session models.Session, territoryID uuid.UUID) error {
	if err := s.access.Authorize(ctx, session, ActionTerritoryManage, nil); err != nil {
		return err
	}
	if err := s.territoryRepo.SetPrimary(ctx, session.UserID(), territoryID); err != nil {
		return common.FromDBError(err, "territory")
	}
	return nil
}

func (s *territoryService) DeleteTerritory(ctx context.Context, session models.Session, territoryID uuid.UUID) error {
	if err := s.access.Authorize(ctx, session, ActionTerritoryManage, nil); err != nil {
		return err
	}
	if err := s.territoryRepo.Delete(ctx, session.UserID(), territoryID); err != nil {
		return common.FromDBError(err, "territory")
	}
	return nil
}

func (s *territoryService) UpsertSpecialization(ctx context.Context, session models.Session, propertyType models.PropertyType, certification map[string]any, years int) (*models.AgentSpecialization, error) {
	if err := s.access.Authorize(ctx, session, ActionTerritoryManage, nil); err != nil {
		return nil, err
	}
	if !propertyType.IsValid() {
		return nil, common.NewValidationError("property_type", "unknown property type")
	}
	if years < 0 || years > 80 {
		return nil, common.NewValidationError("years_experience", "years of experience must be between 0 and 80")
	}

	spec := &models.AgentSpecialization{
		ID:              uuid.New(),
		AgentID:         session.UserID(),
		PropertyType:    propertyType,
		Certification:   certification,
		YearsExperience: years,
	}
	if err := s.specializationRepo.Upsert(ctx, spec); err != nil {
		return nil, common.FromDBError(err, "specialization")
	}
	return spec, nil
}

func (s *territoryService) ListSpecializations(ctx context.Context, agentID uuid.UUID) ([]*models.AgentSpecialization, error) {
	specs, err := s.specializationRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, common.FromDBError(err, "specialization")
	}
	return specs, nil
}

func (s *territoryService) DeleteSpecialization(ctx context.Context, session models.Session, propertyType models.PropertyType) error {
	if err := s.access.Authorize(ctx, session, ActionTerritoryManage, nil); err != nil {
		return err
	}
	if err := s.specializationRepo.Delete(ctx, session.UserID(), propertyType); err != nil {
		return common.FromDBError(err, "specialization")
	}
	return nil
}
