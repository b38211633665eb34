package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type SpecializationRepository interface {
	Upsert(ctx context.Context, spec *models.AgentSpecialization) error
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentSpecialization, error)
	Delete(ctx context.Context, agentID uuid.UUID, propertyType models.PropertyType) error
}

type specializationRepo struct {
	db database.DBTX
}

func NewSpecializationRepo(db database.DBTX) SpecializationRepository {
	return &specializationRepo{db: db}
}

func (r *specializationRepo) Upsert(ctx context.Context, s *models.AgentSpecialization) error {
	if s.Certification == nil {
		s.Certification = map[string]any{}
	}
	query := `
		INSERT INTO agent_specializations (id, agent_id, property_type, certification, years_experience, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (agent_id, property_type) DO UPDATE
		SET certification = EXCLUDED.certification, years_experience = EXCLUDED.years_experience, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, s.ID, s.AgentID, s.PropertyType, s.Certification, s.YearsExperience).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *specializationRepo) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentSpecialization, error) {
	query := `
		SELECT id, agent_id, property_type, certification, years_experience, created_at, updated_at
		FROM agent_specializations WHERE agent_id = $1
		ORDER BY property_type
	`
	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner, s *models.AgentSpecialization) error {
		return row.Scan(&s.ID, &s.AgentID, &s.PropertyType, &s.Certification, &s.YearsExperience, &s.CreatedAt, &s.UpdatedAt)
	})
}

func (r *specializationRepo) Delete(ctx context.Context, agentID uuid.UUID, propertyType models.PropertyType) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agent_specializations WHERE agent_id = $1 AND property_type = $2`, agentID, propertyType)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}
