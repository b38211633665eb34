package repositories

import (
	"context"
	"errors"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrExclusiveAssignment is returned when another agent holds an active exclusive assignment.
var ErrExclusiveAssignment = errors.New("property has an active exclusive agent")

type AgentAssignmentRepository interface {
	Upsert(ctx context.Context, assignment *models.AgentAssignment) error
	Delete(ctx context.Context, propertyID, agentID uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.AgentAssignment, error)
	ListPropertiesByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.Property, error)
}

type agentAssignmentRepo struct {
	db database.DBTX
}

func NewAgentAssignmentRepo(db database.DBTX) AgentAssignmentRepository {
	return &agentAssignmentRepo{db: db}
}

const agentAssignmentColumns = `id, property_id, agent_id, commission_percentage, is_exclusive, start_date, end_date, created_at, updated_at`

// Upsert writes the (property, agent) row in one statement. Assignments on a property are
// serialized by a row lock on the property. An exclusive assignment ends every other active one.
func (r *agentAssignmentRepo) Upsert(ctx context.Context, a *models.AgentAssignment) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM properties WHERE id = $1 FOR UPDATE`, a.PropertyID).Scan(&locked); err != nil {
			return err
		}

		if !a.IsExclusive {
			var blocked bool
			err := tx.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM agent_properties
					WHERE property_id = $1 AND agent_id <> $2 AND is_exclusive
					AND start_date <= NOW() AND (end_date IS NULL OR end_date > NOW())
				)`, a.PropertyID, a.AgentID).Scan(&blocked)
			if err != nil {
				return err
			}
			if blocked {
				return ErrExclusiveAssignment
			}
		}

		query := `
			INSERT INTO agent_properties (id, property_id, agent_id, commission_percentage, is_exclusive, start_date, end_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			ON CONFLICT (property_id, agent_id) DO UPDATE
			SET commission_percentage = EXCLUDED.commission_percentage,
				is_exclusive = EXCLUDED.is_exclusive,
				start_date = EXCLUDED.start_date,
				end_date = EXCLUDED.end_date,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query, a.ID, a.PropertyID, a.AgentID, a.CommissionPercentage, a.IsExclusive,
			a.StartDate, a.EndDate).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}

		if a.IsExclusive {
			_, err := tx.Exec(ctx, `
				UPDATE agent_properties
				SET end_date = NOW(), updated_at = NOW()
				WHERE property_id = $1 AND agent_id <> $2 AND (end_date IS NULL OR end_date > NOW())
			`, a.PropertyID, a.AgentID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *agentAssignmentRepo) Delete(ctx context.Context, propertyID, agentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agent_properties WHERE property_id = $1 AND agent_id = $2`, propertyID, agentID)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *agentAssignmentRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.AgentAssignment, error) {
	query := `SELECT ` + agentAssignmentColumns + ` FROM agent_properties WHERE property_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAgentAssignment)
}

func (r *agentAssignmentRepo) ListPropertiesByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + prefixed("p", propertyColumns) + `
		FROM properties p
		JOIN agent_properties ap ON ap.property_id = p.id
		WHERE ap.agent_id = $1 AND ap.start_date <= NOW() AND (ap.end_date IS NULL OR ap.end_date > NOW())
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, agentID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func scanAgentAssignment(row rowScanner, a *models.AgentAssignment) error {
	return row.Scan(&a.ID, &a.PropertyID, &a.AgentID, &a.CommissionPercentage, &a.IsExclusive,
		&a.StartDate, &a.EndDate, &a.CreatedAt, &a.UpdatedAt)
}
