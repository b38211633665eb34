package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TerritoryRepository interface {
	// Add inserts a territory. The agent's first territory is always primary.
	Add(ctx context.Context, territory *models.AgentTerritory) error
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentTerritory, error)
	// SetPrimary returns pgx.ErrNoRows when the territory does not belong to the agent.
	SetPrimary(ctx context.Context, agentID, territoryID uuid.UUID) error
	// Delete removes a territory and promotes the oldest remaining one if the primary was removed.
	Delete(ctx context.Context, agentID, territoryID uuid.UUID) error
}

type territoryRepo struct {
	db database.DBTX
}

func NewTerritoryRepo(db database.DBTX) TerritoryRepository {
	return &territoryRepo{db: db}
}

// lockAgent serializes territory changes of one agent.
func lockAgent(ctx context.Context, tx pgx.Tx, agentID uuid.UUID) error {
	var id uuid.UUID
	return tx.QueryRow(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, agentID).Scan(&id)
}

func (r *territoryRepo) Add(ctx context.Context, t *models.AgentTerritory) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockAgent(ctx, tx, t.AgentID); err != nil {
			return err
		}

		var hasAny bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM agent_territories WHERE agent_id = $1)`, t.AgentID).Scan(&hasAny); err != nil {
			return err
		}
		if !hasAny {
			t.IsPrimary = true
		} else if t.IsPrimary {
			if _, err := tx.Exec(ctx, `UPDATE agent_territories SET is_primary = FALSE WHERE agent_id = $1 AND is_primary`, t.AgentID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO agent_territories (id, agent_id, name, region, is_primary, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING created_at
		`
		return tx.QueryRow(ctx, query, t.ID, t.AgentID, t.Name, t.Region, t.IsPrimary).Scan(&t.CreatedAt)
	})
}

func (r *territoryRepo) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentTerritory, error) {
	query := `
		SELECT id, agent_id, name, region, is_primary, created_at
		FROM agent_territories WHERE agent_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTerritory)
}

// SetPrimary moves the primary flag in a single statement.
func (r *territoryRepo) SetPrimary(ctx context.Context, agentID, territoryID uuid.UUID) error {
	query := `
		UPDATE agent_territories SET is_primary = (id = $2)
		WHERE agent_id = $1
		AND EXISTS (SELECT 1 FROM agent_territories WHERE id = $2 AND agent_id = $1)
	`
	tag, err := r.db.Exec(ctx, query, agentID, territoryID)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *territoryRepo) Delete(ctx context.Context, agentID, territoryID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockAgent(ctx, tx, agentID); err != nil {
			return err
		}

		var wasPrimary bool
		err := tx.QueryRow(ctx, `DELETE FROM agent_territories WHERE id = $1 AND agent_id = $2 RETURNING is_primary`,
			territoryID, agentID).Scan(&wasPrimary)
		if err != nil {
			return err
		}
		if !wasPrimary {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE agent_territories SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM agent_territories WHERE agent_id = $1
				ORDER BY created_at, id LIMIT 1
			)
		`, agentID)
		return err
	})
}

func scanTerritory(row rowScanner, t *models.AgentTerritory) error {
	return row.Scan(&t.ID, &t.AgentID, &t.Name, &t.Region, &t.IsPrimary, &t.CreatedAt)
}
