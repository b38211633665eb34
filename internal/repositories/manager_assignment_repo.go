package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type ManagerAssignmentRepository interface {
	Upsert(ctx context.Context, assignment *models.ManagerAssignment) error
	GetByProperty(ctx context.Context, propertyID uuid.UUID) (*models.ManagerAssignment, error)
	Delete(ctx context.Context, propertyID uuid.UUID) error
	ListPropertiesByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*models.Property, error)
}

type managerAssignmentRepo struct {
	db database.DBTX
}

func NewManagerAssignmentRepo(db database.DBTX) ManagerAssignmentRepository {
	return &managerAssignmentRepo{db: db}
}

// Upsert replaces the property's manager atomically.
func (r *managerAssignmentRepo) Upsert(ctx context.Context, m *models.ManagerAssignment) error {
	query := `
		INSERT INTO property_managers (id, property_id, manager_id, assigned_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (property_id) DO UPDATE
		SET manager_id = EXCLUDED.manager_id, assigned_by = EXCLUDED.assigned_by, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.PropertyID, m.ManagerID, m.AssignedBy).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *managerAssignmentRepo) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*models.ManagerAssignment, error) {
	query := `
		SELECT id, property_id, manager_id, assigned_by, created_at, updated_at
		FROM property_managers WHERE property_id = $1
	`
	m := &models.ManagerAssignment{}
	err := r.db.QueryRow(ctx, query, propertyID).Scan(&m.ID, &m.PropertyID, &m.ManagerID, &m.AssignedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *managerAssignmentRepo) Delete(ctx context.Context, propertyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_managers WHERE property_id = $1`, propertyID)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *managerAssignmentRepo) ListPropertiesByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + prefixed("p", propertyColumns) + `
		FROM properties p
		JOIN property_managers pm ON pm.property_id = p.id
		WHERE pm.manager_id = $1
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, managerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}
