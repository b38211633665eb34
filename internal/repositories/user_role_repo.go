package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type UserRoleRepository interface {
	Assign(ctx context.Context, userID uuid.UUID, role models.Role) error
	Revoke(ctx context.Context, userID uuid.UUID, role models.Role) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error)
}

type userRoleRepo struct {
	db database.DBTX
}

func NewUserRoleRepo(db database.DBTX) UserRoleRepository {
	return &userRoleRepo{db: db}
}

// Assign is idempotent.
func (r *userRoleRepo) Assign(ctx context.Context, userID uuid.UUID, role models.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, role) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, role)
	return err
}

func (r *userRoleRepo) Revoke(ctx context.Context, userID uuid.UUID, role models.Role) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}

func (r *userRoleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *userRoleRepo) HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`, userID, role).Scan(&exists)
	return exists, err
}
