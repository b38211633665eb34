package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)
	// Transition returns pgx.ErrNoRows when the request is no longer in the from status.
	Transition(ctx context.Context, id uuid.UUID, from, to models.MaintenanceStatus) (*models.MaintenanceRequest, error)
	AssignVendor(ctx context.Context, id, vendorID uuid.UUID) (*models.MaintenanceRequest, error)
}

type maintenanceRepo struct {
	db database.DBTX
}

func NewMaintenanceRepo(db database.DBTX) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

const maintenanceColumns = `id, property_id, requester_id, vendor_id, title, description, status, priority, created_at, updated_at`

func (r *maintenanceRepo) Create(ctx context.Context, m *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, property_id, requester_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.PropertyID, m.RequesterID, m.Title, m.Description, m.Status, m.Priority).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	m := &models.MaintenanceRequest{}
	if err := scanMaintenance(r.db.QueryRow(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maintenanceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE property_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMaintenance)
}

func (r *maintenanceRepo) Transition(ctx context.Context, id uuid.UUID, from, to models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	query := `
		UPDATE maintenance_requests SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + maintenanceColumns
	m := &models.MaintenanceRequest{}
	if err := scanMaintenance(r.db.QueryRow(ctx, query, id, from, to), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maintenanceRepo) AssignVendor(ctx context.Context, id, vendorID uuid.UUID) (*models.MaintenanceRequest, error) {
	query := `
		UPDATE maintenance_requests SET vendor_id = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'in_progress')
		RETURNING ` + maintenanceColumns
	m := &models.MaintenanceRequest{}
	if err := scanMaintenance(r.db.QueryRow(ctx, query, id, vendorID), m); err != nil {
		return nil, err
	}
	return m, nil
}

func scanMaintenance(row rowScanner, m *models.MaintenanceRequest) error {
	return row.Scan(&m.ID, &m.PropertyID, &m.RequesterID, &m.VendorID, &m.Title, &m.Description,
		&m.Status, &m.Priority, &m.CreatedAt, &m.UpdatedAt)
}
