package repositories

import (
	"context"
	"errors"
	"time"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeaseRepository interface {
	// CreateActiveIfAbsent inserts an active lease unless the pair already has one.
	// It returns the stored lease and whether it was created by this call.
	CreateActiveIfAbsent(ctx context.Context, lease *models.Lease) (*models.Lease, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	UpdateTerms(ctx context.Context, id uuid.UUID, terms models.LeaseTerms) (*models.Lease, error)
	End(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	EndExpired(ctx context.Context, today time.Time) (int64, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (active int, pending int, err error)
	ListActiveTenants(ctx context.Context, propertyID uuid.UUID) ([]*models.Profile, error)
	ListActive(ctx context.Context) ([]*models.Lease, error)
}

type leaseRepo struct {
	db database.DBTX
}

func NewLeaseRepo(db database.DBTX) LeaseRepository {
	return &leaseRepo{db: db}
}

const leaseColumns = `id, property_id, tenant_id, start_date, end_date, monthly_rent, deposit_amount, status, created_by, created_at, updated_at`

// releaseProperty flips a rented property back to available once it has no active lease left.
const releaseProperty = `
	UPDATE properties p SET status = 'available', updated_at = NOW()
	WHERE p.id = $1 AND p.status = 'rented'
	AND NOT EXISTS (SELECT 1 FROM leases l WHERE l.property_id = p.id AND l.status = 'active')
`

// ErrLeaseContended is returned when the conflicting active lease keeps changing under the insert.
var ErrLeaseContended = errors.New("active lease changed concurrently")

const insertActiveLease = `
	INSERT INTO leases (id, property_id, tenant_id, start_date, end_date, monthly_rent, deposit_amount, status, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8, NOW(), NOW())
	ON CONFLICT (property_id, tenant_id) WHERE status = 'active' DO NOTHING
	RETURNING created_at, updated_at
`

// createAttempts bounds the insert/read-back loop. A second attempt covers the
// conflicting lease being ended between the two statements.
const createAttempts = 2

func (r *leaseRepo) CreateActiveIfAbsent(ctx context.Context, lease *models.Lease) (*models.Lease, bool, error) {
	var stored *models.Lease
	var created bool

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for attempt := 0; attempt < createAttempts; attempt++ {
			err := tx.QueryRow(ctx, insertActiveLease, lease.ID, lease.PropertyID, lease.TenantID, lease.StartDate, lease.EndDate,
				lease.MonthlyRent, lease.DepositAmount, lease.CreatedBy).Scan(&lease.CreatedAt, &lease.UpdatedAt)
			if err == nil {
				lease.Status = models.LeaseStatusActive
				stored, created = lease, true
				_, err = tx.Exec(ctx, `UPDATE properties SET status = 'rented', updated_at = NOW() WHERE id = $1 AND status = 'available'`, lease.PropertyID)
				return err
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}

			existing := &models.Lease{}
			query := `SELECT ` + leaseColumns + ` FROM leases WHERE property_id = $1 AND tenant_id = $2 AND status = 'active'`
			err = scanLease(tx.QueryRow(ctx, query, lease.PropertyID, lease.TenantID), existing)
			if err == nil {
				stored = existing
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}
		return ErrLeaseContended
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	l := &models.Lease{}
	if err := scanLease(r.db.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id), l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leaseRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE property_id = $1 ORDER BY start_date DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLease)
}

func (r *leaseRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE tenant_id = $1 ORDER BY start_date DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLease)
}

// UpdateTerms only touches leases that are not yet ended or terminated.
func (r *leaseRepo) UpdateTerms(ctx context.Context, id uuid.UUID, t models.LeaseTerms) (*models.Lease, error) {
	query := `
		UPDATE leases
		SET monthly_rent = $2, deposit_amount = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'active')
		RETURNING ` + leaseColumns
	l := &models.Lease{}
	if err := scanLease(r.db.QueryRow(ctx, query, id, t.MonthlyRent, t.DepositAmount, t.StartDate, t.EndDate), l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leaseRepo) End(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	l := &models.Lease{}
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE leases SET status = 'ended', updated_at = NOW()
			WHERE id = $1 AND status = 'active'
			RETURNING ` + leaseColumns
		if err := scanLease(tx.QueryRow(ctx, query, id), l); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, releaseProperty, l.PropertyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// EndExpired ends active leases whose end date is before today and releases their properties.
func (r *leaseRepo) EndExpired(ctx context.Context, today time.Time) (int64, error) {
	var ended int64
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE leases SET status = 'ended', updated_at = NOW()
			WHERE status = 'active' AND end_date < $1
			RETURNING property_id
		`, today)
		if err != nil {
			return err
		}
		var propertyIDs []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			propertyIDs = append(propertyIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		ended = int64(len(propertyIDs))
		for _, id := range propertyIDs {
			if _, err := tx.Exec(ctx, releaseProperty, id); err != nil {
				return err
			}
		}
		return nil
	})
	return ended, err
}

func (r *leaseRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'active'), COUNT(*) FILTER (WHERE status = 'pending')
		FROM leases WHERE tenant_id = $1
	`
	var active, pending int
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&active, &pending)
	return active, pending, err
}

func (r *leaseRepo) ListActiveTenants(ctx context.Context, propertyID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT ` + prefixed("pr", profileColumns) + `
		FROM profiles pr
		JOIN leases l ON l.tenant_id = pr.id
		WHERE l.property_id = $1 AND l.status = 'active'
		ORDER BY pr.last_name, pr.first_name, pr.id
	`
	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProfile)
}

func (r *leaseRepo) ListActive(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, `SELECT `+leaseColumns+` FROM leases WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLease)
}

func scanLease(row rowScanner, l *models.Lease) error {
	return row.Scan(&l.ID, &l.PropertyID, &l.TenantID, &l.StartDate, &l.EndDate, &l.MonthlyRent,
		&l.DepositAmount, &l.Status, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
}
