package repositories

import (
	"context"
	"time"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error)
	// Transition moves a payment out of the from status. It returns pgx.ErrNoRows when the
	// payment is no longer in that status.
	Transition(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Payment, error)
	// CreateDue inserts the installment unless one exists for the same due date.
	CreateDue(ctx context.Context, leaseID uuid.UUID, amount decimal.Decimal, dueDate time.Time) (bool, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

type paymentRepo struct {
	db database.DBTX
}

func NewPaymentRepo(db database.DBTX) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, lease_id, amount, due_date, payment_date, status, created_at, updated_at`

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p := &models.Payment{}
	if err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE lease_id = $1 ORDER BY due_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, leaseID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) Transition(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Payment, error) {
	query := `
		UPDATE payments SET status = $3, payment_date = COALESCE($4, payment_date), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns
	p := &models.Payment{}
	if err := scanPayment(r.db.QueryRow(ctx, query, id, from, to, paidAt), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) CreateDue(ctx context.Context, leaseID uuid.UUID, amount decimal.Decimal, dueDate time.Time) (bool, error) {
	query := `
		INSERT INTO payments (id, lease_id, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW(), NOW())
		ON CONFLICT (lease_id, due_date) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, uuid.New(), leaseID, amount, dueDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE payments SET status = 'overdue', updated_at = NOW() WHERE status = 'pending' AND due_date < $1`, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPayment(row rowScanner, p *models.Payment) error {
	return row.Scan(&p.ID, &p.LeaseID, &p.Amount, &p.DueDate, &p.PaymentDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}
