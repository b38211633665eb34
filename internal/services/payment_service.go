package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentService interface {
	ListForLease(ctx context.Context, session models.Session, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error)
	Record(ctx context.Context, session models.Session, paymentID uuid.UUID, paidAt *time.Time) (*models.Payment, error)
	Cancel(ctx context.Context, session models.Session, paymentID uuid.UUID) (*models.Payment, error)
	// GenerateDue creates this month's installment for every active lease with rent set.
	GenerateDue(ctx context.Context, now time.Time) (int, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	leaseRepo   repositories.LeaseRepository
	access      AccessService
	now         func() time.Time
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, leaseRepo repositories.LeaseRepository, access AccessService) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		leaseRepo:   leaseRepo,
		access:      access,
		now:         time.Now,
	}
}

func (s *paymentService) ListForLease(ctx context.Context, session models.Session, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	if lease.TenantID != session.UserID() {
		if err := s.access.Authorize(ctx, session, ActionLeaseView, &lease.PropertyID); err != nil {
			return nil, err
		}
	}
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByLease(ctx, leaseID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "payment")
	}
	return payments, nil
}

func (s *paymentService) transition(ctx context.Context, session models.Session, paymentID uuid.UUID, to models.PaymentStatus, paidAt *time.Time) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, common.FromDBError(err, "payment")
	}
	lease, err := s.leaseRepo.GetByID(ctx, payment.LeaseID)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	if err := s.access.Authorize(ctx, session, ActionPaymentRecord, &lease.PropertyID); err != nil {
		return nil, err
	}
	if !payment.Status.CanTransitionTo(to) {
		return nil, &common.AppError{
			Code:    common.CodeConflict,
			Message: fmt.Sprintf("a %s payment cannot become %s", payment.Status, to),
			Details: map[string]string{"status": string(payment.Status)},
		}
	}

	updated, err := s.paymentRepo.Transition(ctx, paymentID, payment.Status, to, paidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "payment changed concurrently")
		}
		return nil, common.FromDBError(err, "payment")
	}
	return updated, nil
}

func (s *paymentService) Record(ctx context.Context, session models.Session, paymentID uuid.UUID, paidAt *time.Time) (*models.Payment, error) {
	if paidAt == nil {
		now := s.now().UTC()
		paidAt = &now
	}
	if paidAt.After(s.now().Add(time.Minute)) {
		return nil, common.NewValidationError("paid_at", "payment date cannot be in the future")
	}
	return s.transition(ctx, session, paymentID, models.PaymentStatusPaid, paidAt)
}

func (s *paymentService) Cancel(ctx context.Context, session models.Session, paymentID uuid.UUID) (*models.Payment, error) {
	return s.transition(ctx, session, paymentID, models.PaymentStatusCancelled, nil)
}

// dueDateIn returns the installment date of the lease in the month of now, clamped to the
// month's last day.
func dueDateIn(lease *models.Lease, now time.Time) time.Time {
	year, month := now.Year(), now.Month()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := lease.StartDate.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *paymentService) GenerateDue(ctx context.Context, now time.Time) (int, error) {
	leases, err := s.leaseRepo.ListActive(ctx)
	if err != nil {
		return 0, common.FromDBError(err, "lease")
	}

	created := 0
	for _, lease := range leases {
		// Rent of freshly scanned leases is unset until the landlord edits the terms.
		if !lease.MonthlyRent.IsPositive() {
			continue
		}
		due := dueDateIn(lease, now)
		if due.Before(lease.StartDate) || !due.Before(lease.EndDate) {
			continue
		}
		ok, err := s.paymentRepo.CreateDue(ctx, lease.ID, lease.MonthlyRent, due)
		if err != nil {
			log.Printf("SCHEDULER: failed to create payment for lease %s: %v", lease.ID, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *paymentService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n, err := s.paymentRepo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, common.FromDBError(err, "payment")
	}
	return n, nil
}
