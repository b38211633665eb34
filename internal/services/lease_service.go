package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"
)

type LeaseService interface {
	Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error)
	ListForProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	ListForTenant(ctx context.Context, session models.Session, limit, offset int) ([]*models.Lease, error)
	UpdateTerms(ctx context.Context, session models.Session, id uuid.UUID, terms models.LeaseTerms) (*models.Lease, error)
	End(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error)
	RenderAgreement(ctx context.Context, session models.Session, id uuid.UUID) ([]byte, error)
	EndExpiredLeases(ctx context.Context, now time.Time) (int64, error)
}

type leaseService struct {
	leaseRepo    repositories.LeaseRepository
	propertyRepo repositories.PropertyRepository
	profileRepo  repositories.ProfileRepository
	access       AccessService
	cacheService caching.CacheService
}

func NewLeaseService(leaseRepo repositories.LeaseRepository, propertyRepo repositories.PropertyRepository, profileRepo repositories.ProfileRepository, access AccessService, cacheService caching.CacheService) LeaseService {
	return &leaseService{
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		profileRepo:  profileRepo,
		access:       access,
		cacheService: cacheService,
	}
}

// authorizeLease loads the lease and lets the tenant through for read access.
func (s *leaseService) authorizeLease(ctx context.Context, session models.Session, id uuid.UUID, action Action) (*models.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	if action == ActionLeaseView && lease.TenantID == session.UserID() {
		return lease, nil
	}
	if err := s.access.Authorize(ctx, session, action, &lease.PropertyID); err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *leaseService) Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error) {
	return s.authorizeLease(ctx, session, id, ActionLeaseView)
}

func (s *leaseService) ListForProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	if err := s.access.Authorize(ctx, session, ActionLeaseView, &propertyID); err != nil {
		return nil, err
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	leases, err := s.leaseRepo.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	return leases, nil
}

func (s *leaseService) ListForTenant(ctx context.Context, session models.Session, limit, offset int) ([]*models.Lease, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	leases, err := s.leaseRepo.ListByTenant(ctx, session.UserID(), limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	return leases, nil
}

func (s *leaseService) UpdateTerms(ctx context.Context, session models.Session, id uuid.UUID, terms models.LeaseTerms) (*models.Lease, error) {
	if terms.MonthlyRent.IsNegative() {
		return nil, common.NewValidationError("monthly_rent", "monthly rent cannot be negative")
	}
	if terms.DepositAmount.IsNegative() {
		return nil, common.NewValidationError("deposit_amount", "deposit cannot be negative")
	}
	if terms.StartDate.IsZero() || terms.EndDate.IsZero() {
		return nil, common.NewValidationError("start_date", "start and end dates are required")
	}
	if !terms.EndDate.After(terms.StartDate) {
		return nil, common.NewValidationError("end_date", "end date must be after start date")
	}

	if _, err := s.authorizeLease(ctx, session, id, ActionLeaseUpdate); err != nil {
		return nil, err
	}
	updated, err := s.leaseRepo.UpdateTerms(ctx, id, terms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "lease is no longer editable")
		}
		return nil, common.FromDBError(err, "lease")
	}
	return updated, nil
}

func (s *leaseService) End(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error) {
	lease, err := s.authorizeLease(ctx, session, id, ActionLeaseUpdate)
	if err != nil {
		return nil, err
	}
	if !lease.Status.CanTransitionTo(models.LeaseStatusEnded) {
		return nil, common.NewAppError(common.CodeConflict, fmt.Sprintf("a %s lease cannot be ended", lease.Status))
	}
	ended, err := s.leaseRepo.End(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "lease is no longer active")
		}
		return nil, common.FromDBError(err, "lease")
	}
	if cacheErr := s.cacheService.DeleteProperty(ctx, ended.PropertyID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for property %s: %v", ended.PropertyID, cacheErr)
	}
	return ended, nil
}

func (s *leaseService) EndExpiredLeases(ctx context.Context, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	ended, err := s.leaseRepo.EndExpired(ctx, today)
	if err != nil {
		return 0, common.FromDBError(err, "lease")
	}
	return ended, nil
}

func (s *leaseService) RenderAgreement(ctx context.Context, session models.Session, id uuid.UUID) ([]byte, error) {
	lease, err := s.authorizeLease(ctx, session, id, ActionLeaseView)
	if err != nil {
		return nil, err
	}
	property, err := s.propertyRepo.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	tenant, err := s.profileRepo.GetByID(ctx, lease.TenantID)
	if err != nil {
		return nil, common.FromDBError(err, "tenant profile")
	}
	owner, err := s.profileRepo.GetByID(ctx, property.OwnerID)
	if err != nil {
		return nil, common.FromDBError(err, "owner profile")
	}
	return renderAgreementPDF(lease, property, tenant, owner)
}

func renderAgreementPDF(lease *models.Lease, property *models.Property, tenant, owner *models.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 15.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "RESIDENTIAL LEASE AGREEMENT")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Lease ID: %s", lease.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", lease.Status))
	pdf.Ln(10)

	section := func(title string, lines ...string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		for _, line := range lines {
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	section("LANDLORD",
		fmt.Sprintf("%s %s", owner.FirstName, owner.LastName),
		owner.Email)
	section("TENANT",
		fmt.Sprintf("%s %s", tenant.FirstName, tenant.LastName),
		tenant.Email)
	section("PREMISES",
		property.Title,
		fmt.Sprintf("%s, %s, %s", property.Address, property.City, property.Country))

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "TERMS")
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	colWidths := []float64{90, 90}
	for i, header := range []string{"Term", "Value"} {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Start date", lease.StartDate.Format("02-Jan-2006")},
		{"End date", lease.EndDate.Format("02-Jan-2006")},
		{"Monthly rent", fmt.Sprintf("%s %s", lease.MonthlyRent.StringFixed(2), property.Currency)},
		{"Security deposit", fmt.Sprintf("%s %s", lease.DepositAmount.StringFixed(2), property.Currency)},
	}
	for _, row := range rows {
		pdf.CellFormat(colWidths[0], 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(12)

	pdf.Cell(85, 6, "______________________________")
	pdf.Cell(0, 6, "______________________________")
	pdf.Ln(6)
	pdf.Cell(85, 6, "Landlord")
	pdf.Cell(0, 6, "Tenant")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, common.WrapError(common.CodeInternal, "failed to render agreement", err)
	}
	return buf.Bytes(), nil
}
