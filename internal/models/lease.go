package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaseStatus string

const (
	LeaseStatusPending    LeaseStatus = "pending"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusEnded      LeaseStatus = "ended"
	LeaseStatusTerminated LeaseStatus = "terminated"
)

var leaseTransitions = map[LeaseStatus][]LeaseStatus{
	LeaseStatusPending: {LeaseStatusActive, LeaseStatusTerminated},
	LeaseStatusActive:  {LeaseStatusEnded, LeaseStatusTerminated},
}

func (s LeaseStatus) CanTransitionTo(next LeaseStatus) bool {
	for _, allowed := range leaseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusEnded || s == LeaseStatusTerminated
}

// DefaultLeaseTermMonths is the term given to leases created by a credential scan.
const DefaultLeaseTermMonths = 12

// Lease binds a tenant to a property for a term.
type Lease struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	PropertyID    uuid.UUID       `json:"property_id" db:"property_id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	StartDate     time.Time       `json:"start_date" db:"start_date"`
	EndDate       time.Time       `json:"end_date" db:"end_date"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent" db:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount" db:"deposit_amount"`
	Status        LeaseStatus     `json:"status" db:"status"`
	CreatedBy     uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NewScannedLease builds the default lease created when a tenant credential is scanned.
func NewScannedLease(propertyID, tenantID, createdBy uuid.UUID, today time.Time) *Lease {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return &Lease{
		PropertyID:    propertyID,
		TenantID:      tenantID,
		StartDate:     start,
		EndDate:       start.AddDate(0, DefaultLeaseTermMonths, 0),
		MonthlyRent:   decimal.Zero,
		DepositAmount: decimal.Zero,
		Status:        LeaseStatusActive,
		CreatedBy:     createdBy,
	}
}

// LeaseTerms are the landlord-editable terms of a lease.
type LeaseTerms struct {
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
}

// OnboardResult is the outcome of a credential scan.
type OnboardResult struct {
	Lease   *Lease `json:"lease"`
	Created bool   `json:"created"`
	Notice  string `json:"notice,omitempty"`
}

const NoticeAlreadyAssociated = "tenant is already associated with this property"
