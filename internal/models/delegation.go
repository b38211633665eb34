package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentAssignment delegates a property to an agent. One row per (property, agent).
type AgentAssignment struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	PropertyID           uuid.UUID       `json:"property_id" db:"property_id"`
	AgentID              uuid.UUID       `json:"agent_id" db:"agent_id"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" db:"commission_percentage"`
	IsExclusive          bool            `json:"is_exclusive" db:"is_exclusive"`
	StartDate            time.Time       `json:"start_date" db:"start_date"`
	EndDate              *time.Time      `json:"end_date,omitempty" db:"end_date"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// IsActiveAt reports whether the assignment has started and not yet ended at t.
func (a *AgentAssignment) IsActiveAt(t time.Time) bool {
	if a.StartDate.After(t) {
		return false
	}
	return a.EndDate == nil || a.EndDate.After(t)
}

// AgentTerms are the negotiated terms of an agent assignment.
type AgentTerms struct {
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	IsExclusive          bool            `json:"is_exclusive"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              *time.Time      `json:"end_date"`
}

// ManagerAssignment delegates day-to-day management of a property. At most one per property.
type ManagerAssignment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	ManagerID  uuid.UUID `json:"manager_id" db:"manager_id"`
	AssignedBy uuid.UUID `json:"assigned_by" db:"assigned_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PropertyRelations summarizes how a user relates to one property.
type PropertyRelations struct {
	PropertyID     uuid.UUID
	OwnerID        uuid.UUID
	IsManager      bool
	IsActiveAgent  bool
	PropertyExists bool
}
