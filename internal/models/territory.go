package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentTerritory is a region an agent works. Exactly one is primary when any exist.
type AgentTerritory struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AgentID   uuid.UUID `json:"agent_id" db:"agent_id"`
	Name      string    `json:"name" db:"name"`
	Region    *string   `json:"region,omitempty" db:"region"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AgentSpecialization is an agent's declared expertise with a property type.
type AgentSpecialization struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	AgentID         uuid.UUID      `json:"agent_id" db:"agent_id"`
	PropertyType    PropertyType   `json:"property_type" db:"property_type"`
	Certification   map[string]any `json:"certification,omitempty" db:"certification"`
	YearsExperience int            `json:"years_experience" db:"years_experience"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}
