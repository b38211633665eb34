package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	SenderID             uuid.UUID  `json:"sender_id" db:"sender_id"`
	RecipientID          uuid.UUID  `json:"recipient_id" db:"recipient_id"`
	LeaseID              *uuid.UUID `json:"lease_id,omitempty" db:"lease_id"`
	MaintenanceRequestID *uuid.UUID `json:"maintenance_request_id,omitempty" db:"maintenance_request_id"`
	Body                 string     `json:"body" db:"body"`
	ReadAt               *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// MessageInput is the payload of a new message.
type MessageInput struct {
	RecipientID          uuid.UUID  `json:"recipient_id"`
	Body                 string     `json:"body"`
	LeaseID              *uuid.UUID `json:"lease_id"`
	MaintenanceRequestID *uuid.UUID `json:"maintenance_request_id"`
}
