package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationMessageReceived NotificationType = "message_received"
	NotificationLeaseCreated    NotificationType = "lease_created"
	NotificationKYCReviewed     NotificationType = "kyc_reviewed"
)

// Notification is the payload carried by notification tasks and published to subscribers.
type Notification struct {
	ID          uuid.UUID         `json:"id"`
	Type        NotificationType  `json:"type"`
	RecipientID uuid.UUID         `json:"recipient_id"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewNotification(kind NotificationType, recipient uuid.UUID, subject, body string, data map[string]string) *Notification {
	return &Notification{
		ID:          uuid.New(),
		Type:        kind,
		RecipientID: recipient,
		Subject:     subject,
		Body:        body,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
}
