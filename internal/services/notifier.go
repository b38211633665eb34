package services

import (
	"context"
	"log"

	"estatehub/internal/models"
)

// Notifier delivers user notifications, typically by enqueueing a background task.
type Notifier interface {
	Notify(ctx context.Context, notification *models.Notification) error
}

// notify never fails the caller. Delivery problems are logged.
func notify(ctx context.Context, n Notifier, notification *models.Notification) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, notification); err != nil {
		log.Printf("NOTIFY: failed to enqueue %s for %s: %v", notification.Type, notification.RecipientID, err)
	}
}
