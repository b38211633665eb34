package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*models.Message, error)
	ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Message, error)
	// MarkRead returns pgx.ErrNoRows unless recipientID received the message.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Message, error)
}

type messageRepo struct {
	db database.DBTX
}

func NewMessageRepo(db database.DBTX) MessageRepository {
	return &messageRepo{db: db}
}

const messageColumns = `id, sender_id, recipient_id, lease_id, maintenance_request_id, body, read_at, created_at`

func (r *messageRepo) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, lease_id, maintenance_request_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.SenderID, m.RecipientID, m.LeaseID, m.MaintenanceRequestID, m.Body).Scan(&m.CreatedAt)
}

func (r *messageRepo) ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, otherID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMessage)
}

func (r *messageRepo) ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE recipient_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMessage)
}

func (r *messageRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Message, error) {
	query := `
		UPDATE messages SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + messageColumns
	m := &models.Message{}
	if err := scanMessage(r.db.QueryRow(ctx, query, id, recipientID), m); err != nil {
		return nil, err
	}
	return m, nil
}

func scanMessage(row rowScanner, m *models.Message) error {
	return row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.LeaseID, &m.MaintenanceRequestID, &m.Body, &m.ReadAt, &m.CreatedAt)
}
