package repositories

import (
	"context"
	"time"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type CredentialRepository interface {
	Upsert(ctx context.Context, credential *models.TenantCredential) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.TenantCredential, error)
	ListExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*models.TenantCredential, error)
	// DeleteIfToken removes the record only while it still refers to tokenID.
	DeleteIfToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
}

type credentialRepo struct {
	db database.DBTX
}

func NewCredentialRepo(db database.DBTX) CredentialRepository {
	return &credentialRepo{db: db}
}

const credentialColumns = `id, user_id, token_id, image_key, image_url, issued_at, expires_at`

func (r *credentialRepo) Upsert(ctx context.Context, c *models.TenantCredential) error {
	query := `
		INSERT INTO tenant_credentials (id, user_id, token_id, image_key, image_url, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET token_id = EXCLUDED.token_id, image_key = EXCLUDED.image_key, image_url = EXCLUDED.image_url,
			issued_at = EXCLUDED.issued_at, expires_at = EXCLUDED.expires_at
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, c.ID, c.UserID, c.TokenID, c.ImageKey, c.ImageURL, c.IssuedAt, c.ExpiresAt).Scan(&c.ID)
}

func (r *credentialRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.TenantCredential, error) {
	c := &models.TenantCredential{}
	if err := scanCredential(r.db.QueryRow(ctx, `SELECT `+credentialColumns+` FROM tenant_credentials WHERE user_id = $1`, userID), c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *credentialRepo) ListExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*models.TenantCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM tenant_credentials WHERE expires_at < $1 ORDER BY expires_at LIMIT $2`
	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCredential)
}

func (r *credentialRepo) DeleteIfToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenant_credentials WHERE user_id = $1 AND token_id = $2`, userID, tokenID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanCredential(row rowScanner, c *models.TenantCredential) error {
	return row.Scan(&c.ID, &c.UserID, &c.TokenID, &c.ImageKey, &c.ImageURL, &c.IssuedAt, &c.ExpiresAt)
}
