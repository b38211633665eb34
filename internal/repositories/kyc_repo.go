package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type KYCRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.KYCVerification, error)
	// Submit upserts the user's record back to pending. An approved record is left untouched
	// and pgx.ErrNoRows is returned.
	Submit(ctx context.Context, kyc *models.KYCVerification) error
	// Review returns pgx.ErrNoRows when the record is no longer in the from status.
	Review(ctx context.Context, userID uuid.UUID, from, to models.KYCStatus, reason *string, reviewer uuid.UUID) (*models.KYCVerification, error)
}

type kycRepo struct {
	db database.DBTX
}

func NewKYCRepo(db database.DBTX) KYCRepository {
	return &kycRepo{db: db}
}

const kycColumns = `id, user_id, id_type, id_number, document_front_url, document_back_url, status,
	rejection_reason, reviewed_by, reviewed_at, created_at, updated_at`

func (r *kycRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.KYCVerification, error) {
	k := &models.KYCVerification{}
	if err := scanKYC(r.db.QueryRow(ctx, `SELECT `+kycColumns+` FROM kyc_verifications WHERE user_id = $1`, userID), k); err != nil {
		return nil, err
	}
	return k, nil
}

func (r *kycRepo) Submit(ctx context.Context, k *models.KYCVerification) error {
	query := `
		INSERT INTO kyc_verifications (id, user_id, id_type, id_number, document_front_url, document_back_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET id_type = EXCLUDED.id_type, id_number = EXCLUDED.id_number,
			document_front_url = EXCLUDED.document_front_url, document_back_url = EXCLUDED.document_back_url,
			status = 'pending', rejection_reason = NULL, reviewed_by = NULL, reviewed_at = NULL, updated_at = NOW()
		WHERE kyc_verifications.status <> 'approved'
		RETURNING ` + kycColumns
	row := r.db.QueryRow(ctx, query, k.ID, k.UserID, k.IDType, k.IDNumber, k.DocumentFrontURL, k.DocumentBackURL)
	return scanKYC(row, k)
}

func (r *kycRepo) Review(ctx context.Context, userID uuid.UUID, from, to models.KYCStatus, reason *string, reviewer uuid.UUID) (*models.KYCVerification, error) {
	query := `
		UPDATE kyc_verifications
		SET status = $3, rejection_reason = $4, reviewed_by = $5, reviewed_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND status = $2
		RETURNING ` + kycColumns
	k := &models.KYCVerification{}
	if err := scanKYC(r.db.QueryRow(ctx, query, userID, from, to, reason, reviewer), k); err != nil {
		return nil, err
	}
	return k, nil
}

func scanKYC(row rowScanner, k *models.KYCVerification) error {
	return row.Scan(&k.ID, &k.UserID, &k.IDType, &k.IDNumber, &k.DocumentFrontURL, &k.DocumentBackURL, &k.Status,
		&k.RejectionReason, &k.ReviewedBy, &k.ReviewedAt, &k.CreatedAt, &k.UpdatedAt)
}
