package repositories

import (
	"context"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type profileRepo struct {
	db database.DBTX
}

func NewProfileRepo(db database.DBTX) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, first_name, last_name, email, phone, avatar_url, status, deactivated_at, created_at, updated_at`

// Upsert creates the profile on first sight of an identity and refreshes its contact fields later.
func (r *profileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, first_name, last_name, email, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			email = EXCLUDED.email, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING ` + profileColumns
	row := r.db.QueryRow(ctx, query, profile.ID, profile.FirstName, profile.LastName, profile.Email, profile.Phone)
	return scanProfile(row, profile)
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	profile := &models.Profile{}
	if err := scanProfile(r.db.QueryRow(ctx, query, id), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2, last_name = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + profileColumns
	row := r.db.QueryRow(ctx, query, profile.ID, profile.FirstName, profile.LastName, profile.Email, profile.Phone)
	return scanProfile(row, profile)
}

func (r *profileRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

// Deactivate soft-deletes the profile. Profiles are never removed.
func (r *profileRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE profiles
		SET status = 'deactivated', deactivated_at = COALESCE(deactivated_at, NOW()), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func scanProfile(row rowScanner, p *models.Profile) error {
	return row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.AvatarURL,
		&p.Status, &p.DeactivatedAt, &p.CreatedAt, &p.UpdatedAt)
}
