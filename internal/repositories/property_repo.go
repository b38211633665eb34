package repositories

import (
	"context"
	"fmt"
	"strings"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Search(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Relations(ctx context.Context, propertyID, userID uuid.UUID) (*models.PropertyRelations, error)
}

type propertyRepo struct {
	db database.DBTX
}

func NewPropertyRepo(db database.DBTX) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `id, owner_id, title, description, address, city, country, price, currency,
	property_type, purpose, bedrooms, bathrooms, size, status, amenities, created_at, updated_at`

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (id, owner_id, title, description, address, city, country, price, currency,
			property_type, purpose, bedrooms, bathrooms, size, status, amenities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, p.ID, p.OwnerID, p.Title, p.Description, p.Address, p.City, p.Country,
		p.Price, p.Currency, p.PropertyType, p.Purpose, p.Bedrooms, p.Bathrooms, p.Size, p.Status, p.Amenities,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p := &models.Property{}
	if err := scanProperty(r.db.QueryRow(ctx, query, id), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepo) Search(ctx context.Context, f models.PropertyFilter) ([]*models.Property, error) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.City != "" {
		add("lower(city) = lower($%d)", f.City)
	}
	if f.PropertyType != "" {
		add("property_type = $%d", f.PropertyType)
	}
	if f.Purpose != "" {
		add("purpose = $%d", f.Purpose)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.MinBedrooms > 0 {
		add("bedrooms >= $%d", f.MinBedrooms)
	}
	if f.OwnerID != nil {
		add("owner_id = $%d", *f.OwnerID)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

// Update writes the editable columns. owner_id is never written after insert.
func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, address = $4, city = $5, country = $6, price = $7, currency = $8,
			property_type = $9, purpose = $10, bedrooms = $11, bathrooms = $12, size = $13, amenities = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns
	row := r.db.QueryRow(ctx, query, p.ID, p.Title, p.Description, p.Address, p.City, p.Country, p.Price,
		p.Currency, p.PropertyType, p.Purpose, p.Bedrooms, p.Bathrooms, p.Size, p.Amenities)
	return scanProperty(row, p)
}

func (r *propertyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

// Relations reports ownership and delegations of userID on the property in one round trip.
func (r *propertyRepo) Relations(ctx context.Context, propertyID, userID uuid.UUID) (*models.PropertyRelations, error) {
	query := `
		SELECT p.owner_id,
			EXISTS (SELECT 1 FROM property_managers pm WHERE pm.property_id = p.id AND pm.manager_id = $2),
			EXISTS (
				SELECT 1 FROM agent_properties ap
				WHERE ap.property_id = p.id AND ap.agent_id = $2
				AND ap.start_date <= NOW() AND (ap.end_date IS NULL OR ap.end_date > NOW())
			)
		FROM properties p
		WHERE p.id = $1
	`
	rel := &models.PropertyRelations{PropertyID: propertyID}
	if err := r.db.QueryRow(ctx, query, propertyID, userID).Scan(&rel.OwnerID, &rel.IsManager, &rel.IsActiveAgent); err != nil {
		return nil, err
	}
	rel.PropertyExists = true
	return rel, nil
}

func scanProperty(row rowScanner, p *models.Property) error {
	return row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Address, &p.City, &p.Country, &p.Price,
		&p.Currency, &p.PropertyType, &p.Purpose, &p.Bedrooms, &p.Bathrooms, &p.Size, &p.Status, &p.Amenities,
		&p.CreatedAt, &p.UpdatedAt)
}
