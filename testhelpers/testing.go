package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"

	"estatehub/internal/models"
	"estatehub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// truncateTables lists every table written by the fixtures and the repositories under test.
const truncateTables = `TRUNCATE messages, maintenance_requests, payments, leases, tenant_credentials,
	kyc_verifications, agent_specializations, agent_territories, property_managers, agent_properties,
	properties, user_roles, profiles CASCADE`

// SetupTestDB connects to TEST_DATABASE_URL and applies the embedded migrations.
// The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, 8)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	migrator, err := database.NewMigrator(pool)
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if _, err := migrator.Up(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{
		Pool: pool,
		Cleanup: func() error {
			defer pool.Close()
			_, err := pool.Exec(context.Background(), truncateTables)
			return err
		},
	}
	t.Cleanup(func() {
		if err := db.Cleanup(); err != nil {
			t.Logf("Failed to clean test database: %v", err)
		}
	})
	return db
}

// SetupTestProfile creates an active profile holding roles.
func SetupTestProfile(t *testing.T, db *TestDB, roles ...models.Role) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO profiles (id, first_name, last_name, email) VALUES ($1, $2, $3, $4)`,
		userID, "Test", "User", fmt.Sprintf("%s@example.com", userID))
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	for _, role := range roles {
		if _, err := db.Pool.Exec(context.Background(),
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role); err != nil {
			t.Fatalf("Failed to grant role %s: %v", role, err)
		}
	}
	return userID
}

// SetupTestProperty creates an available rental owned by ownerID.
func SetupTestProperty(t *testing.T, db *TestDB, ownerID uuid.UUID) *models.Property {
	t.Helper()

	property := &models.Property{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        "Test Apartment",
		Address:      "1 Test Street",
		City:         "Lisbon",
		Country:      "PT",
		Price:        decimal.NewFromInt(1200),
		Currency:     "EUR",
		PropertyType: models.PropertyTypeApartment,
		Purpose:      models.PropertyPurposeRent,
		Bedrooms:     2,
		Bathrooms:    1,
		Size:         decimal.NewFromInt(70),
		Status:       models.PropertyStatusAvailable,
		Amenities:    []string{},
	}

	query := `
		INSERT INTO properties (id, owner_id, title, address, city, country, price, currency, property_type, purpose, bedrooms, bathrooms, size, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		property.ID, property.OwnerID, property.Title, property.Address, property.City, property.Country,
		property.Price, property.Currency, property.PropertyType, property.Purpose, property.Bedrooms,
		property.Bathrooms, property.Size, property.Status)
	if err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}

	return property
}
