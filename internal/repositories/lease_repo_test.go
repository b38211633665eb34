package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"estatehub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LeaseRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       LeaseRepository
	propertyID uuid.UUID
	tenantID   uuid.UUID
	landlordID uuid.UUID
	context    context.Context
}

func (suite *LeaseRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLeaseRepo(mock)
	suite.propertyID = uuid.New()
	suite.tenantID = uuid.New()
	suite.landlordID = uuid.New()
	suite.context = context.Background()
}

func (suite *LeaseRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLeaseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LeaseRepoTestSuite))
}

var leaseColumnNames = []string{
	"id", "property_id", "tenant_id", "start_date", "end_date", "monthly_rent", "deposit_amount",
	"status", "created_by", "created_at", "updated_at",
}

func leaseRow(l *models.Lease) []any {
	return []any{l.ID, l.PropertyID, l.TenantID, l.StartDate, l.EndDate, l.MonthlyRent, l.DepositAmount,
		l.Status, l.CreatedBy, l.CreatedAt, l.UpdatedAt}
}

func (suite *LeaseRepoTestSuite) newLease() *models.Lease {
	lease := models.NewScannedLease(suite.propertyID, suite.tenantID, suite.landlordID, time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	lease.ID = uuid.New()
	return lease
}

func (suite *LeaseRepoTestSuite) expectInsert(l *models.Lease) *pgxmock.ExpectedQuery {
	return suite.mock.ExpectQuery(`INSERT INTO leases .* ON CONFLICT \(property_id, tenant_id\) WHERE status = 'active' DO NOTHING`).
		WithArgs(l.ID, l.PropertyID, l.TenantID, l.StartDate, l.EndDate, l.MonthlyRent, l.DepositAmount, l.CreatedBy)
}

func (suite *LeaseRepoTestSuite) TestCreateActiveIfAbsent_Creates() {
	lease := suite.newLease()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectInsert(lease).WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectExec(`UPDATE properties SET status = 'rented'`).
		WithArgs(suite.propertyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	stored, created, err := suite.repo.CreateActiveIfAbsent(suite.context, lease)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), created)
	assert.Equal(suite.T(), lease.ID, stored.ID)
	assert.Equal(suite.T(), models.LeaseStatusActive, stored.Status)
}

// A second scan for the same pair returns the existing lease instead of inserting.
func (suite *LeaseRepoTestSuite) TestCreateActiveIfAbsent_ExistingIsNoop() {
	existing := suite.newLease()
	existing.CreatedAt = time.Now().Add(-time.Hour)
	existing.UpdatedAt = existing.CreatedAt
	attempt := suite.newLease()

	suite.mock.ExpectBegin()
	suite.expectInsert(attempt).WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectQuery(`SELECT .* FROM leases WHERE property_id = \$1 AND tenant_id = \$2 AND status = 'active'`).
		WithArgs(suite.propertyID, suite.tenantID).
		WillReturnRows(pgxmock.NewRows(leaseColumnNames).AddRow(leaseRow(existing)...))
	suite.mock.ExpectCommit()

	stored, created, err := suite.repo.CreateActiveIfAbsent(suite.context, attempt)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), created)
	assert.Equal(suite.T(), existing.ID, stored.ID)
}

// The conflicting lease can end between the insert and the read-back. The insert is retried.
func (suite *LeaseRepoTestSuite) TestCreateActiveIfAbsent_RetriesWhenConflictVanishes() {
	lease := suite.newLease()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectInsert(lease).WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectQuery(`SELECT .* FROM leases WHERE property_id = \$1 AND tenant_id = \$2 AND status = 'active'`).
		WithArgs(suite.propertyID, suite.tenantID).
		WillReturnError(pgx.ErrNoRows)
	suite.expectInsert(lease).WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectExec(`UPDATE properties SET status = 'rented'`).
		WithArgs(suite.propertyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	stored, created, err := suite.repo.CreateActiveIfAbsent(suite.context, lease)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), created)
	assert.Equal(suite.T(), lease.ID, stored.ID)
}

func (suite *LeaseRepoTestSuite) TestCreateActiveIfAbsent_GivesUpAfterRetry() {
	lease := suite.newLease()

	suite.mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		suite.expectInsert(lease).WillReturnError(pgx.ErrNoRows)
		suite.mock.ExpectQuery(`SELECT .* FROM leases WHERE property_id = \$1 AND tenant_id = \$2 AND status = 'active'`).
			WithArgs(suite.propertyID, suite.tenantID).
			WillReturnError(pgx.ErrNoRows)
	}
	suite.mock.ExpectRollback()

	_, _, err := suite.repo.CreateActiveIfAbsent(suite.context, lease)
	assert.ErrorIs(suite.T(), err, ErrLeaseContended)
}

func (suite *LeaseRepoTestSuite) TestCreateActiveIfAbsent_RollsBackOnError() {
	lease := suite.newLease()

	suite.mock.ExpectBegin()
	suite.expectInsert(lease).WillReturnError(errors.New("connection reset"))
	suite.mock.ExpectRollback()

	_, _, err := suite.repo.CreateActiveIfAbsent(suite.context, lease)
	assert.Error(suite.T(), err)
}

func (suite *LeaseRepoTestSuite) TestEnd_ReleasesProperty() {
	lease := suite.newLease()
	lease.Status = models.LeaseStatusEnded

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`UPDATE leases SET status = 'ended'`).
		WithArgs(lease.ID).
		WillReturnRows(pgxmock.NewRows(leaseColumnNames).AddRow(leaseRow(lease)...))
	suite.mock.ExpectExec(`UPDATE properties p SET status = 'available'`).
		WithArgs(suite.propertyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	ended, err := suite.repo.End(suite.context, lease.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.LeaseStatusEnded, ended.Status)
}

func (suite *LeaseRepoTestSuite) TestEndExpired() {
	today := time.Date(2027, 7, 2, 0, 0, 0, 0, time.UTC)
	otherProperty := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`UPDATE leases SET status = 'ended'`).
		WithArgs(today).
		WillReturnRows(pgxmock.NewRows([]string{"property_id"}).AddRow(suite.propertyID).AddRow(otherProperty))
	suite.mock.ExpectExec(`UPDATE properties p SET status = 'available'`).WithArgs(suite.propertyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE properties p SET status = 'available'`).WithArgs(otherProperty).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectCommit()

	n, err := suite.repo.EndExpired(suite.context, today)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)
}

func (suite *LeaseRepoTestSuite) TestCountByTenant() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FILTER`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"active", "pending"}).AddRow(1, 2))

	active, pending, err := suite.repo.CountByTenant(suite.context, suite.tenantID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, active)
	assert.Equal(suite.T(), 2, pending)
}
