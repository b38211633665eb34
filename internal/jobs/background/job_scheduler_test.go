package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"estatehub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockLeases struct{ mock.Mock }

func (m *mockLeases) EndExpiredLeases(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockRent struct{ mock.Mock }

func (m *mockRent) GenerateDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockRent) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockCredentials struct{ mock.Mock }

func (m *mockCredentials) CleanupExpiredCredentials(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type JobSchedulerTestSuite struct {
	suite.Suite
	leases      *mockLeases
	rent        *mockRent
	credentials *mockCredentials
	js          *JobScheduler
	now         time.Time
}

func (suite *JobSchedulerTestSuite) SetupTest() {
	suite.leases = new(mockLeases)
	suite.rent = new(mockRent)
	suite.credentials = new(mockCredentials)
	suite.now = time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)

	js, err := NewJobScheduler(config.JobsConfig{
		Enabled:                true,
		LeaseExpiryInterval:    config.Duration{Duration: time.Hour},
		PaymentInterval:        config.Duration{Duration: 6 * time.Hour},
		CredentialCleanupEvery: config.Duration{Duration: time.Hour},
	}, suite.leases, suite.rent, suite.credentials)
	require.NoError(suite.T(), err)
	js.now = func() time.Time { return suite.now }
	suite.js = js
}

func (suite *JobSchedulerTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.js.Stop())
	suite.leases.AssertExpectations(suite.T())
	suite.rent.AssertExpectations(suite.T())
	suite.credentials.AssertExpectations(suite.T())
}

func TestJobSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(JobSchedulerTestSuite))
}

func (suite *JobSchedulerTestSuite) TestRegistersAllJobs() {
	assert.ElementsMatch(suite.T(), []string{"lease-expiry", "rent-installments", "credential-cleanup"}, suite.js.JobNames())
}

func (suite *JobSchedulerTestSuite) TestEndExpiredLeases_UsesClock() {
	suite.leases.On("EndExpiredLeases", mock.Anything, suite.now).Return(int64(2), nil)

	assert.NoError(suite.T(), suite.js.endExpiredLeases(context.Background()))
}

func (suite *JobSchedulerTestSuite) TestProcessRent_GeneratesThenMarksOverdue() {
	generate := suite.rent.On("GenerateDue", mock.Anything, suite.now).Return(3, nil)
	suite.rent.On("MarkOverdue", mock.Anything, suite.now).Return(int64(1), nil).NotBefore(generate)

	assert.NoError(suite.T(), suite.js.processRent(context.Background()))
}

func (suite *JobSchedulerTestSuite) TestProcessRent_StopsOnGenerateFailure() {
	suite.rent.On("GenerateDue", mock.Anything, suite.now).Return(0, errors.New("connection reset"))

	err := suite.js.processRent(context.Background())
	assert.ErrorContains(suite.T(), err, "generate installments")
	suite.rent.AssertNotCalled(suite.T(), "MarkOverdue", mock.Anything, mock.Anything)
}

func (suite *JobSchedulerTestSuite) TestCleanupCredentials() {
	suite.credentials.On("CleanupExpiredCredentials", mock.Anything).Return(4, nil)

	assert.NoError(suite.T(), suite.js.cleanupCredentials(context.Background()))
}

func TestNewJobScheduler_RejectsZeroInterval(t *testing.T) {
	_, err := NewJobScheduler(config.JobsConfig{
		LeaseExpiryInterval:    config.Duration{Duration: time.Hour},
		CredentialCleanupEvery: config.Duration{Duration: time.Hour},
	}, new(mockLeases), new(mockRent), new(mockCredentials))
	assert.ErrorContains(t, err, "rent-installments")
}
