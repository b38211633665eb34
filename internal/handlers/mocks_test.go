package handlers

import (
	"context"
	"time"

	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Create(ctx context.Context, session models.Session, input models.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, session, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Search(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, session models.Session, id uuid.UUID, input models.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, session, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) UpdateStatus(ctx context.Context, session models.Session, id uuid.UUID, status models.PropertyStatus) (*models.Property, error) {
	args := m.Called(ctx, session, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	return m.Called(ctx, session, id).Error(0)
}

func (m *MockPropertyService) CurrentTenants(ctx context.Context, session models.Session, id uuid.UUID) ([]*models.Profile, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

type MockLeaseService struct {
	mock.Mock
}

func (m *MockLeaseService) Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseService) ListForProperty(ctx context.Context, session models.Session, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	args := m.Called(ctx, session, propertyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lease), args.Error(1)
}

func (m *MockLeaseService) ListForTenant(ctx context.Context, session models.Session, limit, offset int) ([]*models.Lease, error) {
	args := m.Called(ctx, session, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lease), args.Error(1)
}

func (m *MockLeaseService) UpdateTerms(ctx context.Context, session models.Session, id uuid.UUID, terms models.LeaseTerms) (*models.Lease, error) {
	args := m.Called(ctx, session, id, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseService) End(ctx context.Context, session models.Session, id uuid.UUID) (*models.Lease, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseService) RenderAgreement(ctx context.Context, session models.Session, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockLeaseService) EndExpiredLeases(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockShortlistService struct {
	mock.Mock
}

func (m *MockShortlistService) Add(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (models.AddResult, error) {
	args := m.Called(ctx, session, kind, propertyID)
	return args.Get(0).(models.AddResult), args.Error(1)
}

func (m *MockShortlistService) Remove(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) error {
	return m.Called(ctx, session, kind, propertyID).Error(0)
}

func (m *MockShortlistService) Contains(ctx context.Context, session models.Session, kind models.ShortlistKind, propertyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, session, kind, propertyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShortlistService) List(ctx context.Context, session models.Session, kind models.ShortlistKind) ([]models.PropertySnapshot, error) {
	args := m.Called(ctx, session, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropertySnapshot), args.Error(1)
}

func (m *MockShortlistService) Clear(ctx context.Context, session models.Session, kind models.ShortlistKind) error {
	return m.Called(ctx, session, kind).Error(0)
}

type MockOnboardingService struct {
	mock.Mock
}

func (m *MockOnboardingService) State(ctx context.Context, userID uuid.UUID) (*models.OnboardingStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingStatus), args.Error(1)
}

func (m *MockOnboardingService) IssueCredential(ctx context.Context, session models.Session) (*models.IssuedCredential, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedCredential), args.Error(1)
}

func (m *MockOnboardingService) ScanCredential(ctx context.Context, session models.Session, token string, propertyID uuid.UUID) (*models.OnboardResult, error) {
	args := m.Called(ctx, session, token, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardResult), args.Error(1)
}

func (m *MockOnboardingService) CleanupExpiredCredentials(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockKYCService struct {
	mock.Mock
}

func (m *MockKYCService) Submit(ctx context.Context, session models.Session, submission services.KYCSubmission) (*models.KYCVerification, error) {
	args := m.Called(ctx, session, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCVerification), args.Error(1)
}

func (m *MockKYCService) Review(ctx context.Context, session models.Session, userID uuid.UUID, approve bool, reason *string) (*models.KYCVerification, error) {
	args := m.Called(ctx, session, userID, approve, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCVerification), args.Error(1)
}

func (m *MockKYCService) Get(ctx context.Context, session models.Session, userID uuid.UUID) (*models.KYCVerification, error) {
	args := m.Called(ctx, session, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCVerification), args.Error(1)
}

var (
	_ services.PropertyService   = (*MockPropertyService)(nil)
	_ services.LeaseService      = (*MockLeaseService)(nil)
	_ services.ShortlistService  = (*MockShortlistService)(nil)
	_ services.OnboardingService = (*MockOnboardingService)(nil)
	_ services.KYCService        = (*MockKYCService)(nil)
)
