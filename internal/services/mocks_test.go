package services

import (
	"context"
	"io"
	"time"

	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Search(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) Relations(ctx context.Context, propertyID, userID uuid.UUID) (*models.PropertyRelations, error) {
	args := m.Called(ctx, propertyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyRelations), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

func (m *MockProfileRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) CreateActiveIfAbsent(ctx context.Context, lease *models.Lease) (*models.Lease, bool, error) {
	args := m.Called(ctx, lease)
	if fn, ok := args.Get(0).(func(context.Context, *models.Lease) *models.Lease); ok {
		return fn(ctx, lease), args.Bool(1), args.Error(2)
	}
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Lease), args.Bool(1), args.Error(2)
}

func (m *MockLeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	return args.Get(0).([]*models.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Lease), args.Error(1)
}

func (m *MockLeaseRepository) UpdateTerms(ctx context.Context, id uuid.UUID, terms models.LeaseTerms) (*models.Lease, error) {
	args := m.Called(ctx, id, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseRepository) End(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lease), args.Error(1)
}

func (m *MockLeaseRepository) EndExpired(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaseRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockLeaseRepository) ListActiveTenants(ctx context.Context, propertyID uuid.UUID) ([]*models.Profile, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockLeaseRepository) ListActive(ctx context.Context) ([]*models.Lease, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Lease), args.Error(1)
}

type MockKYCRepository struct {
	mock.Mock
}

func (m *MockKYCRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.KYCVerification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCVerification), args.Error(1)
}

func (m *MockKYCRepository) Submit(ctx context.Context, kyc *models.KYCVerification) error {
	args := m.Called(ctx, kyc)
	return args.Error(0)
}

func (m *MockKYCRepository) Review(ctx context.Context, userID uuid.UUID, from, to models.KYCStatus, reason *string, reviewer uuid.UUID) (*models.KYCVerification, error) {
	args := m.Called(ctx, userID, from, to, reason, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCVerification), args.Error(1)
}

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, credential *models.TenantCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockCredentialRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.TenantCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantCredential), args.Error(1)
}

func (m *MockCredentialRepository) ListExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*models.TenantCredential, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]*models.TenantCredential), args.Error(1)
}

func (m *MockCredentialRepository) DeleteIfToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	args := m.Called(ctx, userID, tokenID)
	return args.Bool(0), args.Error(1)
}

type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Assign(ctx context.Context, userID uuid.UUID, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockUserRoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockUserRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockUserRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, leaseID, limit, offset)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Payment, error) {
	args := m.Called(ctx, id, from, to, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CreateDue(ctx context.Context, leaseID uuid.UUID, amount decimal.Decimal, dueDate time.Time) (bool, error) {
	args := m.Called(ctx, leaseID, amount, dueDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

type MockAgentAssignmentRepository struct {
	mock.Mock
}

func (m *MockAgentAssignmentRepository) Upsert(ctx context.Context, assignment *models.AgentAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAgentAssignmentRepository) Delete(ctx context.Context, propertyID, agentID uuid.UUID) error {
	args := m.Called(ctx, propertyID, agentID)
	return args.Error(0)
}

func (m *MockAgentAssignmentRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.AgentAssignment, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).([]*models.AgentAssignment), args.Error(1)
}

func (m *MockAgentAssignmentRepository) ListPropertiesByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, agentID, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	return args.Get(0).([]*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceRepository) AssignVendor(ctx context.Context, id, vendorID uuid.UUID) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

type MockManagerAssignmentRepository struct {
	mock.Mock
}

func (m *MockManagerAssignmentRepository) Upsert(ctx context.Context, assignment *models.ManagerAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockManagerAssignmentRepository) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*models.ManagerAssignment, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ManagerAssignment), args.Error(1)
}

func (m *MockManagerAssignmentRepository) Delete(ctx context.Context, propertyID uuid.UUID) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

func (m *MockManagerAssignmentRepository) ListPropertiesByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, managerID, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, userID, otherID, limit, offset)
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockMessageRepository) ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, id, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

type MockTerritoryRepository struct {
	mock.Mock
}

func (m *MockTerritoryRepository) Add(ctx context.Context, territory *models.AgentTerritory) error {
	args := m.Called(ctx, territory)
	return args.Error(0)
}

func (m *MockTerritoryRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentTerritory, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]*models.AgentTerritory), args.Error(1)
}

func (m *MockTerritoryRepository) SetPrimary(ctx context.Context, agentID, territoryID uuid.UUID) error {
	args := m.Called(ctx, agentID, territoryID)
	return args.Error(0)
}

func (m *MockTerritoryRepository) Delete(ctx context.Context, agentID, territoryID uuid.UUID) error {
	args := m.Called(ctx, agentID, territoryID)
	return args.Error(0)
}

type MockSpecializationRepository struct {
	mock.Mock
}

func (m *MockSpecializationRepository) Upsert(ctx context.Context, spec *models.AgentSpecialization) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockSpecializationRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentSpecialization, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]*models.AgentSpecialization), args.Error(1)
}

func (m *MockSpecializationRepository) Delete(ctx context.Context, agentID uuid.UUID, propertyType models.PropertyType) error {
	args := m.Called(ctx, agentID, propertyType)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockCacheService) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	args := m.Called(ctx, property, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProperty(ctx context.Context, propertyID uuid.UUID) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

func (m *MockCacheService) GetHeldRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Role), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) SetHeldRoles(ctx context.Context, userID uuid.UUID, roles []models.Role, ttl time.Duration) error {
	args := m.Called(ctx, userID, roles, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteHeldRoles(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Publish(ctx context.Context, channel string, payload any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockShortlistStore struct {
	mock.Mock
}

func (m *MockShortlistStore) Add(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID, snapshot models.PropertySnapshot, capacity int) (models.AddResult, error) {
	args := m.Called(ctx, kind, userID, snapshot, capacity)
	return args.Get(0).(models.AddResult), args.Error(1)
}

func (m *MockShortlistStore) Remove(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) error {
	args := m.Called(ctx, kind, userID, propertyID)
	return args.Error(0)
}

func (m *MockShortlistStore) Contains(ctx context.Context, kind models.ShortlistKind, userID, propertyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, userID, propertyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShortlistStore) List(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) ([]models.PropertySnapshot, error) {
	args := m.Called(ctx, kind, userID)
	return args.Get(0).([]models.PropertySnapshot), args.Error(1)
}

func (m *MockShortlistStore) Clear(ctx context.Context, kind models.ShortlistKind, userID uuid.UUID) error {
	args := m.Called(ctx, kind, userID)
	return args.Error(0)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (string, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) UploadFile(ctx context.Context, bucketName, objectName string, file models.FileUpload) (string, error) {
	args := m.Called(ctx, bucketName, objectName, file)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockStorageService) AllowPublicRead(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockStorageService) ObjectURL(bucketName, objectName string) string {
	args := m.Called(bucketName, objectName)
	return args.String(0)
}

func (m *MockStorageService) Ping(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) Authorize(ctx context.Context, session models.Session, action Action, propertyID *uuid.UUID) error {
	args := m.Called(ctx, session, action, propertyID)
	return args.Error(0)
}

// newSession builds a session holding roles with the first one active.
func newSession(userID uuid.UUID, roles ...models.Role) models.Session {
	var active models.Role
	if len(roles) > 0 {
		active = roles[0]
	}
	session, err := models.NewSession(userID, models.NewRoleSet(roles...), active)
	if err != nil {
		panic(err)
	}
	return session
}
