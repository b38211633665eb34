package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
	"github.com/skip2/go-qrcode"
)

const (
	qrImageSize       = 320
	credentialCleanup = 100
)

// CredentialOptions configures tenant credential issuance.
type CredentialOptions struct {
	SigningKey       []byte
	TTL              time.Duration
	IssueLimit       int
	IssueLimitWindow time.Duration
	Bucket           string
	CleanupMaxAge    time.Duration
}

// credentialClaims is the payload of a tenant verification token.
type credentialClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type OnboardingService interface {
	State(ctx context.Context, userID uuid.UUID) (*models.OnboardingStatus, error)
	IssueCredential(ctx context.Context, session models.Session) (*models.IssuedCredential, error)
	// ScanCredential exchanges a presented credential for an active lease on the property.
	// Scanning a credential for a pair that already has an active lease is a no-op with a notice.
	ScanCredential(ctx context.Context, session models.Session, token string, propertyID uuid.UUID) (*models.OnboardResult, error)
	CleanupExpiredCredentials(ctx context.Context) (int, error)
}

type onboardingService struct {
	kycRepo        repositories.KYCRepository
	credentialRepo repositories.CredentialRepository
	leaseRepo      repositories.LeaseRepository
	userRoleRepo   repositories.UserRoleRepository
	access         AccessService
	storage        StorageService
	cacheService   caching.CacheService
	notifier       Notifier
	opts           CredentialOptions
	now            func() time.Time
}

func NewOnboardingService(
	kycRepo repositories.KYCRepository,
	credentialRepo repositories.CredentialRepository,
	leaseRepo repositories.LeaseRepository,
	userRoleRepo repositories.UserRoleRepository,
	access AccessService,
	storage StorageService,
	cacheService caching.CacheService,
	notifier Notifier,
	opts CredentialOptions,
) OnboardingService {
	return &onboardingService{
		kycRepo:        kycRepo,
		credentialRepo: credentialRepo,
		leaseRepo:      leaseRepo,
		userRoleRepo:   userRoleRepo,
		access:         access,
		storage:        storage,
		cacheService:   cacheService,
		notifier:       notifier,
		opts:           opts,
		now:            time.Now,
	}
}

// CredentialObjectName is the storage key of a tenant's QR image. Re-issuing overwrites it.
func CredentialObjectName(userID uuid.UUID) string {
	return fmt.Sprintf("credentials/%s.png", userID)
}

func (s *onboardingService) State(ctx context.Context, userID uuid.UUID) (*models.OnboardingStatus, error) {
	kyc, err := s.kycRepo.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.FromDBError(err, "kyc verification")
	}
	credential, err := s.credentialRepo.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.FromDBError(err, "credential")
	}
	active, pending, err := s.leaseRepo.CountByTenant(ctx, userID)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}

	status := &models.OnboardingStatus{
		UserID:        userID,
		State:         models.DeriveOnboardingState(kyc, credential, active, pending, s.now()),
		ActiveLeases:  active,
		PendingLeases: pending,
	}
	if kyc != nil {
		kycStatus := kyc.Status
		status.KYCStatus = &kycStatus
	}
	if credential != nil {
		expires := credential.ExpiresAt
		status.CredentialExpiresAt = &expires
	}
	return status, nil
}

func (s *onboardingService) requireApprovedKYC(ctx context.Context, userID uuid.UUID) error {
	kyc, err := s.kycRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewAppError(common.CodeKYCNotApproved, "identity verification has not been submitted")
		}
		return common.FromDBError(err, "kyc verification")
	}
	if kyc.Status != models.KYCStatusApproved {
		return &common.AppError{
			Code:    common.CodeKYCNotApproved,
			Message: "identity verification is not approved",
			Details: map[string]string{"kyc_status": string(kyc.Status)},
		}
	}
	return nil
}

func (s *onboardingService) IssueCredential(ctx context.Context, session models.Session) (*models.IssuedCredential, error) {
	if !session.Holds(models.RoleTenant) {
		return nil, common.NewPermissionDenied("issue a tenant credential")
	}
	userID := session.UserID()
	if err := s.requireApprovedKYC(ctx, userID); err != nil {
		return nil, err
	}

	limited, err := s.cacheService.IsRateLimited(ctx, "credential:"+userID.String(), s.opts.IssueLimit, s.opts.IssueLimitWindow)
	if err != nil {
		log.Printf("ONBOARDING: rate limit check failed for %s: %v", userID, err)
	} else if limited {
		return nil, common.NewAppError(common.CodeRateLimited, "too many credentials issued, try again later")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.opts.TTL)
	tokenID := random.String(32, random.Alphanumeric)
	claims := credentialClaims{
		Type: models.CredentialTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        tokenID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.SigningKey)
	if err != nil {
		return nil, common.WrapError(common.CodeInternal, "failed to sign credential", err)
	}

	png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, common.WrapError(common.CodeInternal, "failed to render credential", err)
	}
	objectName := CredentialObjectName(userID)
	if _, err := s.storage.UploadFile(ctx, s.opts.Bucket, objectName, models.FileUpload{
		Filename:    "credential.png",
		ContentType: "image/png",
		Size:        int64(len(png)),
		Data:        png,
	}); err != nil {
		return nil, err
	}
	// the image is a bearer credential, so its link lives no longer than the token
	imageURL, err := s.storage.PresignedURL(ctx, s.opts.Bucket, objectName, s.opts.TTL)
	if err != nil {
		return nil, err
	}

	record := &models.TenantCredential{
		ID:        uuid.New(),
		UserID:    userID,
		TokenID:   tokenID,
		ImageKey:  objectName,
		ImageURL:  imageURL,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := s.credentialRepo.Upsert(ctx, record); err != nil {
		return nil, common.FromDBError(err, "credential")
	}
	log.Printf("ONBOARDING: credential issued for %s, expires %s", userID, expiresAt.Format(time.RFC3339))

	return &models.IssuedCredential{Token: token, ImageURL: imageURL, ExpiresAt: expiresAt}, nil
}

// verify checks signature, type and expiry and returns the tenant the token was issued to.
func (s *onboardingService) verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims := &credentialClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.opts.SigningKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, common.NewAppError(common.CodeCredentialExpired, "credential has expired")
		}
		return uuid.Nil, common.WrapError(common.CodeCredentialInvalid, "credential is not valid", err)
	}
	if claims.Type != models.CredentialTokenType {
		return uuid.Nil, common.NewAppError(common.CodeCredentialInvalid, "credential has the wrong type")
	}
	tenantID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, common.NewAppError(common.CodeCredentialInvalid, "credential subject is malformed")
	}

	// Only the most recently issued credential is honoured.
	record, err := s.credentialRepo.GetByUser(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, common.NewAppError(common.CodeCredentialInvalid, "credential has been revoked")
		}
		return uuid.Nil, common.FromDBError(err, "credential")
	}
	if record.TokenID != claims.ID {
		return uuid.Nil, common.NewAppError(common.CodeCredentialInvalid, "credential has been superseded")
	}
	return tenantID, nil
}

func (s *onboardingService) ScanCredential(ctx context.Context, session models.Session, token string, propertyID uuid.UUID) (*models.OnboardResult, error) {
	if err := s.access.Authorize(ctx, session, ActionLeaseCreate, &propertyID); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, common.NewValidationError("token", "token is required")
	}

	tenantID, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	// KYC may have been revoked after the credential was issued.
	if err := s.requireApprovedKYC(ctx, tenantID); err != nil {
		return nil, err
	}
	isTenant, err := s.userRoleRepo.HasRole(ctx, tenantID, models.RoleTenant)
	if err != nil {
		return nil, common.FromDBError(err, "user role")
	}
	if !isTenant {
		return nil, &common.AppError{
			Code:    common.CodeRoleNotHeld,
			Message: "credential holder is not a tenant",
			Details: map[string]string{"role": string(models.RoleTenant)},
		}
	}

	lease := models.NewScannedLease(propertyID, tenantID, session.UserID(), s.now())
	lease.ID = uuid.New()
	stored, created, err := s.leaseRepo.CreateActiveIfAbsent(ctx, lease)
	if err != nil {
		if errors.Is(err, repositories.ErrLeaseContended) {
			return nil, common.NewAppError(common.CodeConflict, "lease changed while onboarding, retry the scan")
		}
		return nil, common.FromDBError(err, "lease")
	}

	result := &models.OnboardResult{Lease: stored, Created: created}
	if !created {
		result.Notice = models.NoticeAlreadyAssociated
		return result, nil
	}

	if err := s.cacheService.DeleteProperty(ctx, propertyID); err != nil {
		log.Printf("Failed to invalidate cache for property %s: %v", propertyID, err)
	}
	log.Printf("ONBOARDING: lease %s created for tenant %s on property %s", stored.ID, tenantID, propertyID)
	notify(ctx, s.notifier, models.NewNotification(models.NotificationLeaseCreated, tenantID,
		"Your lease is active", "A lease was created for you. Your landlord will confirm the rent and deposit.",
		map[string]string{"lease_id": stored.ID.String(), "property_id": propertyID.String()}))
	return result, nil
}

// CleanupExpiredCredentials removes QR images and records of credentials expired longer than
// the configured age.
func (s *onboardingService) CleanupExpiredCredentials(ctx context.Context) (int, error) {
	before := s.now().Add(-s.opts.CleanupMaxAge)
	expired, err := s.credentialRepo.ListExpiredBefore(ctx, before, credentialCleanup)
	if err != nil {
		return 0, common.FromDBError(err, "credential")
	}

	removed := 0
	for _, c := range expired {
		// A credential re-issued since the listing keeps its record and image.
		deleted, err := s.credentialRepo.DeleteIfToken(ctx, c.UserID, c.TokenID)
		if err != nil {
			return removed, common.FromDBError(err, "credential")
		}
		if !deleted {
			continue
		}
		if err := s.storage.Delete(ctx, s.opts.Bucket, c.ImageKey); err != nil {
			log.Printf("ONBOARDING: failed to remove credential image %s: %v", c.ImageKey, err)
		}
		removed++
	}
	return removed, nil
}
