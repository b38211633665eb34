package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
)

const (
	heldRolesTTL  = 5 * time.Minute
	maxAvatarSize = 5 << 20
)

type IdentityService interface {
	UpsertOwnProfile(ctx context.Context, session models.Session, input models.ProfileInput) (*models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateOwnProfile(ctx context.Context, session models.Session, input models.ProfileInput) (*models.Profile, error)
	DeactivateOwnProfile(ctx context.Context, session models.Session) error
	UploadAvatar(ctx context.Context, session models.Session, file models.FileUpload) (*models.Profile, error)

	HeldRoles(ctx context.Context, userID uuid.UUID) (models.RoleSet, error)
	AssignRole(ctx context.Context, session models.Session, userID uuid.UUID, role models.Role) error
	RevokeRole(ctx context.Context, session models.Session, userID uuid.UUID, role models.Role) error
	// ResolveSession builds the request session. An empty requested role picks the default.
	ResolveSession(ctx context.Context, userID uuid.UUID, requested models.Role) (models.Session, error)
}

type identityService struct {
	profileRepo  repositories.ProfileRepository
	userRoleRepo repositories.UserRoleRepository
	access       AccessService
	storage      StorageService
	cacheService caching.CacheService
	avatarBucket string
}

func NewIdentityService(profileRepo repositories.ProfileRepository, userRoleRepo repositories.UserRoleRepository, access AccessService, storage StorageService, cacheService caching.CacheService, avatarBucket string) IdentityService {
	return &identityService{
		profileRepo:  profileRepo,
		userRoleRepo: userRoleRepo,
		access:       access,
		storage:      storage,
		cacheService: cacheService,
		avatarBucket: avatarBucket,
	}
}

func validateProfileInput(input *models.ProfileInput) error {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := common.ValidateRequiredString(input.FirstName, "first_name"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(input.LastName, "last_name"); err != nil {
		return err
	}
	if len(input.FirstName) > 100 || len(input.LastName) > 100 {
		return common.NewValidationError("name", "names cannot exceed 100 characters")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return common.NewValidationError("email", "email must be a valid address")
	}
	return common.ValidateOptionalString(input.Phone, "phone", 32)
}

func (s *identityService) UpsertOwnProfile(ctx context.Context, session models.Session, input models.ProfileInput) (*models.Profile, error) {
	if err := validateProfileInput(&input); err != nil {
		return nil, err
	}
	profile := &models.Profile{
		ID:        session.UserID(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Status:    models.ProfileStatusActive,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, common.FromDBError(err, "profile")
	}
	return profile, nil
}

func (s *identityService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.FromDBError(err, "profile")
	}
	return profile, nil
}

func (s *identityService) UpdateOwnProfile(ctx context.Context, session models.Session, input models.ProfileInput) (*models.Profile, error) {
	if err := validateProfileInput(&input); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, session.UserID())
	if err != nil {
		return nil, common.FromDBError(err, "profile")
	}
	if profile.Status == models.ProfileStatusDeactivated {
		return nil, common.NewAppError(common.CodeConflict, "profile is deactivated")
	}

	profile.FirstName = input.FirstName
	profile.LastName = input.LastName
	profile.Email = input.Email
	profile.Phone = input.Phone
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, common.FromDBError(err, "profile")
	}
	return profile, nil
}

func (s *identityService) DeactivateOwnProfile(ctx context.Context, session models.Session) error {
	if err := s.profileRepo.Deactivate(ctx, session.UserID()); err != nil {
		return common.FromDBError(err, "profile")
	}
	return nil
}

// UploadAvatar stores the image under a per-user object name so the URL survives re-uploads.
func (s *identityService) UploadAvatar(ctx context.Context, session models.Session, file models.FileUpload) (*models.Profile, error) {
	ext, err := imageExtension(file, "avatar", maxAvatarSize)
	if err != nil {
		return nil, err
	}
	if ext == ".pdf" {
		return nil, common.NewValidationError("avatar", "avatar must be an image")
	}

	objectName := fmt.Sprintf("%s/avatar%s", session.UserID(), ext)
	url, err := s.storage.UploadFile(ctx, s.avatarBucket, objectName, file)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateAvatar(ctx, session.UserID(), url); err != nil {
		return nil, common.FromDBError(err, "profile")
	}
	return s.GetProfile(ctx, session.UserID())
}

func (s *identityService) HeldRoles(ctx context.Context, userID uuid.UUID) (models.RoleSet, error) {
	if cached, found, err := s.cacheService.GetHeldRoles(ctx, userID); err != nil {
		log.Printf("Cache error for held roles of %s: %v", userID, err)
	} else if found {
		return models.NewRoleSet(cached...), nil
	}

	roles, err := s.userRoleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, common.FromDBError(err, "user roles")
	}
	if cacheErr := s.cacheService.SetHeldRoles(ctx, userID, roles, heldRolesTTL); cacheErr != nil {
		log.Printf("Failed to cache held roles of %s: %v", userID, cacheErr)
	}
	return models.NewRoleSet(roles...), nil
}

func (s *identityService) AssignRole(ctx context.Context, session models.Session, userID uuid.UUID, role models.Role) error {
	if err := s.access.Authorize(ctx, session, ActionRoleManage, nil); err != nil {
		return err
	}
	if !role.IsValid() {
		return common.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if err := s.userRoleRepo.Assign(ctx, userID, role); err != nil {
		return common.FromDBError(err, "user")
	}
	s.invalidateRoles(ctx, userID)
	return nil
}

func (s *identityService) RevokeRole(ctx context.Context, session models.Session, userID uuid.UUID, role models.Role) error {
	if err := s.access.Authorize(ctx, session, ActionRoleManage, nil); err != nil {
		return err
	}
	if !role.IsValid() {
		return common.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if err := s.userRoleRepo.Revoke(ctx, userID, role); err != nil {
		return common.FromDBError(err, "user role")
	}
	s.invalidateRoles(ctx, userID)
	return nil
}

func (s *identityService) invalidateRoles(ctx context.Context, userID uuid.UUID) {
	if err := s.cacheService.DeleteHeldRoles(ctx, userID); err != nil {
		log.Printf("Failed to invalidate held roles of %s: %v", userID, err)
	}
}

func (s *identityService) ResolveSession(ctx context.Context, userID uuid.UUID, requested models.Role) (models.Session, error) {
	held, err := s.HeldRoles(ctx, userID)
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(userID, held, requested)
}
