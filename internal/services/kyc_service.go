package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	maxKYCDocumentSize = 10 << 20
	kycLinkExpiry      = 15 * time.Minute
)

// KYCSubmission is a user's identity document submission.
type KYCSubmission struct {
	IDType   models.IDType
	IDNumber string
	Front    models.FileUpload
	Back     models.FileUpload
}

type KYCService interface {
	Submit(ctx context.Context, session models.Session, submission KYCSubmission) (*models.KYCVerification, error)
	Review(ctx context.Context, session models.Session, userID uuid.UUID, approve bool, reason *string) (*models.KYCVerification, error)
	// Get returns the user's record. Only the user and reviewers may read it.
	Get(ctx context.Context, session models.Session, userID uuid.UUID) (*models.KYCVerification, error)
}

type kycService struct {
	kycRepo   repositories.KYCRepository
	access    AccessService
	storage   StorageService
	notifier  Notifier
	kycBucket string
}

func NewKYCService(kycRepo repositories.KYCRepository, access AccessService, storage StorageService, notifier Notifier, kycBucket string) KYCService {
	return &kycService{
		kycRepo:   kycRepo,
		access:    access,
		storage:   storage,
		notifier:  notifier,
		kycBucket: kycBucket,
	}
}

func (s *kycService) Submit(ctx context.Context, session models.Session, submission KYCSubmission) (*models.KYCVerification, error) {
	submission.IDNumber = strings.TrimSpace(submission.IDNumber)
	if !submission.IDType.IsValid() {
		return nil, common.NewValidationError("id_type", "unknown identity document type")
	}
	if err := common.ValidateRequiredString(submission.IDNumber, "id_number"); err != nil {
		return nil, err
	}
	if len(submission.IDNumber) > 64 {
		return nil, common.NewValidationError("id_number", "id_number cannot exceed 64 characters")
	}
	frontExt, err := imageExtension(submission.Front, "document_front", maxKYCDocumentSize)
	if err != nil {
		return nil, err
	}
	backExt, err := imageExtension(submission.Back, "document_back", maxKYCDocumentSize)
	if err != nil {
		return nil, err
	}

	userID := session.UserID()
	existing, err := s.kycRepo.GetByUser(ctx, userID)
	switch {
	case err == nil && existing.Status == models.KYCStatusApproved:
		return nil, common.NewAppError(common.CodeConflict, "identity is already verified")
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return nil, common.FromDBError(err, "kyc verification")
	}

	// Object names are unique per submission.
	batch := uuid.New()
	frontURL, err := s.storage.UploadFile(ctx, s.kycBucket, fmt.Sprintf("%s/%s-front%s", userID, batch, frontExt), submission.Front)
	if err != nil {
		return nil, err
	}
	backURL, err := s.storage.UploadFile(ctx, s.kycBucket, fmt.Sprintf("%s/%s-back%s", userID, batch, backExt), submission.Back)
	if err != nil {
		return nil, err
	}

	kyc := &models.KYCVerification{
		ID:               uuid.New(),
		UserID:           userID,
		IDType:           submission.IDType,
		IDNumber:         submission.IDNumber,
		DocumentFrontURL: frontURL,
		DocumentBackURL:  backURL,
	}
	if err := s.kycRepo.Submit(ctx, kyc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "identity is already verified")
		}
		return nil, common.FromDBError(err, "kyc verification")
	}
	log.Printf("KYC: submission received for user %s", userID)
	return kyc, nil
}

func (s *kycService) Review(ctx context.Context, session models.Session, userID uuid.UUID, approve bool, reason *string) (*models.KYCVerification, error) {
	if err := s.access.Authorize(ctx, session, ActionKYCReview, nil); err != nil {
		return nil, err
	}

	target := models.KYCStatusApproved
	if !approve {
		target = models.KYCStatusRejected
		if err := common.SanitizeHTMLField(reason, "reason", 1000); err != nil {
			return nil, err
		}
		if reason == nil || *reason == "" {
			return nil, common.NewValidationError("reason", "a rejection reason is required")
		}
	} else {
		reason = nil
	}

	current, err := s.kycRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, common.FromDBError(err, "kyc verification")
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, &common.AppError{
			Code:    common.CodeConflict,
			Message: fmt.Sprintf("cannot move kyc from %s to %s", current.Status, target),
			Details: map[string]string{"status": string(current.Status)},
		}
	}

	reviewed, err := s.kycRepo.Review(ctx, userID, current.Status, target, reason, session.UserID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError(common.CodeConflict, "kyc verification changed during review")
		}
		return nil, common.FromDBError(err, "kyc verification")
	}
	log.Printf("KYC: user %s moved from %s to %s by %s", userID, current.Status, target, session.UserID())

	body := "Your identity verification was approved."
	if target == models.KYCStatusRejected {
		body = "Your identity verification was rejected: " + *reason
	}
	notify(ctx, s.notifier, models.NewNotification(models.NotificationKYCReviewed, userID,
		"Identity verification "+string(target), body, map[string]string{"status": string(target)}))
	return reviewed, nil
}

func (s *kycService) Get(ctx context.Context, session models.Session, userID uuid.UUID) (*models.KYCVerification, error) {
	if userID != session.UserID() {
		if err := s.access.Authorize(ctx, session, ActionKYCReview, nil); err != nil {
			return nil, err
		}
	}
	kyc, err := s.kycRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, common.FromDBError(err, "kyc verification")
	}
	s.presignDocuments(ctx, kyc)
	return kyc, nil
}

// presignDocuments fills the download links. The KYC bucket is not publicly readable.
func (s *kycService) presignDocuments(ctx context.Context, kyc *models.KYCVerification) {
	prefix := s.storage.ObjectURL(s.kycBucket, "") + "/"
	docs := []struct {
		url  string
		link *string
	}{
		{kyc.DocumentFrontURL, &kyc.DocumentFrontLink},
		{kyc.DocumentBackURL, &kyc.DocumentBackLink},
	}
	for _, doc := range docs {
		key, ok := strings.CutPrefix(doc.url, prefix)
		if !ok {
			continue
		}
		link, err := s.storage.PresignedURL(ctx, s.kycBucket, key, kycLinkExpiry)
		if err != nil {
			log.Printf("KYC: failed to presign %s: %v", key, err)
			continue
		}
		*doc.link = link
	}
}
