package services

import (
	"context"
	"errors"
	"fmt"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxMessageLength = 5000

type MessagingService interface {
	Send(ctx context.Context, session models.Session, input models.MessageInput) (*models.Message, error)
	Conversation(ctx context.Context, session models.Session, otherUserID uuid.UUID, limit, offset int) ([]*models.Message, error)
	Inbox(ctx context.Context, session models.Session, limit, offset int) ([]*models.Message, error)
	MarkRead(ctx context.Context, session models.Session, messageID uuid.UUID) (*models.Message, error)
}

type messagingService struct {
	messageRepo     repositories.MessageRepository
	profileRepo     repositories.ProfileRepository
	leaseRepo       repositories.LeaseRepository
	propertyRepo    repositories.PropertyRepository
	managerRepo     repositories.ManagerAssignmentRepository
	maintenanceRepo repositories.MaintenanceRepository
	notifier        Notifier
}

func NewMessagingService(
	messageRepo repositories.MessageRepository,
	profileRepo repositories.ProfileRepository,
	leaseRepo repositories.LeaseRepository,
	propertyRepo repositories.PropertyRepository,
	managerRepo repositories.ManagerAssignmentRepository,
	maintenanceRepo repositories.MaintenanceRepository,
	notifier Notifier,
) MessagingService {
	return &messagingService{
		messageRepo:     messageRepo,
		profileRepo:     profileRepo,
		leaseRepo:       leaseRepo,
		propertyRepo:    propertyRepo,
		managerRepo:     managerRepo,
		maintenanceRepo: maintenanceRepo,
		notifier:        notifier,
	}
}

// propertyParticipants returns the owner and, if any, the manager of a property.
func (s *messagingService) propertyParticipants(ctx context.Context, propertyID uuid.UUID) (map[uuid.UUID]bool, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, common.FromDBError(err, "property")
	}
	participants := map[uuid.UUID]bool{property.OwnerID: true}

	manager, err := s.managerRepo.GetByProperty(ctx, propertyID)
	switch {
	case err == nil:
		participants[manager.ManagerID] = true
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, common.FromDBError(err, "manager assignment")
	}
	return participants, nil
}

func (s *messagingService) leaseParticipants(ctx context.Context, leaseID uuid.UUID) (map[uuid.UUID]bool, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, common.FromDBError(err, "lease")
	}
	participants, err := s.propertyParticipants(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	participants[lease.TenantID] = true
	return participants, nil
}

func (s *messagingService) maintenanceParticipants(ctx context.Context, requestID uuid.UUID) (map[uuid.UUID]bool, error) {
	req, err := s.maintenanceRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, common.FromDBError(err, "maintenance request")
	}
	participants, err := s.propertyParticipants(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	participants[req.RequesterID] = true
	if req.VendorID != nil {
		participants[*req.VendorID] = true
	}
	return participants, nil
}

func requireParticipants(participants map[uuid.UUID]bool, subject string, users ...uuid.UUID) error {
	for _, u := range users {
		if !participants[u] {
			return common.NewPermissionDenied(fmt.Sprintf("message about this %s", subject))
		}
	}
	return nil
}

func (s *messagingService) Send(ctx context.Context, session models.Session, input models.MessageInput) (*models.Message, error) {
	sender := session.UserID()
	if input.RecipientID == uuid.Nil {
		return nil, common.NewValidationError("recipient_id", "recipient_id is required")
	}
	if input.RecipientID == sender {
		return nil, common.NewValidationError("recipient_id", "cannot message yourself")
	}
	if err := common.ValidateRequiredString(input.Body, "body"); err != nil {
		return nil, err
	}
	if err := common.SanitizeHTMLField(&input.Body, "body", maxMessageLength); err != nil {
		return nil, err
	}

	recipient, err := s.profileRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		return nil, common.FromDBError(err, "recipient")
	}
	if recipient.Status == models.ProfileStatusDeactivated {
		return nil, common.NewAppError(common.CodeConflict, "recipient has deactivated their profile")
	}

	if input.LeaseID != nil {
		participants, err := s.leaseParticipants(ctx, *input.LeaseID)
		if err != nil {
			return nil, err
		}
		if err := requireParticipants(participants, "lease", sender, input.RecipientID); err != nil {
			return nil, err
		}
	}
	if input.MaintenanceRequestID != nil {
		participants, err := s.maintenanceParticipants(ctx, *input.MaintenanceRequestID)
		if err != nil {
			return nil, err
		}
		if err := requireParticipants(participants, "maintenance request", sender, input.RecipientID); err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		ID:                   uuid.New(),
		SenderID:             sender,
		RecipientID:          input.RecipientID,
		LeaseID:              input.LeaseID,
		MaintenanceRequestID: input.MaintenanceRequestID,
		Body:                 input.Body,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, common.FromDBError(err, "message")
	}

	notify(ctx, s.notifier, models.NewNotification(models.NotificationMessageReceived, input.RecipientID,
		"New message", "You have a new message.", map[string]string{
			"message_id": msg.ID.String(),
			"sender_id":  sender.String(),
		}))
	return msg, nil
}

func (s *messagingService) Conversation(ctx context.Context, session models.Session, otherUserID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListConversation(ctx, session.UserID(), otherUserID, limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "message")
	}
	return messages, nil
}

func (s *messagingService) Inbox(ctx context.Context, session models.Session, limit, offset int) ([]*models.Message, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListInbox(ctx, session.UserID(), limit, offset)
	if err != nil {
		return nil, common.FromDBError(err, "message")
	}
	return messages, nil
}

func (s *messagingService) MarkRead(ctx context.Context, session models.Session, messageID uuid.UUID) (*models.Message, error) {
	msg, err := s.messageRepo.MarkRead(ctx, messageID, session.UserID())
	if err != nil {
		return nil, common.FromDBError(err, "message")
	}
	return msg, nil
}
