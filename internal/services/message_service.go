package services

import (
	"context"
	"errors"

	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

// Notifier receives a hook whenever a message is created. The asynq-backed
// implementation enqueues a notification task; failures are the caller's to
// log, never to fail the send on.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, message *models.Message) error
}

type MessageService interface {
	Send(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkRead(ctx context.Context, id, readerID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*models.Message, error)
	ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]*models.Message, error)
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
}

type messageService struct {
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository, notifier Notifier) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
	}
}

func (s *messageService) Send(ctx context.Context, message *models.Message) error {
	if message.Subject == "" {
		return errors.New("subject is required")
	}
	if message.Message == "" {
		return errors.New("message body is required")
	}
	if message.SenderID == message.ReceiverID {
		return errors.New("cannot send a message to yourself")
	}

	if _, err := s.profileRepo.GetByID(ctx, message.ReceiverID); err != nil {
		return errors.New("receiver profile not found")
	}

	message.ID = uuid.New()
	message.IsRead = false

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return err
	}

	if s.notifier != nil {
		// Best effort; the message row is already persisted
		s.notifier.NotifyNewMessage(ctx, message)
	}
	return nil
}

func (s *messageService) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// MarkRead flips the read flag; only the receiver may do so.
func (s *messageService) MarkRead(ctx context.Context, id, readerID uuid.UUID) error {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if message.ReceiverID != readerID {
		return errors.New("only the receiver can mark a message read")
	}
	if message.IsRead {
		return nil
	}
	return s.messageRepo.MarkRead(ctx, id)
}

func (s *messageService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.messageRepo.Delete(ctx, id)
}

func (s *messageService) ListInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	return s.messageRepo.ListReceived(ctx, receiverID, limit, offset)
}

func (s *messageService) ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	return s.messageRepo.ListSent(ctx, senderID, limit, offset)
}

func (s *messageService) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	return s.messageRepo.CountUnread(ctx, receiverID)
}
