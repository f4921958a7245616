package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeMessageNotification = "message_notification"
	TypeOverdueNotification = "overdue_notification"
)

// MessageNotificationPayload defines the payload for message notification tasks
type MessageNotificationPayload struct {
	MessageID  uuid.UUID `json:"message_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Subject    string    `json:"subject"`
}

// OverdueNotificationPayload defines the payload for overdue payment notices
type OverdueNotificationPayload struct {
	LeaseID   uuid.UUID `json:"lease_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Amount    float64   `json:"amount"`
}

// NewMessageNotificationTask creates a message notification task
func NewMessageNotificationTask(message *models.Message) (*asynq.Task, error) {
	payload := MessageNotificationPayload{
		MessageID:  message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Subject:    message.Subject,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMessageNotification, data), nil
}

// NewOverdueNotificationTask creates an overdue payment notice task
func NewOverdueNotificationTask(overdue *models.OverduePayment) (*asynq.Task, error) {
	payload := OverdueNotificationPayload{
		LeaseID:   overdue.LeaseID,
		PaymentID: overdue.PaymentID,
		TenantID:  overdue.TenantID,
		Amount:    overdue.Amount,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOverdueNotification, data), nil
}

// AsynqNotifier enqueues notification tasks. It satisfies the message
// service's notifier hook.
type AsynqNotifier struct {
	client *asynq.Client
}

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

func (n *AsynqNotifier) NotifyNewMessage(ctx context.Context, message *models.Message) error {
	task, err := NewMessageNotificationTask(message)
	if err != nil {
		return err
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		log.Printf("WARN: failed to enqueue message notification: %v", err)
		return err
	}
	return nil
}

// NotifyOverduePayment enqueues an overdue notice for the renter on the lease.
// It satisfies the payment service's notifier hook.
func (n *AsynqNotifier) NotifyOverduePayment(ctx context.Context, overdue *models.OverduePayment) error {
	task, err := NewOverdueNotificationTask(overdue)
	if err != nil {
		return err
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		log.Printf("WARN: failed to enqueue overdue notice: %v", err)
		return err
	}
	return nil
}

// NotificationProcessor handles queued notification tasks
type NotificationProcessor struct {
	profileRepo repositories.ProfileRepository
	messageRepo repositories.MessageRepository
}

func NewNotificationProcessor(profileRepo repositories.ProfileRepository, messageRepo repositories.MessageRepository) *NotificationProcessor {
	return &NotificationProcessor{
		profileRepo: profileRepo,
		messageRepo: messageRepo,
	}
}

// HandleMessageNotification resolves both parties and emits the notification.
// Delivery is a log line for now; a mail or push integration slots in here.
func (p *NotificationProcessor) HandleMessageNotification(ctx context.Context, t *asynq.Task) error {
	var payload MessageNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	// The message may have been deleted between enqueue and processing
	if _, err := p.messageRepo.GetByID(ctx, payload.MessageID); err != nil {
		log.Printf("Skipping notification for deleted message %s", payload.MessageID)
		return nil
	}

	sender, err := p.profileRepo.GetByID(ctx, payload.SenderID)
	if err != nil {
		return fmt.Errorf("failed to resolve sender %s: %w", payload.SenderID, err)
	}
	receiver, err := p.profileRepo.GetByID(ctx, payload.ReceiverID)
	if err != nil {
		return fmt.Errorf("failed to resolve receiver %s: %w", payload.ReceiverID, err)
	}

	senderName := payload.SenderID.String()
	if sender.Username != nil {
		senderName = *sender.Username
	}
	receiverName := payload.ReceiverID.String()
	if receiver.Username != nil {
		receiverName = *receiver.Username
	}

	log.Printf("Notification: new message %q from %s to %s", payload.Subject, senderName, receiverName)
	return nil
}

// HandleOverdueNotification emits an overdue payment notice to the renter
func (p *NotificationProcessor) HandleOverdueNotification(ctx context.Context, t *asynq.Task) error {
	var payload OverdueNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal overdue payload: %w", err)
	}

	tenant, err := p.profileRepo.GetByID(ctx, payload.TenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %s: %w", payload.TenantID, err)
	}

	tenantName := payload.TenantID.String()
	if tenant.Username != nil {
		tenantName = *tenant.Username
	}

	log.Printf("Notification: payment %s of %.2f on lease %s is overdue for %s",
		payload.PaymentID, payload.Amount, payload.LeaseID, tenantName)
	return nil
}

// RegisterHandlers wires the processor's handlers into an asynq mux
func (p *NotificationProcessor) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeMessageNotification, p.HandleMessageNotification)
	mux.HandleFunc(TypeOverdueNotification, p.HandleOverdueNotification)
}
