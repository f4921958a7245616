package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"

	"github.com/google/uuid"
)

// OverdueNotifier receives a hook for every payment the sweep flips to
// overdue. The asynq-backed implementation enqueues a notice task.
type OverdueNotifier interface {
	NotifyOverduePayment(ctx context.Context, overdue *models.OverduePayment) error
}

type PaymentService interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AttachReceipt(ctx context.Context, id uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (string, error)
	GetReceiptURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error)
	MarkOverduePayments(ctx context.Context) (int64, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	leaseRepo   repositories.LeaseRepository
	storageSvc  StorageService
	bucket      string
	notifier    OverdueNotifier
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, leaseRepo repositories.LeaseRepository, storageSvc StorageService, bucket string, notifier OverdueNotifier) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		leaseRepo:   leaseRepo,
		storageSvc:  storageSvc,
		bucket:      bucket,
		notifier:    notifier,
	}
}

func (s *paymentService) Create(ctx context.Context, payment *models.Payment) error {
	if payment.Status == "" {
		payment.Status = "pending"
	}
	if payment.Amount <= 0 {
		return errors.New("payment amount must be greater than 0")
	}
	if err := common.ValidatePaymentMethod(payment.PaymentMethod); err != nil {
		return err
	}
	if err := common.ValidatePaymentStatus(payment.Status); err != nil {
		return err
	}

	if _, err := s.leaseRepo.GetByID(ctx, payment.LeaseID); err != nil {
		return errors.New("lease not found")
	}

	payment.ID = uuid.New()
	return s.paymentRepo.Create(ctx, payment)
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) Update(ctx context.Context, payment *models.Payment) error {
	if payment.Amount <= 0 {
		return errors.New("payment amount must be greater than 0")
	}
	if err := common.ValidatePaymentStatus(payment.Status); err != nil {
		return err
	}
	return s.paymentRepo.Update(ctx, payment)
}

func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := common.ValidatePaymentStatus(status); err != nil {
		return err
	}

	var paymentDate *time.Time
	if status == "paid" {
		now := time.Now()
		paymentDate = &now
	}
	return s.paymentRepo.UpdateStatus(ctx, id, status, paymentDate)
}

// AttachReceipt uploads the receipt file and records its object path on the
// payment row, returning the stored path.
func (s *paymentService) AttachReceipt(ctx context.Context, id uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("leases/%s/receipts/%s/%s", payment.LeaseID, payment.ID, fileName)
	if err := s.storageSvc.UploadObject(ctx, s.bucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := s.paymentRepo.SetReceiptURL(ctx, id, objectName); err != nil {
		s.storageSvc.DeleteObject(ctx, s.bucket, objectName)
		return "", err
	}
	return objectName, nil
}

func (s *paymentService) GetReceiptURL(ctx context.Context, id uuid.UUID) (string, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if payment.ReceiptURL == nil || *payment.ReceiptURL == "" {
		return "", errors.New("payment has no receipt")
	}
	return s.storageSvc.GetPresignedURL(ctx, s.bucket, *payment.ReceiptURL, presignedURLExpiry)
}

func (s *paymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.paymentRepo.Delete(ctx, id)
}

func (s *paymentService) ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	return s.paymentRepo.ListByLease(ctx, leaseID, limit, offset)
}

// MarkOverduePayments is invoked by the scheduler; pending payments past
// their due date flip to overdue and a notice is queued for each renter.
func (s *paymentService) MarkOverduePayments(ctx context.Context) (int64, error) {
	overdue, err := s.paymentRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		for _, item := range overdue {
			// Best effort; the status flip is already committed
			s.notifier.NotifyOverduePayment(ctx, item)
		}
	}
	return int64(len(overdue)), nil
}
