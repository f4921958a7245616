package repositories

import (
	"context"
	"time"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, paymentDate *time.Time) error
	SetReceiptURL(ctx context.Context, id uuid.UUID, receiptURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error)
	MarkOverdue(ctx context.Context, asOf time.Time) ([]*models.OverduePayment, error)
}

type paymentRepo struct {
	db Database
}

func NewPaymentRepo(db Database) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, lease_id, amount, due_date, payment_date, payment_method, status, receipt_url, notes, created_at, updated_at`

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, lease_id, amount, due_date, payment_date, payment_method, status, receipt_url, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.LeaseID, payment.Amount, payment.DueDate, payment.PaymentDate, payment.PaymentMethod, payment.Status, payment.ReceiptURL, payment.Notes)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&payment.ID, &payment.LeaseID, &payment.Amount, &payment.DueDate, &payment.PaymentDate, &payment.PaymentMethod, &payment.Status, &payment.ReceiptURL, &payment.Notes, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, due_date = $2, payment_date = $3, payment_method = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, payment.Amount, payment.DueDate, payment.PaymentDate, payment.PaymentMethod, payment.Status, payment.Notes, payment.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, paymentDate *time.Time) error {
	query := `UPDATE payments SET status = $1, payment_date = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, status, paymentDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepo) SetReceiptURL(ctx context.Context, id uuid.UUID, receiptURL string) error {
	query := `UPDATE payments SET receipt_url = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, receiptURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payments WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepo) ListByLease(ctx context.Context, leaseID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE lease_id = $1
		ORDER BY due_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, leaseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(&payment.ID, &payment.LeaseID, &payment.Amount, &payment.DueDate, &payment.PaymentDate, &payment.PaymentMethod, &payment.Status, &payment.ReceiptURL, &payment.Notes, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// MarkOverdue flips pending payments whose due date has passed to overdue and
// returns the flipped rows together with the renter on each lease.
func (r *paymentRepo) MarkOverdue(ctx context.Context, asOf time.Time) ([]*models.OverduePayment, error) {
	query := `
		UPDATE payments SET status = 'overdue', updated_at = NOW()
		FROM leases
		WHERE payments.lease_id = leases.id AND payments.status = 'pending' AND payments.due_date < $1
		RETURNING payments.id, payments.lease_id, leases.tenant_id, payments.amount
	`
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []*models.OverduePayment
	for rows.Next() {
		item := &models.OverduePayment{}
		if err := rows.Scan(&item.PaymentID, &item.LeaseID, &item.TenantID, &item.Amount); err != nil {
			return nil, err
		}
		overdue = append(overdue, item)
	}
	return overdue, rows.Err()
}
