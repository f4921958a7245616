package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a rent payment record, child of a lease.
type Payment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	LeaseID       uuid.UUID  `json:"lease_id" db:"lease_id"`
	Amount        float64    `json:"amount" db:"amount"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	PaymentDate   *time.Time `json:"payment_date" db:"payment_date"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	Status        string     `json:"status" db:"status"`
	ReceiptURL    *string    `json:"receipt_url" db:"receipt_url"`
	Notes         *string    `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// OverduePayment is the projection the overdue sweep works with: the flipped
// payment plus the renter it belongs to.
type OverduePayment struct {
	PaymentID uuid.UUID `json:"payment_id"`
	LeaseID   uuid.UUID `json:"lease_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Amount    float64   `json:"amount"`
}
