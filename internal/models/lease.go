package models

import (
	"time"

	"github.com/google/uuid"
)

// Lease links a renter profile to a property for a term. TenantID is the
// renter profile, matching the column naming used across the schema.
type Lease struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	RentAmount float64   `json:"rent_amount" db:"rent_amount"`
	PaymentDay int       `json:"payment_day" db:"payment_day"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
