package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a rental unit owned by an owner-role profile. TenantID is the
// assigned renter profile, nil while vacant.
type Property struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OwnerID         uuid.UUID  `json:"owner_id" db:"owner_id"`
	TenantID        *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name            string     `json:"name" db:"name"`
	Address         string     `json:"address" db:"address"`
	City            string     `json:"city" db:"city"`
	State           string     `json:"state" db:"state"`
	ZipCode         string     `json:"zip_code" db:"zip_code"`
	Bedrooms        int        `json:"bedrooms" db:"bedrooms"`
	Bathrooms       float64    `json:"bathrooms" db:"bathrooms"`
	SquareFeet      int        `json:"square_feet" db:"square_feet"`
	MonthlyRent     float64    `json:"monthly_rent" db:"monthly_rent"`
	SecurityDeposit float64    `json:"security_deposit" db:"security_deposit"`
	AvailableFrom   time.Time  `json:"available_from" db:"available_from"`
	Description     *string    `json:"description" db:"description"`
	Amenities       []string   `json:"amenities" db:"amenities"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
