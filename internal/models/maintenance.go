package models

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRequest is a repair/service request raised against a property.
type MaintenanceRequest struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	PropertyID    uuid.UUID  `json:"property_id" db:"property_id"`
	RequestedBy   uuid.UUID  `json:"requested_by" db:"requested_by"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Priority      string     `json:"priority" db:"priority"`
	Status        string     `json:"status" db:"status"`
	RequestedDate time.Time  `json:"requested_date" db:"requested_date"`
	ScheduledDate *time.Time `json:"scheduled_date" db:"scheduled_date"`
	ResolvedDate  *time.Time `json:"resolved_date" db:"resolved_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// MaintenanceImage is a photo attached to a maintenance request, e.g. before
// and after shots.
type MaintenanceImage struct {
	ID            uuid.UUID `json:"id" db:"id"`
	MaintenanceID uuid.UUID `json:"maintenance_id" db:"maintenance_id"`
	ImageURL      string    `json:"image_url" db:"image_url"`
	ImageType     string    `json:"image_type" db:"image_type"`
	Notes         *string   `json:"notes" db:"notes"`
	UploadedBy    uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
