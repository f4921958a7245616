package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a file attached to exactly one property. FileURL points at the
// stored object; the bytes themselves live in object storage.
type Document struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PropertyID   uuid.UUID `json:"property_id" db:"property_id"`
	Name         string    `json:"name" db:"name"`
	DocumentType string    `json:"document_type" db:"document_type"`
	FileURL      string    `json:"file_url" db:"file_url"`
	UploadedBy   uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
