package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the application-level role stored on a profile.
// "tenant" is the property owner/manager role in this product's vocabulary;
// "renter" is the occupant role.
type Role string

const (
	RoleOwner  Role = "tenant"
	RoleRenter Role = "renter"
)

// Valid reports whether r is a known role value.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleRenter:
		return true
	}
	return false
}

// Profile is the application-level user record, distinct from the auth
// identity row. One-to-one with users via ID.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  *string   `json:"username" db:"username"`
	FullName  *string   `json:"full_name" db:"full_name"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
