package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the hierarchical privilege level of a user.
// Owner > Admin > Viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// UserStatus represents whether a user account is active.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents an account in the system. Users belong to exactly one
// organization and carry a single role used for authorization decisions.
type User struct {
	ID             uuid.UUID // UUIDv7
	Email          string
	FirstName      string
	LastName       string
	Role           Role
	OrganizationID uuid.UUID // FK to organizations
	Status         UserStatus

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// IsActive returns true if the account has not been deactivated.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Principal returns the identity view of the user used for authorization.
func (u *User) Principal() Principal {
	return Principal{
		UserID:         u.ID,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}
}

// Principal is the authenticated identity performing an action. It is
// immutable for the duration of one request; the underlying user's role or
// organization may change between requests (role change, ownership transfer).
type Principal struct {
	UserID         uuid.UUID
	Role           Role
	OrganizationID uuid.UUID
}
