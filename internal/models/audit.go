package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records a successful mutation: who did what to which resource.
type AuditEntry struct {
	ID          uuid.UUID // UUIDv7
	Action      string    // e.g. "CREATE", "UPDATE", "DELETE", "TRANSFER_OWNERSHIP"
	Resource    string    // e.g. "task", "user", "organization"
	ResourceID  uuid.UUID
	PrincipalID uuid.UUID
	OrgID       uuid.UUID // denormalized from the acting principal for scoped listing
	Details     string
	Timestamp   time.Time
}
