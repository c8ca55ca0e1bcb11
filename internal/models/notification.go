package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a broadcast message with role- and organization-scoped
// visibility. Notifications are read-only; the set is fixed at startup.
type Notification struct {
	ID             string
	Message        string
	RoleVisibility []Role
	OrgID          *uuid.UUID // nil means visible across all organizations
	TargetUserID   *uuid.UUID // set when addressed to a single user
	CreatedAt      time.Time
}
