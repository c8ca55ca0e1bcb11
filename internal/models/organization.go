package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant in the system. Organizations form a tree
// via ParentID; the hierarchy is structural only and grants no cross-level
// access (a parent-org user cannot act on child-org resources).
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	Name      string
	ParentID  *uuid.UUID // nil for root organizations
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationDetails is the read model returned when inspecting an
// organization: the organization itself plus aggregate counts, the current
// owner (if one exists) and its direct child organizations.
type OrganizationDetails struct {
	Organization
	UserCount int
	TaskCount int
	Owner     *User
	Children  []*Organization
}
