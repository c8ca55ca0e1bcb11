// Package auth implements the authorization core: the role hierarchy and the
// engine that decides, for a (principal, action, target) triple, whether the
// action is permitted. Decisions are pure computations over immutable tables;
// concurrent use needs no synchronization.
package auth

import (
	"slices"

	"github.com/taskwell/taskwell/internal/models"
)

// Capability represents a class of authorized actions.
type Capability string

const (
	CapTasksRead   Capability = "tasks:read"
	CapTasksWrite  Capability = "tasks:write"
	CapUsersRead   Capability = "users:read"
	CapUsersManage Capability = "users:manage"
	CapRolesManage Capability = "roles:manage"
	CapOrgManage   Capability = "org:manage"
	CapAuditRead   Capability = "audit:read"
)

// roleCapabilities maps each role to its allowed capabilities.
// Owner > Admin > Viewer; role changes and organization lifecycle are
// Owner-only, Viewers are read-only on tasks.
var roleCapabilities = map[models.Role][]Capability{
	models.RoleOwner: {
		CapTasksRead,
		CapTasksWrite,
		CapUsersRead,
		CapUsersManage,
		CapRolesManage,
		CapOrgManage,
		CapAuditRead,
	},
	models.RoleAdmin: {
		CapTasksRead,
		CapTasksWrite,
		CapUsersRead,
		CapUsersManage,
		CapAuditRead,
	},
	models.RoleViewer: {
		CapTasksRead,
	},
}

// roleLevel orders roles by privilege for comparisons between principal and
// target. Unknown roles map to zero, below every real role.
var roleLevel = map[models.Role]int{
	models.RoleOwner:  3,
	models.RoleAdmin:  2,
	models.RoleViewer: 1,
}

// HasCapability checks if a role holds a specific capability.
// Unknown roles hold nothing.
func HasCapability(role models.Role, cap Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	return slices.Contains(caps, cap)
}

// Outranks reports whether role a has strictly more privilege than role b.
func Outranks(a, b models.Role) bool {
	return roleLevel[a] > roleLevel[b]
}
