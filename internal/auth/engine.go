package auth

import (
	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// TaskAction represents an action on a task.
type TaskAction string

const (
	TaskActionRead   TaskAction = "read"
	TaskActionCreate TaskAction = "create"
	TaskActionUpdate TaskAction = "update"
	TaskActionDelete TaskAction = "delete"
)

// UserAction represents an action on a user account.
type UserAction string

const (
	UserActionRead         UserAction = "read"
	UserActionCreate       UserAction = "create"
	UserActionUpdate       UserAction = "update"
	UserActionDelete       UserAction = "delete"
	UserActionChangeRole   UserAction = "change_role"
	UserActionChangeStatus UserAction = "change_status"
)

// DenyReason is a machine-readable reason code attached to every denial.
// Reasons are safe to expose to callers: they never reveal whether a
// cross-organization resource exists.
type DenyReason string

const (
	DenyUnknownPrincipal  DenyReason = "unknown_principal"
	DenyUnknownTarget     DenyReason = "unknown_target"
	DenyCrossOrganization DenyReason = "cross_organization"
	DenyInsufficientRole  DenyReason = "insufficient_role"
	DenySelfAction        DenyReason = "self_action"
	DenyOwnerProtected    DenyReason = "owner_protected"
	DenyOwnerElevation    DenyReason = "owner_elevation"
)

// Decision is the result of an authorization check. A denial always carries
// a reason code; there are no silent denials.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Engine decides permission for (principal, action, target) triples. It is
// stateless and side-effect free; callers invoke the audit recorder on
// successful mutations, not the engine.
type Engine struct{}

// NewEngine creates the authorization engine.
func NewEngine() *Engine {
	return &Engine{}
}

// validPrincipal rejects zero-value or malformed principals. Denial is the
// default: missing identity data never results in an allow.
func validPrincipal(p models.Principal) bool {
	return p.UserID != uuid.Nil && p.OrganizationID != uuid.Nil && p.Role.Valid()
}

// CanAccessOrganization allows access only to the principal's own
// organization. The parent/child hierarchy exists structurally but grants no
// implicit access in either direction.
func (e *Engine) CanAccessOrganization(p models.Principal, orgID uuid.UUID) Decision {
	if !validPrincipal(p) {
		return deny(DenyUnknownPrincipal)
	}
	if orgID != p.OrganizationID {
		return deny(DenyCrossOrganization)
	}
	return allow()
}

// CanActOnTask decides whether the principal may perform the given action on
// the task. Viewers are permitted reads only; Owner and Admin get full
// read/write within their own organization.
func (e *Engine) CanActOnTask(p models.Principal, task *models.Task, action TaskAction) Decision {
	if !validPrincipal(p) {
		return deny(DenyUnknownPrincipal)
	}
	if task == nil {
		return deny(DenyUnknownTarget)
	}
	if d := e.CanAccessOrganization(p, task.OrganizationID); !d.Allowed {
		return d
	}

	switch action {
	case TaskActionRead:
		if !HasCapability(p.Role, CapTasksRead) {
			return deny(DenyInsufficientRole)
		}
	case TaskActionCreate, TaskActionUpdate, TaskActionDelete:
		if !HasCapability(p.Role, CapTasksWrite) {
			return deny(DenyInsufficientRole)
		}
	default:
		return deny(DenyInsufficientRole)
	}

	return allow()
}

// CanActOnUser decides whether the principal may perform the given action on
// the target user. It composes the role capability table with the
// self-action restrictions and the rule that Admins may never touch Owners.
func (e *Engine) CanActOnUser(p models.Principal, target *models.User, action UserAction) Decision {
	if !validPrincipal(p) {
		return deny(DenyUnknownPrincipal)
	}
	if target == nil {
		return deny(DenyUnknownTarget)
	}
	if d := e.CanAccessOrganization(p, target.OrganizationID); !d.Allowed {
		return d
	}

	// Self-action restrictions apply uniformly regardless of role: a
	// principal may never change its own role, delete its own account, or
	// deactivate its own account.
	if target.ID == p.UserID {
		switch action {
		case UserActionChangeRole, UserActionDelete, UserActionChangeStatus:
			return deny(DenySelfAction)
		}
	}

	switch action {
	case UserActionRead:
		if !HasCapability(p.Role, CapUsersRead) {
			return deny(DenyInsufficientRole)
		}
	case UserActionChangeRole:
		// Role changes are Owner-only.
		if !HasCapability(p.Role, CapRolesManage) {
			return deny(DenyInsufficientRole)
		}
	case UserActionCreate, UserActionUpdate, UserActionDelete, UserActionChangeStatus:
		if !HasCapability(p.Role, CapUsersManage) {
			return deny(DenyInsufficientRole)
		}
	default:
		return deny(DenyInsufficientRole)
	}

	// Admins cannot create, modify, delete, or deactivate Owner users.
	if p.Role == models.RoleAdmin && target.Role == models.RoleOwner && action != UserActionRead {
		return deny(DenyOwnerProtected)
	}

	return allow()
}

// CanAssignRole decides whether the principal may hand out the given role to
// a user it is creating or updating. Admins may never mint Owners.
func (e *Engine) CanAssignRole(p models.Principal, newRole models.Role) Decision {
	if !validPrincipal(p) {
		return deny(DenyUnknownPrincipal)
	}
	if !HasCapability(p.Role, CapUsersManage) {
		return deny(DenyInsufficientRole)
	}
	if p.Role == models.RoleAdmin && newRole == models.RoleOwner {
		return deny(DenyOwnerElevation)
	}
	return allow()
}
