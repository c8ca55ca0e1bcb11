// Package service implements the application services that apply task, user
// and organization mutations. Every entry point receives a resolved
// models.Principal, consults the authorization engine before touching
// anything, and returns typed failures; nothing in this package panics or
// returns transport-level status codes.
package service

import (
	"fmt"

	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/workflow"
)

// AuthzError is returned when the principal lacks the capability for the
// attempted action. The reason code is safe to expose: it never reveals
// whether a cross-organization resource exists.
type AuthzError struct {
	Action string
	Reason auth.DenyReason
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("not authorized to %s: %s", e.Action, e.Reason)
}

// ValidationError is returned for structurally invalid input, e.g. an
// assignee outside the organization. Distinct from AuthzError: the principal
// was allowed to try, the payload was wrong.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// TransitionError is returned when a requested status change is not an edge
// in the workflow graph.
type TransitionError struct {
	From workflow.Status
	To   workflow.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// NotFoundError is returned when a referenced entity does not exist. Callers
// decide whether to mask this as a denial to avoid leaking existence across
// organizations.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError is returned when a mutation would violate an invariant that
// holds across rows, e.g. deleting an organization that still has multiple
// owners.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

func denied(action string, d auth.Decision) error {
	return &AuthzError{Action: action, Reason: d.Reason}
}
