// Package audit reports successful mutations to the audit log. Recording is
// best-effort by design: a failed audit write is logged and dropped, never
// propagated, so it cannot roll back the mutation it describes.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// Action kinds recorded against mutations.
const (
	ActionCreate            = "CREATE"
	ActionUpdate            = "UPDATE"
	ActionDelete            = "DELETE"
	ActionChangeRole        = "CHANGE_ROLE"
	ActionToggleStatus      = "TOGGLE_STATUS"
	ActionTransferOwnership = "TRANSFER_OWNERSHIP"
	ActionRename            = "RENAME"
)

// Resource types recorded against mutations.
const (
	ResourceTask         = "task"
	ResourceUser         = "user"
	ResourceOrganization = "organization"
)

// Recorder reports a successful mutation. Implementations must not return
// errors to callers; recording failure is an observability problem, not a
// correctness one.
type Recorder interface {
	Record(ctx context.Context, principal models.Principal, action, resource string, resourceID uuid.UUID, detail string)
}

// StoreRecorder persists audit entries through a store.AuditStore and mirrors
// each entry to the log.
type StoreRecorder struct {
	audit store.AuditStore
}

// NewStoreRecorder creates a store-backed audit recorder.
func NewStoreRecorder(audit store.AuditStore) *StoreRecorder {
	return &StoreRecorder{audit: audit}
}

// Record appends an audit entry. Failures are logged and swallowed.
func (r *StoreRecorder) Record(ctx context.Context, principal models.Principal, action, resource string, resourceID uuid.UUID, detail string) {
	entry := &models.AuditEntry{
		ID:          uuid.Must(uuid.NewV7()),
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		PrincipalID: principal.UserID,
		OrgID:       principal.OrganizationID,
		Details:     detail,
		Timestamp:   time.Now(),
	}

	if err := r.audit.Append(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("resource", resource).
			Str("resource_id", resourceID.String()).
			Msg("Failed to record audit entry")
		return
	}

	log.Info().
		Str("action", action).
		Str("resource", resource).
		Str("resource_id", resourceID.String()).
		Str("principal_id", principal.UserID.String()).
		Str("detail", detail).
		Msg("audit")
}

// NopRecorder discards all records. Useful in tests that don't assert on audit output.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, principal models.Principal, action, resource string, resourceID uuid.UUID, detail string) {
}
