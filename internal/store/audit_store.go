package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// AuditStore defines the interface for audit log storage.
// Entries are append-only; there is no update or delete path.
type AuditStore interface {
	// Append stores a new audit entry.
	Append(ctx context.Context, entry *models.AuditEntry) error

	// List returns audit entries, newest first.
	List(ctx context.Context, opts ListAuditOptions) ([]*models.AuditEntry, error)
}

// ListAuditOptions specifies filters for listing audit entries.
type ListAuditOptions struct {
	OrgID *uuid.UUID // Restrict to one organization (nil = all)
	Limit int        // Max results (0 = default)
}
