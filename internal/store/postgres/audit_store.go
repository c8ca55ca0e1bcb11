package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

const defaultAuditListLimit = 100

// AuditStore implements store.AuditStore using PostgreSQL.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit store.
// It shares the connection pool with other stores.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Append stores a new audit entry.
// Audit writes never join an open transaction: a rolled-back mutation is not
// audited, and a failed audit write must not roll back the mutation.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (
			id, action, resource, resource_id, principal_id, org_id, details, ts
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		entry.PrincipalID,
		entry.OrgID,
		entry.Details,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", mapPostgresError(err))
	}

	return nil
}

// List returns audit entries, newest first.
func (s *AuditStore) List(ctx context.Context, opts store.ListAuditOptions) ([]*models.AuditEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	query := `
		SELECT id, action, resource, resource_id, principal_id, org_id, details, ts
		FROM audit_logs
	`
	args := []any{}
	if opts.OrgID != nil {
		query += ` WHERE org_id = $1`
		args = append(args, *opts.OrgID)
	}
	query += fmt.Sprintf(` ORDER BY ts DESC LIMIT %d`, limit)

	rows, err := queriesFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		err := rows.Scan(
			&e.ID,
			&e.Action,
			&e.Resource,
			&e.ResourceID,
			&e.PrincipalID,
			&e.OrgID,
			&e.Details,
			&e.Timestamp,
		)
		if err != nil {
			return nil, mapPostgresError(err)
		}
		result = append(result, &e)
	}

	return result, rows.Err()
}
