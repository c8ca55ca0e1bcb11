package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskwell/taskwell/internal/store"
)

// NewStore wires the PostgreSQL implementations into a store.Store bundle
// sharing one connection pool.
func NewStore(pool *pgxpool.Pool) *store.Store {
	return &store.Store{
		Users:         NewUserStore(pool),
		Organizations: NewOrganizationStore(pool),
		Tasks:         NewTaskStore(pool),
		Audit:         NewAuditStore(pool),
		Tx:            NewTransactor(pool),
	}
}
