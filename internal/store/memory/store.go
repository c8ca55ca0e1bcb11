package memory

import "github.com/taskwell/taskwell/internal/store"

// NewStore wires the in-memory implementations into a store.Store bundle.
// The stores reference each other so deletes honor the same referential
// behavior as the postgres schema.
func NewStore() *store.Store {
	tasks := NewTaskStore()
	users := NewUserStore(tasks)

	return &store.Store{
		Users:         users,
		Organizations: NewOrganizationStore(users, tasks),
		Tasks:         tasks,
		Audit:         NewAuditStore(),
		Tx:            NewTransactor(),
	}
}
