package store

import "context"

// Transactor provides the atomic multi-row write primitive. InTx runs fn with
// a context carrying an open transaction; every store call made with that
// context joins the transaction, and all writes commit together or not at all.
//
// Ownership transfer depends on this: the outgoing and incoming owner's role
// changes must land atomically, and concurrent transfers for the same
// organization must be serialized by the implementation (row locking or an
// equivalent isolation guarantee).
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the per-entity stores with the transaction primitive, as
// consumed by the service layer.
type Store struct {
	Users         UserStore
	Organizations OrganizationStore
	Tasks         TaskStore
	Audit         AuditStore
	Tx            Transactor
}
