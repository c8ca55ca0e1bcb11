package memory

import (
	"context"
	"sync"
)

// Transactor implements store.Transactor for the in-memory stores. It
// serializes all transactions behind a single mutex, which gives concurrent
// ownership transfers the isolation the service layer relies on. It cannot
// roll back partially applied writes; tests that exercise rollback behavior
// belong to the postgres implementation.
type Transactor struct {
	mu sync.Mutex
}

// NewTransactor creates a new in-memory transactor.
func NewTransactor() *Transactor {
	return &Transactor{}
}

// InTx runs fn while holding the transaction lock.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(ctx)
}
