package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx operations the stores need. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so every store method can run standalone or join an
// open transaction transparently.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txContextKey struct{}

// queriesFrom returns the transaction carried by ctx, or the pool when no
// transaction is open.
func queriesFrom(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// Transactor implements store.Transactor using PostgreSQL transactions.
// Transactions run at serializable isolation so that two concurrent
// ownership transfers for the same organization cannot both observe
// themselves as sole owner.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor creates a new PostgreSQL-backed transactor.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

// InTx runs fn inside a transaction; store calls made with the derived
// context join it. The transaction commits iff fn returns nil.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := pgx.BeginTxFunc(ctx, t.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
	if err != nil {
		return mapPostgresError(err)
	}
	return nil
}
