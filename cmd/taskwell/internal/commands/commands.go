package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/store"
	memorystore "github.com/taskwell/taskwell/internal/store/memory"
	postgresstore "github.com/taskwell/taskwell/internal/store/postgres"
)

type Globals struct {
	Dev     bool
	Version string
}

// StoreFlags selects and configures the backing store, shared by the server
// and seed commands.
type StoreFlags struct {
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TASKWELL_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TASKWELL_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// openStore builds the store bundle for the selected backend. The returned
// cleanup function closes the connection pool for postgres and is a no-op for
// memory.
func (f *StoreFlags) openStore(ctx context.Context) (*store.Store, func(), error) {
	switch f.StoreType {
	case "postgres":
		if err := f.PostgresStore.validate(); err != nil {
			return nil, nil, err
		}

		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      f.PostgresStore.ConnString,
			MaxConns:        f.PostgresStore.MaxConns,
			MinConns:        f.PostgresStore.MinConns,
			MaxConnLifetime: f.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: f.PostgresStore.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if f.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		log.Info().Msg("Using PostgreSQL store with shared connection pool")
		return postgresstore.NewStore(pool), closePool(pool), nil

	default:
		log.Info().Msg("Using in-memory store")
		return memorystore.NewStore(), func() {}, nil
	}
}

func closePool(pool *pgxpool.Pool) func() {
	return func() { pool.Close() }
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
