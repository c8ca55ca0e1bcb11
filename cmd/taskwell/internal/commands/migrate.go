package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/logger"
	postgresstore "github.com/taskwell/taskwell/internal/store/postgres"
)

type MigrateCmd struct {
	Postgres PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Dev)

	if err := c.Postgres.validate(); err != nil {
		return err
	}

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString: c.Postgres.ConnString,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
