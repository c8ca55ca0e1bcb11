package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/internal/seed"
)

type SeedCmd struct {
	Store StoreFlags `embed:""`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Dev)

	st, cleanup, err := c.Store.openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fixtures, err := seed.Default()
	if err != nil {
		return err
	}

	if err := fixtures.Apply(ctx, st); err != nil {
		return fmt.Errorf("failed to apply fixtures: %w", err)
	}

	log.Info().
		Int("organizations", len(fixtures.Organizations)).
		Int("users", len(fixtures.Users)).
		Int("tasks", len(fixtures.Tasks)).
		Msg("Fixtures applied")

	return nil
}
