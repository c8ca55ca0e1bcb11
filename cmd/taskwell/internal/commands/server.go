package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/notify"
	"github.com/taskwell/taskwell/internal/seed"
	"github.com/taskwell/taskwell/internal/server"
)

type ServerCmd struct {
	Listen      string   `help:"HTTP server listen address" default:"localhost:8080" env:"TASKWELL_LISTEN"`
	JWTSecret   string   `help:"secret for HMAC signing of bearer tokens" env:"TASKWELL_JWT_SECRET"`
	CORSOrigins []string `help:"allowed CORS origins for API requests" env:"TASKWELL_CORS_ORIGINS"`

	// Seed the store with development fixtures on startup (memory store dev loop).
	SeedFixtures bool `help:"load development fixtures on startup" default:"false" env:"TASKWELL_SEED_FIXTURES"`

	Store StoreFlags `embed:""`
}

func (c *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	logr := logger.Setup(globals.Dev)
	log.Logger = logr

	if c.JWTSecret == "" {
		return errors.New("JWT secret is required (--jwt-secret or TASKWELL_JWT_SECRET)")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes for HMAC-SHA256")
	}

	st, cleanup, err := c.Store.openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fixtures, err := seed.Default()
	if err != nil {
		return err
	}

	if c.SeedFixtures {
		if err := fixtures.Apply(ctx, st); err != nil {
			return fmt.Errorf("failed to seed fixtures: %w", err)
		}
		logSeedTokens(fixtures.Users, c.JWTSecret)
	}

	srv := server.NewServer(server.Config{
		JWTSecret:      c.JWTSecret,
		AllowedOrigins: c.CORSOrigins,
	}, st, notify.NewFeed(fixtures.Notifications))

	httpServer := configureHTTPServer(c.Listen, srv.Handler(logr))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("version", globals.Version).Str("listen", c.Listen).Msg("Starting API server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
	}

	return nil
}

// logSeedTokens prints a ready-to-use bearer token per fixture user so the
// API can be exercised immediately after seeding.
func logSeedTokens(users []*models.User, secret string) {
	for _, u := range users {
		token, err := server.IssueToken(u.ID, secret, 24*time.Hour)
		if err != nil {
			log.Error().Err(err).Str("email", u.Email).Msg("Failed to issue token")
			continue
		}
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Str("token", token).Msg("fixture credential")
	}
}
