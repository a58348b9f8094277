// Package cli provides command-line interface commands for evastatus.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/liminalpurple/evastatus/internal/config"
	"github.com/liminalpurple/evastatus/internal/logging"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/liminalpurple/evastatus/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app bundles what every command needs: config, logger and the loaded store
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	slot  storage.Slot
	store *status.Store
	load  status.LoadResult
}

// openApp loads config, opens the configured slot and restores the status snapshot
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(cfg.Log.Level, os.Stderr)

	slot, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := status.NewStore(slot,
		status.WithKey(cfg.Storage.Key),
		status.WithLogger(log.With().Str("component", "status").Logger()),
	)
	res := store.Load(ctx)
	log.Debug().Str("backend", cfg.Storage.Backend).Stringer("outcome", res.Outcome).Msg("Status loaded")

	return &app{cfg: cfg, log: log, slot: slot, store: store, load: res}, nil
}

func (a *app) Close() {
	if err := a.slot.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close storage")
	}
}

// withApp wraps a command body with openApp/Close
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
