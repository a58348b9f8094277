// Package bot implements the Matrix bot that updates Eva's status from chat commands
// and collects photos from reactions.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/liminalpurple/evastatus/internal/config"
	"github.com/liminalpurple/evastatus/internal/matrix"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// simpleStore implements a minimal mautrix.SyncStore that only tracks next_batch
type simpleStore struct {
	mu        sync.RWMutex
	nextBatch string
}

func (s *simpleStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	return nil
}
func (s *simpleStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	return "", nil
}
func (s *simpleStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBatch = nextBatchToken
	return nil
}
func (s *simpleStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextBatch, nil
}

// Bot watches Matrix rooms for !eva commands and photo reactions
type Bot struct {
	client    *matrix.Client
	store     *status.Store
	syncer    *mautrix.DefaultSyncer
	ctx       context.Context
	cancel    context.CancelFunc
	config    *config.Config
	nextBatch string
	log       zerolog.Logger
}

// NewBot creates a new bot instance
func NewBot(matrixClient *matrix.Client, store *status.Store, cfg *config.Config, log zerolog.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())

	// Resume from the saved sync token
	matrixClient.Client.Store = &simpleStore{
		nextBatch: cfg.Matrix.NextBatch,
	}
	matrixClient.Client.Log = log.With().Str("component", "mautrix").Logger()

	bot := &Bot{
		client:    matrixClient,
		store:     store,
		syncer:    matrixClient.Syncer.(*mautrix.DefaultSyncer),
		ctx:       ctx,
		cancel:    cancel,
		config:    cfg,
		nextBatch: cfg.Matrix.NextBatch,
		log:       log,
	}

	bot.syncer.OnEventType(event.EventReaction, bot.handleReaction)
	bot.syncer.OnEventType(event.EventMessage, bot.handleMessage)

	return bot
}

// Run starts the bot's sync loop and blocks until Stop is called or sync fails
func (b *Bot) Run() error {
	b.log.Info().Msg("Starting bot sync loop")

	if b.nextBatch != "" {
		b.log.Info().Str("next_batch", truncate(b.nextBatch, 20)).Msg("Resuming from saved sync token")
	} else {
		b.log.Info().Msg("No previous sync token, starting from current state")
	}

	// Save next_batch hourly, and once right after the first sync
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	firstSyncCheck := time.NewTicker(10 * time.Second)
	defer firstSyncCheck.Stop()

	syncErr := make(chan error, 1)
	go func() {
		if err := b.client.SyncWithContext(b.ctx); err != nil && !errors.Is(err, context.Canceled) {
			syncErr <- err
		}
		b.log.Debug().Msg("Sync goroutine exited")
	}()

	savedFirst := false
	for {
		select {
		case <-firstSyncCheck.C:
			if savedFirst {
				continue
			}
			nb, err := b.client.Client.Store.LoadNextBatch(context.Background(), b.client.UserID)
			if err != nil || nb == "" || nb == b.nextBatch {
				continue
			}
			b.nextBatch = nb
			if err := b.saveNextBatch(); err != nil {
				b.log.Warn().Err(err).Msg("Failed to save next_batch after first sync")
				continue
			}
			b.log.Info().Str("next_batch", truncate(nb, 20)).Msg("First sync completed, token saved")
			savedFirst = true
			firstSyncCheck.Stop()

		case <-ticker.C:
			if err := b.saveNextBatch(); err != nil {
				b.log.Warn().Err(err).Msg("Failed to save next_batch")
			} else {
				b.log.Debug().Msg("Saved next_batch checkpoint")
			}

		case err := <-syncErr:
			return fmt.Errorf("sync error: %w", err)

		case <-b.ctx.Done():
			b.log.Info().Msg("Bot sync loop stopped")
			return nil
		}
	}
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() {
	b.log.Info().Msg("Stopping bot")
	b.cancel()
	b.client.StopSync()

	if err := b.saveNextBatch(); err != nil {
		b.log.Warn().Err(err).Msg("Failed to save next_batch on shutdown")
	}
}

// saveNextBatch persists the current next_batch token to config
func (b *Bot) saveNextBatch() error {
	if nb, err := b.client.Client.Store.LoadNextBatch(context.Background(), b.client.UserID); err == nil {
		b.nextBatch = nb
	}
	b.config.Matrix.NextBatch = b.nextBatch
	return config.Save(b.config)
}

// handleReaction is called for every m.reaction event
func (b *Bot) handleReaction(ctx context.Context, evt *event.Event) {
	// Only process reactions from our user
	if evt.Sender != b.client.UserID {
		return
	}

	if err := b.processReaction(ctx, evt); err != nil {
		b.log.Error().Err(err).Str("room", evt.RoomID.String()).Msg("Error processing reaction")
	}
}

// refresh picks up changes made by the CLI since the last command.
// On failure the bot keeps working from its in-memory state.
func (b *Bot) refresh(ctx context.Context) {
	if err := b.store.Refresh(ctx); err != nil {
		b.log.Warn().Err(err).Msg("Failed to refresh status, using in-memory state")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
