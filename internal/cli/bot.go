package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/liminalpurple/evastatus/internal/bot"
	"github.com/spf13/cobra"
)

// NewBotCmd creates the bot command
func NewBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Matrix status bot",
		Long: `Run the Matrix bot that updates Eva's status from chat.

The bot only listens to your own user account. Messages starting with !eva are
commands (try "!eva help"); the bot edits the message in place with the result.
React to an image with !photo, !yoink or 📷 and the bot will:

  1. Download the image from the homeserver
  2. Store it as one of Eva's photos (the newest 20 are kept)
  3. Redact the reaction to confirm

The bot re-reads the stored status before each command and photo, so changes
made with other evastatus commands while it runs are kept. Two writes that land
at the same moment still race; the later one wins.

The bot runs until interrupted with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: withApp(runBot),
	}
}

func runBot(cmd *cobra.Command, args []string, a *app) error {
	matrixClient, err := connectMatrix(cmd, a)
	if err != nil {
		return err
	}
	a.log.Info().Str("user", matrixClient.UserID.String()).Msg("Connected to Matrix")

	statusBot := bot.NewBot(matrixClient, a.store, a.cfg, a.log.With().Str("component", "bot").Logger())

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- statusBot.Run()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("bot error: %w", err)
		}
	case sig := <-sigChan:
		a.log.Info().Stringer("signal", sig).Msg("Received signal")
		statusBot.Stop()
		if err := <-errChan; err != nil {
			return fmt.Errorf("bot shutdown error: %w", err)
		}
	}

	a.log.Info().Msg("Bot stopped")
	return nil
}
