package cli

import (
	"fmt"

	"github.com/liminalpurple/evastatus/internal/matrix"
	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/spf13/cobra"
	"maunium.net/go/mautrix/id"
)

// NewShareCmd creates the share command
func NewShareCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Post the current status to a Matrix room",
		Long: `Post the current status, walk count and history to a Matrix room.
The room defaults to matrix.room_id from the config file.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if room == "" {
				room = a.cfg.Matrix.RoomID
			}
			if room == "" {
				return fmt.Errorf("no room given - pass --room or set matrix.room_id in config.yaml")
			}

			client, err := connectMatrix(cmd, a)
			if err != nil {
				return err
			}

			eventID, err := client.SendMarkdown(cmd.Context(), id.RoomID(room), render.Markdown(a.store.Snapshot(), false))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Shared to %s (%s)\n", room, eventID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "room ID to post to")
	return cmd
}

// connectMatrix creates a client from the saved credentials and verifies them
func connectMatrix(cmd *cobra.Command, a *app) (*matrix.Client, error) {
	if a.cfg.Matrix.AccessToken == "" {
		return nil, fmt.Errorf("no access token configured - run 'evastatus login' first")
	}

	client, err := matrix.NewClient(a.cfg.Matrix.Homeserver, a.cfg.Matrix.UserID, a.cfg.Matrix.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}
	if err := client.Connect(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to connect to Matrix: %w", err)
	}

	a.log.Debug().Str("user", client.UserID.String()).Msg("Connected to Matrix")
	return client, nil
}
