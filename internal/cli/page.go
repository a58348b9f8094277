package cli

import (
	"fmt"
	"os"

	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/spf13/cobra"
)

// NewPageCmd creates the page command
func NewPageCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Render the status as a self-contained HTML page",
		Long: `Render the current status, walks, history and photos as a single HTML page.
Photos are embedded, so the file can be opened or hosted on its own.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			page := render.Page(a.store.Snapshot())

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(page)
				return err
			}

			if err := os.WriteFile(output, page, 0644); err != nil {
				return fmt.Errorf("failed to write page: %w", err)
			}
			a.log.Info().Str("path", output).Int("bytes", len(page)).Msg("Page written")
			return nil
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the page to this file instead of stdout")
	return cmd
}
