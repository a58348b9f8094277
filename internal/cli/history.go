package cli

import (
	"fmt"

	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the status history",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the history (the current status stays)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.store.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		}),
	})
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List statuses, newest first",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			history := a.store.Snapshot().History
			if format == render.FormatText {
				fmt.Fprint(cmd.OutOrStdout(), render.History(history, limit))
				return nil
			}

			entries := status.NewestFirst(history)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			return render.Encode(cmd.OutOrStdout(), entries, format)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "show at most this many entries (0 = all)")
	addFormatFlag(cmd, &format)
	return cmd
}
