package cli

import (
	"fmt"
	"strings"

	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Record or show Eva's current status",
	}

	cmd.AddCommand(newStatusSetCmd())
	cmd.AddCommand(newStatusShowCmd())
	return cmd
}

func newStatusSetCmd() *cobra.Command {
	var (
		needs []string
		mood  string
	)

	cmd := &cobra.Command{
		Use:   "set [text...]",
		Short: "Record a new status",
		Long: `Record a new status. It becomes the current status and is added to the history
(the oldest entries are dropped after 100).

Needs: walk, eat, drink, play, cold. Mood is any number, usually 0-10; leave it
out to record no mood.`,
		Example: `  evastatus status set --need walk,cold --mood 8 Погуляли
  evastatus status set Спит`,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			flags, err := status.ParseFlags(needs)
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			entry, err := a.store.RecordStatus(cmd.Context(), text, flags, mood)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), render.CurrentStatus(&entry))
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&needs, "need", "n", nil, "what Eva needs: walk, eat, drink, play, cold")
	cmd.Flags().StringVarP(&mood, "mood", "m", "", "mood score, e.g. 8")
	return cmd
}

func newStatusShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current status, walks, photos and history",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			snap := a.store.Snapshot()
			if format == render.FormatText {
				fmt.Fprint(cmd.OutOrStdout(), render.Text(snap))
				return nil
			}
			return render.Encode(cmd.OutOrStdout(), snap, format)
		}),
	}

	addFormatFlag(cmd, &format)
	return cmd
}

// addFormatFlag registers --format/-o and validates it before the command runs
func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "o", render.FormatText, "output format: text, json or yaml")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !render.ValidFormat(*format) {
			return fmt.Errorf("unsupported format: %s (valid: text, json, yaml)", *format)
		}
		return nil
	}
}
