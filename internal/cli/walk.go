package cli

import (
	"fmt"

	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/spf13/cobra"
)

// NewWalkCmd creates the walk command
func NewWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Count Eva's walks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Count one more walk",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			n, err := a.store.IncrementWalk(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Walks(n))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the walk counter to zero",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.store.ResetWalk(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Walks(0))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the walk counter",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			fmt.Fprint(cmd.OutOrStdout(), render.Walks(a.store.WalkCount()))
			return nil
		}),
	})

	return cmd
}
