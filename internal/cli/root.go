package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the evastatus command tree
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "evastatus",
		Short: "Eva's status, walks and photos",
		Long: `Eva Status - keep track of how Eva is doing.

Record what Eva needs right now, keep a short history, count walks and keep
a handful of photos. Everything is stored in one snapshot and can be shared
to a Matrix room or rendered into a static HTML page.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewWalkCmd())
	rootCmd.AddCommand(NewPhotosCmd())
	rootCmd.AddCommand(NewPageCmd())
	rootCmd.AddCommand(NewShareCmd())
	rootCmd.AddCommand(NewLoginCmd())
	rootCmd.AddCommand(NewBotCmd())
	rootCmd.AddCommand(NewDoctorCmd())

	return rootCmd
}
