package cli

import (
	"fmt"

	"github.com/liminalpurple/evastatus/internal/auth"
	"github.com/liminalpurple/evastatus/internal/config"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Matrix homeserver",
		Long: `Interactive login to Matrix homeserver.

Prompts for homeserver URL, user ID, and password, then saves credentials
to the configuration file for the bot and the share command.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Eva Status - Matrix login")
	fmt.Fprintln(out)

	creds, err := auth.InteractiveLogin(cmd.Context(), out)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Login successful!")
	fmt.Fprintf(out, "User ID: %s\n", creds.UserID)
	fmt.Fprintf(out, "Device ID: %s\n", creds.DeviceID)
	fmt.Fprintln(out)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Matrix.Homeserver = creds.Homeserver
	cfg.Matrix.UserID = creds.UserID
	cfg.Matrix.DeviceID = creds.DeviceID
	cfg.Matrix.AccessToken = creds.AccessToken
	cfg.Matrix.NextBatch = ""

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configDir, _ := config.GetConfigDir()
	fmt.Fprintf(out, "Credentials saved to: %s/config.yaml\n", configDir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "You can now run 'evastatus bot' or 'evastatus share'.")
	return nil
}
