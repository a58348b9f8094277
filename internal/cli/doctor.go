package cli

import (
	"fmt"
	"io"

	"github.com/liminalpurple/evastatus/internal/photo"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage and connections",
		Long: `Check that all components are working correctly:

  - Configuration loads properly
  - The stored snapshot loads and can be written back
  - Every stored photo decodes
  - Matrix credentials work (if configured)
  - An Anthropic API key is present (needed for photo descriptions)

This is useful for verifying setup before running the bot.`,
		Args: cobra.NoArgs,
		RunE: withApp(runDoctor),
	}
}

func runDoctor(cmd *cobra.Command, args []string, a *app) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintln(out, "🧪 Running evastatus checks...")
	fmt.Fprintln(out)

	// Configuration and snapshot were loaded by openApp
	fmt.Fprintf(out, "📋 Configuration... ✅\n   Backend: %s, key: %s\n", a.cfg.Storage.Backend, a.cfg.Storage.Key)

	fmt.Fprint(out, "💾 Loading snapshot... ")
	switch a.load.Outcome {
	case status.LoadRecovered:
		fmt.Fprintf(out, "⚠️\n   Stored data was unreadable, starting from defaults: %v\n", a.load.Err)
	default:
		snap := a.store.Snapshot()
		fmt.Fprintf(out, "✅\n   %s: %d history entries, %d walks, %d photos\n",
			a.load.Outcome, len(snap.History), snap.WalkCount, len(snap.Photos))
	}

	fmt.Fprint(out, "✍️  Writing snapshot back... ")
	if err := a.store.Save(ctx); err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅")

	fmt.Fprint(out, "🖼️  Checking photos... ")
	if bad := checkPhotos(out, a.store.Photos()); bad > 0 {
		fmt.Fprintf(out, "   %d photo(s) failed to decode\n", bad)
	}

	fmt.Fprint(out, "🔌 Matrix... ")
	if a.cfg.Matrix.AccessToken == "" {
		fmt.Fprintln(out, "skipped (run 'evastatus login' to set up)")
	} else {
		client, err := connectMatrix(cmd, a)
		if err != nil {
			fmt.Fprintf(out, "❌\n   Error: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "✅\n   Logged in as: %s\n", client.UserID)
	}

	fmt.Fprint(out, "🤖 Anthropic API key... ")
	if a.cfg.Anthropic.APIKey == "" {
		fmt.Fprintln(out, "missing (photo descriptions are disabled)")
	} else {
		fmt.Fprintf(out, "✅\n   Model: %s (max tokens: %d)\n", a.cfg.Anthropic.Model, a.cfg.Anthropic.MaxTokens)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "🎉 All checks done.")
	return nil
}

// checkPhotos decodes every stored photo and returns how many failed
func checkPhotos(out io.Writer, photos []string) int {
	if len(photos) == 0 {
		fmt.Fprintln(out, "✅\n   No photos stored")
		return 0
	}

	bad := 0
	for i, url := range photos {
		_, data, err := photo.ParseDataURL(url)
		if err == nil {
			_, err = photo.GetInfo(data)
		}
		if err != nil {
			if bad == 0 {
				fmt.Fprintln(out, "⚠️")
			}
			fmt.Fprintf(out, "   Photo %d: %v\n", i+1, err)
			bad++
		}
	}
	if bad == 0 {
		fmt.Fprintf(out, "✅\n   %d/%d photos decode\n", len(photos), status.MaxPhotos)
	}
	return bad
}
