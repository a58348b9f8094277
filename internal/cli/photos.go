package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/liminalpurple/evastatus/internal/llm"
	"github.com/liminalpurple/evastatus/internal/photo"
	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/liminalpurple/evastatus/internal/status"
	"github.com/spf13/cobra"
)

// NewPhotosCmd creates the photos command
func NewPhotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "photos",
		Aliases: []string{"photo"},
		Short:   "Manage Eva's photos",
		Long: fmt.Sprintf(`Manage Eva's photos.

Photos are stored inline as data URLs. Only the newest %d are kept; adding
more drops the oldest.`, status.MaxPhotos),
	}

	cmd.AddCommand(newPhotosAddCmd())
	cmd.AddCommand(newPhotosListCmd())
	cmd.AddCommand(newPhotosClearCmd())
	cmd.AddCommand(newPhotosExportCmd())
	cmd.AddCommand(newPhotosDescribeCmd())
	return cmd
}

func newPhotosAddCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add image files as photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ingester := photo.NewIngester(a.store.AddPhotos, concurrency, a.log.With().Str("component", "photo").Logger())
			res, err := ingester.IngestFiles(cmd.Context(), args)

			fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d photo(s)\n", len(res.Added), len(args))
			fmt.Fprint(cmd.OutOrStdout(), render.Photos(a.store.Photos()))
			return err
		}),
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "number of files read at once")
	return cmd
}

func newPhotosListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored photos",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			fmt.Fprint(cmd.OutOrStdout(), render.Photos(a.store.Photos()))
			return nil
		}),
	}
}

func newPhotosClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all photos",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.store.ClearPhotos(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Photos deleted")
			return nil
		}),
	}
}

func newPhotosExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write stored photos to a directory as image files",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			for i, url := range a.store.Photos() {
				mimeType, data, err := photo.ParseDataURL(url)
				if err != nil {
					a.log.Warn().Err(err).Int("photo", i+1).Msg("Skipping unreadable photo")
					continue
				}

				path := filepath.Join(dir, fmt.Sprintf("eva-%02d%s", i+1, photo.Extension(mimeType)))
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		}),
	}
}

func newPhotosDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <n>",
		Short: "Describe a photo with Claude vision (1 = oldest)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid photo number: %s", args[0])
			}

			photos := a.store.Photos()
			if n < 1 || n > len(photos) {
				return fmt.Errorf("photo %d does not exist (have %d)", n, len(photos))
			}

			if a.cfg.Anthropic.APIKey == "" {
				return fmt.Errorf("no Anthropic API key configured - set ANTHROPIC_API_KEY or add to config.yaml")
			}

			client := llm.NewClient(a.cfg.Anthropic.APIKey, a.cfg.Anthropic.Model, a.cfg.Anthropic.MaxTokens)
			text, err := client.DescribePhoto(cmd.Context(), photos[n-1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
}
