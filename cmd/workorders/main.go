package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/abduss/fieldservice/internal/config"
	"github.com/abduss/fieldservice/internal/media"
	"github.com/abduss/fieldservice/internal/storage"
	"github.com/abduss/fieldservice/internal/thumbnail"
	"github.com/abduss/fieldservice/internal/workorder"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "workorders: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "workorders",
		Short:        "Operate on the work order media root",
		Long:         "workorders inspects and maintains work order folders directly on disk, using the same MEDIA_ROOT as the API.",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newSearchCmd(),
		newWeekCmd(),
		newThumbnailsCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List work order folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(false)
			if err != nil {
				return err
			}
			folders, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), folders)
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <folder>",
		Short: "Print the metadata, media and primary document summary of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rec, err := svc.Read(ctx, args[0])
			if err != nil {
				return err
			}
			files, err := svc.ListMedia(ctx, args[0])
			if err != nil {
				return err
			}
			out := struct {
				Folder   string                  `json:"folder"`
				Metadata json.RawMessage         `json:"metadata"`
				Media    []string                `json:"media"`
				Document *workorder.DocumentInfo `json:"document,omitempty"`
			}{Folder: rec.Folder, Metadata: rec.Metadata, Media: files}
			if doc, err := svc.Document(ctx, args[0]); err == nil {
				out.Document = &doc
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search customer, site address, PO number and site contact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(false)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			matches, err := svc.SearchByText(cmd.Context(), query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), matches)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week <week>",
		Short: "List folders tagged with a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(false)
			if err != nil {
				return err
			}
			folders, err := svc.SearchByWeek(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), folders)
		},
	}
}

func newThumbnailsCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "thumbnails <folder>",
		Short: "Generate missing video thumbnails in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(true)
			if err != nil {
				return err
			}
			results, err := svc.RegenerateThumbnails(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate thumbnails that already exist")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the parts and travel tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := storage.OpenCatalog(cmd.Context(), cfg.Postgres, zap.NewNop())
			if err != nil {
				return err
			}
			pool.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// openService builds a work order service without a notifier; CLI edits
// never e-mail anyone.
func openService(withThumbnails bool) (*workorder.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := media.NewStore(cfg.Media.Root)
	if err != nil {
		return nil, err
	}

	var thumbs workorder.Thumbnailer
	if withThumbnails {
		gen := thumbnail.NewGenerator(cfg.Thumbnail.FFmpegBinary, cfg.Thumbnail.Timeout)
		if !gen.Available() {
			return nil, fmt.Errorf("%s not found on PATH", cfg.Thumbnail.FFmpegBinary)
		}
		thumbs = gen
	}
	return workorder.NewService(store, thumbs, nil, cfg.Media.PublicBaseURL, zap.NewNop()), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
