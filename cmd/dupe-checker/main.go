package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/media"
	"dupe-checker/internal/mediatypes"
	"dupe-checker/internal/pipeline"
	"dupe-checker/internal/startup"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "dupe-checker",
		Short:         "Find duplicate media files in a CSV inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}
			level, ok := logging.ParseLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q (use debug, info, warn or error)", logLevel)
			}
			logging.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dupe-checker %s\n", info.Version)
			fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
			fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
			fmt.Fprintf(out, "  go:      %s %s/%s\n", info.GoVersion, info.OS, info.Arch)
		},
	}
}

// newManager builds a pipeline manager backed by ffprobe, ffmpeg and the
// thumbnail renderer described by cfg.
func newManager(cfg *startup.Config, bins media.Binaries) *pipeline.Manager {
	return pipeline.NewManager(pipeline.Options{
		Prober:    media.NewFFprobe(bins.FFprobe, cfg.ProbeTimeout.Std()),
		Extractor: media.NewStillExtractor(media.NewFFmpegExtractor(bins.FFmpeg, cfg.ExtractTimeout.Std())),
		Renderer:  media.NewThumbnailer(cfg.ThumbnailWidth, cfg.ThumbnailHeight),
		Policy:    dupes.Policy{MatchEmptyNames: cfg.MatchEmptyNames},
	})
}

// mediaKinds lists the media kind labels used by the thumbnail metrics.
func mediaKinds() []string {
	all := mediatypes.All()
	kinds := make([]string, len(all))
	for i, k := range all {
		kinds[i] = string(k)
	}
	return kinds
}
