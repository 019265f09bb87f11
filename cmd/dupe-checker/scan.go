package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/media"
	"dupe-checker/internal/metrics"
	"dupe-checker/internal/pipeline"
	"dupe-checker/internal/startup"
)

type scanOptions struct {
	path      string
	previews  bool
	thumbsDir string
}

func newScanCommand() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <inventory.csv>",
		Short: "Import an inventory and print its duplicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.path = args[0]
			if opts.thumbsDir != "" {
				opts.previews = true
			}

			config, err := startup.ReadConfig()
			if err != nil {
				return err
			}
			metrics.InitializeMetrics(mediaKinds())

			bins := media.LocateBinaries(config.FFmpegPath, config.FFprobePath)
			manager := newManager(config, bins)
			defer manager.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScan(ctx, manager, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.previews, "previews", false, "Generate preview thumbnails after the import")
	cmd.Flags().StringVar(&opts.thumbsDir, "thumbs-dir", "", "Write preview thumbnails as JPEG files to this directory (implies --previews)")

	return cmd
}

// runScan drives the import, and optionally the preview pipeline, to
// completion, echoing status lines to progress and the final duplicate
// table to out.
func runScan(ctx context.Context, m *pipeline.Manager, opts scanOptions, out, progress io.Writer) error {
	runID, err := m.StartImport(opts.path)
	if err != nil {
		return err
	}
	state, lastErr := follow(ctx, m, m.ImportController(), runID, progress)
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case state == pipeline.StateFailed:
		return errors.New(lastErr)
	}

	if opts.previews && state == pipeline.StateCompleted && m.Session().Len() > 0 {
		runID, err := m.StartPreviews()
		if err != nil {
			return err
		}
		follow(ctx, m, m.PreviewController(), runID, progress)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	dups := m.Session().Duplicates()
	if opts.thumbsDir != "" {
		written, err := writeThumbnails(opts.thumbsDir, dups)
		if err != nil {
			return err
		}
		fmt.Fprintf(progress, "Wrote %d thumbnails to %s\n", written, opts.thumbsDir)
	}

	if len(dups) == 0 {
		fmt.Fprintln(out, "No duplicates found.")
		return nil
	}
	fmt.Fprintln(out, renderDuplicates(dups, tableOptionsFor(out)))
	return nil
}

// follow prints queued status events until the controller's current run
// ends. Cancelling ctx asks run runID to stop and keeps waiting for it.
func follow(ctx context.Context, m *pipeline.Manager, c *pipeline.Controller, runID string, progress io.Writer) (pipeline.State, string) {
	done := c.Done()
	cancelled := ctx.Done()
	var lastErr string

	flush := func() {
		for _, ev := range m.Queue().Drain() {
			switch e := ev.(type) {
			case pipeline.StatusChanged:
				fmt.Fprintln(progress, e.Text)
			case pipeline.ErrorRaised:
				lastErr = e.Message
			}
		}
	}

	for {
		select {
		case <-m.Queue().Ready():
			flush()
		case <-cancelled:
			cancelled = nil
			c.RequestCancelRun(runID)
		case <-done:
			flush()
			return c.State(), lastErr
		}
	}
}

// writeThumbnails stores every generated preview as <index>-<name>.jpg.
func writeThumbnails(dir string, dups []dupes.Duplicate) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create thumbnail directory: %w", err)
	}

	written := 0
	for _, d := range dups {
		if !d.HasThumbnail() {
			continue
		}
		path := filepath.Join(dir, thumbnailFileName(d))
		if err := os.WriteFile(path, d.Thumbnail, 0o644); err != nil {
			return written, fmt.Errorf("write thumbnail: %w", err)
		}
		written++
	}
	return written, nil
}

func thumbnailFileName(d dupes.Duplicate) string {
	base := strings.TrimSuffix(d.Record.Name, filepath.Ext(d.Record.Name))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = "unnamed"
	}
	return fmt.Sprintf("%04d-%s.jpg", d.Index, base)
}
