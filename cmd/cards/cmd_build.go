package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sentencecards/internal/logging"
	"sentencecards/internal/site"
	"sentencecards/internal/source"
)

// buildCmd renders the static site once
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the static practice site",
	Long: `Fetches the group index and every group's sentences and writes one page
per level for each group, plus the home page.

A group whose sentence file cannot be loaded gets an error page and the build
continues. If the group index cannot be loaded the build fails.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// watchCmd rebuilds on content changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build, then rebuild whenever local content changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

// publishCmd builds and uploads to Cloud Storage
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build the site and upload it to a Cloud Storage bucket",
	Long: `Builds the site, then uploads the output directory.

Example:
  cards publish --bucket my-site --prefix practice
  cards publish --bucket gs://my-site/practice`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

var (
	publishBucket string
	publishPrefix string
)

func init() {
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "Destination bucket (or gs://bucket/prefix); defaults to publish.bucket")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "Object name prefix; defaults to publish.prefix")
}

// openSource opens the configured content root.
func openSource(ctx context.Context) (source.Source, error) {
	src, err := source.Open(ctx, cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to open content %s: %w", cfg.Content, err)
	}
	return src, nil
}

func closeSource(src source.Source) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}

func newBuilder(src source.Source) *site.Builder {
	return &site.Builder{
		Source:       src,
		OutDir:       cfg.Output,
		Files:        cfg.Audio.Files(),
		Concurrency:  cfg.Build.Concurrency,
		Title:        cfg.Title,
		FetchTimeout: cfg.GetFetchTimeout(),
	}
}

func printReport(w io.Writer, rep *site.Report, out string) {
	fmt.Fprintf(w, "Built %d groups (%d records, %d pages, %d audio files) into %s in %v\n",
		rep.Groups, rep.Records, rep.Pages, rep.Assets, out, rep.Duration.Round(time.Millisecond))
	for _, warn := range rep.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, id := range rep.Failed {
		fmt.Fprintf(w, "  failed: %s (error page written)\n", id)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	rep, err := newBuilder(src).Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	logger.Info("build finished",
		zap.String("build", rep.BuildID),
		zap.Int("groups", rep.Groups),
		zap.Strings("failed", rep.Failed))
	printReport(cmd.OutOrStdout(), rep, cfg.Output)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(0)
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	dir, ok := src.(*source.Dir)
	if !ok {
		closeSource(src)
		return fmt.Errorf("watch needs a local content directory, got %s", src)
	}

	b := newBuilder(src)
	out := cmd.OutOrStdout()
	if rep, err := b.Build(ctx); err != nil {
		fmt.Fprintf(out, "build failed: %v\n", err)
	} else {
		printReport(out, rep, cfg.Output)
	}

	w, err := site.NewWatcher(dir.Root(), cfg.GetDebounce(), func(ctx context.Context, changed []string) error {
		logging.Watch("rebuilding after changes to %d file(s)", len(changed))
		rep, err := b.Build(ctx)
		if err != nil {
			fmt.Fprintf(out, "build failed: %v\n", err)
			return err
		}
		printReport(out, rep, cfg.Output)
		return nil
	}, cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir.Root(), err)
	}
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dir.Root())

	<-ctx.Done()
	w.Stop()
	st := w.Stats()
	fmt.Fprintf(out, "Stopped after %d rebuild(s)\n", st.Rebuilds)
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	target := publishBucket
	if target == "" {
		target = cfg.Publish.Bucket
	}
	bucket, prefix, err := site.PublishTarget(target)
	if err != nil {
		return fmt.Errorf("no publish target: %w", err)
	}
	if publishPrefix != "" {
		prefix = publishPrefix
	} else if prefix == "" {
		prefix = cfg.Publish.Prefix
	}

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	rep, err := newBuilder(src).Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	printReport(cmd.OutOrStdout(), rep, cfg.Output)

	up, err := site.NewGCSUploader(ctx, bucket)
	if err != nil {
		return err
	}
	defer up.Close()

	p := &site.Publisher{Uploader: up, Prefix: prefix, Concurrency: cfg.Build.Concurrency}
	n, err := p.Publish(ctx, filepath.Clean(cfg.Output))
	if err != nil {
		return fmt.Errorf("publish failed after %d file(s): %w", n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d files to gs://%s/%s\n", n, bucket, prefix)
	return nil
}
