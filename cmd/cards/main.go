// Command cards builds and serves sentence practice pages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sentencecards/internal/config"
	"sentencecards/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	contentRoot string
	outDir      string
	timeout     time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cards",
	Short: "Sentence practice pages for language learners",
	Long: `cards renders groups of practice sentences, each tagged intermediate or
advanced, into a static site with per-level pages and audio players.

Content lives in a directory, behind an HTTP(S) base URL or under a
gs://bucket/prefix:

  groups.json                   list of {id, title, description}
  groups/<id>/sentences.csv     prompt,chinese,level
  groups/<id>/intermediate.mp3  optional recordings
  groups/<id>/advanced.mp3`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

// setup loads configuration, applies flag overrides and starts logging.
func setup() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if contentRoot != "" {
		c.Content = contentRoot
	}
	if outDir != "" {
		c.Output = outDir
	}
	if verbose {
		c.Logging.DebugMode = true
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logging.Initialize(c.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg = c
	logger = logging.Root()
	logging.BootDebug("config %s: content=%s output=%s", configPath, c.Content, c.Output)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&contentRoot, "content", "", "Content root: directory, http(s) URL or gs://bucket/prefix")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Output directory for the static site")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM or after d when d > 0.
func signalContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	return tctx, func() {
		cancel()
		stop()
	}
}
