package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sentencecards/internal/config"
)

//go:embed sample
var sampleContent embed.FS

// initCmd writes a starter config and content tree
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a config file and sample content",
	Long: `Writes cards.yaml and a small content tree with two groups into dir
(default: current directory). Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	// No config exists yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	out := cmd.OutOrStdout()

	cfgFile := filepath.Join(dir, config.DefaultPath)
	c := config.DefaultConfig()
	switch _, err := os.Stat(cfgFile); {
	case err == nil:
		fmt.Fprintf(out, "  exists   %s\n", cfgFile)
	case errors.Is(err, fs.ErrNotExist):
		if err := c.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "  created  %s\n", cfgFile)
	default:
		return err
	}

	created := 0
	err := fs.WalkDir(sampleContent, "sample", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel("sample", filepath.FromSlash(path))
		if err != nil {
			return err
		}
		target := filepath.Join(dir, c.Content, rel)
		if _, err := os.Stat(target); err == nil {
			fmt.Fprintf(out, "  exists   %s\n", target)
			return nil
		}
		data, err := sampleContent.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		created++
		fmt.Fprintf(out, "  created  %s\n", target)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write sample content: %w", err)
	}

	fmt.Fprintf(out, "\nWrote %d sample file(s). Next:\n  cd %s && cards build && open %s/index.html\n", created, dir, c.Output)
	return nil
}
