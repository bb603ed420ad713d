package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sentencecards/internal/app"
	"sentencecards/internal/render"
	"sentencecards/internal/sentences"
	"sentencecards/internal/table"
)

// groupsCmd lists the groups of the content index
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List practice groups",
	Args:  cobra.NoArgs,
	RunE:  runGroups,
}

// showCmd previews one group in the terminal
var showCmd = &cobra.Command{
	Use:   "show [group-id]",
	Short: "Preview a group's sentences in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

// parseCmd dumps the records of a local sentence file
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a sentence file and print its records",
	Long: `Parses a sentence file the way pages are built from it and prints the
records, optionally filtered to one level.

Example:
  cards parse content/groups/greetings/sentences.csv --level advanced --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var (
	showLevel   string
	showRaw     bool
	parseLevel  string
	parseFormat string
)

func init() {
	showCmd.Flags().StringVarP(&showLevel, "level", "l", "", "Level: both, intermediate or advanced (default ui.default_level)")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without styling")
	parseCmd.Flags().StringVarP(&parseLevel, "level", "l", "", "Only records of this level")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "yaml", "Output format: yaml or json")
}

func runGroups(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	nav, ok := app.LoadIndex(ctx, src)
	if !ok {
		return fmt.Errorf("could not load groups from %s", src)
	}
	out := cmd.OutOrStdout()
	for i, g := range nav.Index.Groups() {
		fmt.Fprintf(out, "%3d  %-20s %s\n", i+1, g.ID, g.Title)
		if g.Description != "" {
			fmt.Fprintf(out, "     %-20s %s\n", "", g.Description)
		}
	}
	fmt.Fprintf(out, "%d group(s)\n", nav.Index.Len())
	return nil
}

// levelFlag parses a level flag, falling back to def when empty.
func levelFlag(v string, def sentences.Level) (sentences.Level, error) {
	if v == "" {
		return def, nil
	}
	return sentences.ParseLevel(v)
}

func runShow(cmd *cobra.Command, args []string) error {
	level, err := levelFlag(showLevel, cfg.DefaultLevel())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout)
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	d := app.NewDispatcher(ctx, app.NewState(args[0], level), nil)
	if err := app.Load(ctx, src, args[0], func(ev app.Event) { d.Dispatch(ev) }); err != nil {
		if !errors.Is(err, app.ErrMissingGroupID) {
			return err
		}
		d.Dispatch(app.LoadFailed{Err: err})
	}
	v := d.State().View()

	md := render.Markdown(v)
	if showRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
	} else {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		styled, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), styled)
	}
	if v.Err != nil {
		if args[0] == "" {
			return v.Err
		}
		return fmt.Errorf("group %s: %w", args[0], v.Err)
	}
	return nil
}

// parsedRecord is the dump form of one record.
type parsedRecord struct {
	Index  int               `json:"index" yaml:"index"`
	Level  string            `json:"level" yaml:"level"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	text := string(data)
	records := table.Parse(text)
	if missing := sentences.MissingFields(table.Header(text)); len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: missing columns %v\n", missing)
	}

	if parseLevel != "" {
		level, err := sentences.ParseLevel(parseLevel)
		if err != nil {
			return err
		}
		records = sentences.Filter(records, level)
	}

	dump := make([]parsedRecord, len(records))
	for i, r := range records {
		dump[i] = parsedRecord{Index: i + 1, Level: string(sentences.RecordLevel(r)), Fields: r.Map()}
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(dump)
	case "yaml", "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (valid: yaml, json)", parseFormat)
}
