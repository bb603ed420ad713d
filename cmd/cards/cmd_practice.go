package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sentencecards/cmd/cards/ui"
	"sentencecards/internal/audio"
)

// practiceCmd opens the interactive practice screen
var practiceCmd = &cobra.Command{
	Use:   "practice [group-id]",
	Short: "Practice a group interactively in the terminal",
	Long: `Opens a group in a full-screen terminal view.

Keys:
  b / i / a     show both levels, intermediate or advanced
  tab           next level
  p / space     play or stop the current level's recording
  n / N         next or previous group
  x             dismiss an audio alert
  q             quit`,
	Args: cobra.ExactArgs(1),
	RunE: runPractice,
}

var practiceNoAudio bool

func init() {
	practiceCmd.Flags().BoolVar(&practiceNoAudio, "no-audio", false, "Disable audio playback")
}

func runPractice(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(0)
	defer cancel()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	opts := ui.PracticeOptions{
		Source:  src,
		GroupID: args[0],
		Level:   cfg.DefaultLevel(),
		Styles:  ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		Files:   cfg.Audio.Files(),
	}
	if !practiceNoAudio && len(cfg.Audio.Player) > 0 {
		opts.Player = audio.ExecPlayer{Command: cfg.Audio.Player}
	}

	m := ui.NewPracticeModel(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("practice: %w", err)
	}
	return nil
}
