package config

import (
	"fmt"

	"sentencecards/internal/sentences"
)

// AudioConfig names the per-level audio assets and the player used by the
// practice mode.
type AudioConfig struct {
	Intermediate string   `yaml:"intermediate"`
	Advanced     string   `yaml:"advanced"`
	Player       []string `yaml:"player"`
}

// DefaultAudioConfig returns the default asset names and player command.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		Intermediate: "intermediate.mp3",
		Advanced:     "advanced.mp3",
		Player:       []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	}
}

// Files maps each audio level to its asset file name.
func (a AudioConfig) Files() map[sentences.Level]string {
	return map[sentences.Level]string{
		sentences.LevelIntermediate: a.Intermediate,
		sentences.LevelAdvanced:     a.Advanced,
	}
}

// Validate checks that both levels have distinct file names.
func (a AudioConfig) Validate() error {
	if a.Intermediate == "" || a.Advanced == "" {
		return fmt.Errorf("audio file names must be set for intermediate and advanced")
	}
	if a.Intermediate == a.Advanced {
		return fmt.Errorf("audio file names must differ, both are %q", a.Advanced)
	}
	return nil
}
