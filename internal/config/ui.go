package config

// UIConfig holds terminal practice mode configuration.
type UIConfig struct {
	// DefaultLevel is the level selected when a group opens
	DefaultLevel string `json:"default_level" yaml:"default_level"`

	// Theme forces "light" or "dark"; empty detects from the terminal
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`
}
