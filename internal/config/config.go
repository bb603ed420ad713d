package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sentencecards/internal/sentences"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "cards.yaml"

// Config holds all sentencecards configuration.
type Config struct {
	// Site title shown on the home page
	Title string `yaml:"title"`

	// Content root: local directory, http(s):// base URL or gs://bucket/prefix
	Content string `yaml:"content"`

	// Output directory for the static site
	Output string `yaml:"output"`

	Build   BuildConfig   `yaml:"build"`
	Audio   AudioConfig   `yaml:"audio"`
	Watch   WatchConfig   `yaml:"watch"`
	Publish PublishConfig `yaml:"publish"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// BuildConfig configures the static build.
type BuildConfig struct {
	// Groups built in parallel
	Concurrency int `yaml:"concurrency"`

	// Per-fetch timeout
	FetchTimeout string `yaml:"fetch_timeout"`
}

// WatchConfig configures rebuild-on-change.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// PublishConfig configures uploading the built site.
type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Title:   "Sentence Practice",
		Content: "content",
		Output:  "public",

		Build: BuildConfig{
			Concurrency:  4,
			FetchTimeout: "30s",
		},

		Audio: DefaultAudioConfig(),

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		UI: UIConfig{
			DefaultLevel: string(sentences.LevelBoth),
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CARDS_CONTENT"); v != "" {
		c.Content = v
	}
	if v := os.Getenv("CARDS_OUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("CARDS_BUCKET"); v != "" {
		c.Publish.Bucket = v
	}
	if v := os.Getenv("CARDS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	// Player command is whitespace separated, e.g. "ffplay -nodisp -autoexit"
	if v := os.Getenv("CARDS_PLAYER"); v != "" {
		c.Audio.Player = strings.Fields(v)
	}
}

// GetFetchTimeout returns the per-fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Build.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetDebounce returns the watch debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("content root not configured (set content in %s or CARDS_CONTENT)", DefaultPath)
	}
	if c.Build.Concurrency < 1 {
		return fmt.Errorf("build.concurrency must be at least 1, got %d", c.Build.Concurrency)
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	if _, err := sentences.ParseLevel(c.UI.DefaultLevel); err != nil {
		return fmt.Errorf("ui.default_level: %w", err)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if strings.EqualFold(strings.TrimSpace(c.Logging.Level), l) {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return nil
}

// DefaultLevel returns the configured start level, falling back to both.
func (c *Config) DefaultLevel() sentences.Level {
	l, err := sentences.ParseLevel(c.UI.DefaultLevel)
	if err != nil {
		return sentences.LevelBoth
	}
	return l
}
