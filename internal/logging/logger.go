// Package logging provides config-driven categorized logging for sentencecards.
// Every category logger is a named child of one zap logger built from the
// logging section of cards.yaml. Until Initialize runs, all loggers are no-ops.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sentencecards/internal/config"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategorySource  Category = "source"  // Content fetches (dir, http, gcs)
	CategoryParse   Category = "parse"   // Sentence file parsing
	CategoryRender  Category = "render"  // HTML and markdown rendering
	CategorySite    Category = "site"    // Static site builds
	CategoryWatch   Category = "watch"   // Rebuild-on-change watcher
	CategoryAudio   Category = "audio"   // Audio playback
	CategoryApp     Category = "app"     // Practice state and event dispatch
	CategoryPublish Category = "publish" // Uploads of the built site
)

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	cfg     config.LoggingConfig
	loggers = make(map[Category]*Logger)
	closeFn func()
)

// Initialize builds the shared zap logger from lc. It may be called again to
// apply a new configuration; previously returned loggers keep the old core.
func Initialize(lc config.LoggingConfig) error {
	level := zapcore.InfoLevel
	if name := strings.TrimSpace(lc.Level); name != "" {
		l, err := zapcore.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		level = l
	}
	if lc.DebugMode {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(lc.Format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "", "console", "text":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return fmt.Errorf("invalid log format %q (valid: json, console)", lc.Format)
	}

	sink := zapcore.Lock(os.Stderr)
	var closeSink func()
	if lc.File != "" {
		ws, closer, err := zap.Open(lc.File)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink, closeSink = ws, closer
	}

	SetLogger(zap.New(zapcore.NewCore(encoder, sink, level)))

	mu.Lock()
	cfg = lc
	if closeFn != nil {
		closeFn()
	}
	closeFn = closeSink
	mu.Unlock()

	Get(CategoryBoot).Debug("logging initialized: level=%s format=%s file=%q", level, lc.Format, lc.File)
	return nil
}

// SetLogger replaces the shared zap logger and drops cached category loggers.
// Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// Root returns the shared zap logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries and closes the log file, if any.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	err := base.Sync()
	if closeFn != nil {
		closeFn()
		closeFn = nil
	}
	return err
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) the logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With returns a logger that adds the given key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// WithBuildID returns a category logger tagged with a build correlation ID.
func WithBuildID(category Category, buildID string) *Logger {
	return Get(category).With("build", buildID)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// Source logs to the source category
func Source(format string, args ...interface{}) {
	Get(CategorySource).Info(format, args...)
}

// SourceDebug logs debug to the source category
func SourceDebug(format string, args ...interface{}) {
	Get(CategorySource).Debug(format, args...)
}

// Site logs to the site category
func Site(format string, args ...interface{}) {
	Get(CategorySite).Info(format, args...)
}

// SiteDebug logs debug to the site category
func SiteDebug(format string, args ...interface{}) {
	Get(CategorySite).Debug(format, args...)
}

// SiteWarn logs a warning to the site category
func SiteWarn(format string, args ...interface{}) {
	Get(CategorySite).Warn(format, args...)
}

// SiteError logs an error to the site category
func SiteError(format string, args ...interface{}) {
	Get(CategorySite).Error(format, args...)
}

// Watch logs to the watch category
func Watch(format string, args ...interface{}) {
	Get(CategoryWatch).Info(format, args...)
}

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) {
	Get(CategoryWatch).Debug(format, args...)
}

// Audio logs to the audio category
func Audio(format string, args ...interface{}) {
	Get(CategoryAudio).Info(format, args...)
}

// AudioDebug logs debug to the audio category
func AudioDebug(format string, args ...interface{}) {
	Get(CategoryAudio).Debug(format, args...)
}

// App logs to the app category
func App(format string, args ...interface{}) {
	Get(CategoryApp).Info(format, args...)
}

// AppDebug logs debug to the app category
func AppDebug(format string, args ...interface{}) {
	Get(CategoryApp).Debug(format, args...)
}

// AppError logs an error to the app category
func AppError(format string, args ...interface{}) {
	Get(CategoryApp).Error(format, args...)
}

// Publish logs to the publish category
func Publish(format string, args ...interface{}) {
	Get(CategoryPublish).Info(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
