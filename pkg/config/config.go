// Package config provides configuration management for the rolegate bot.
// Supports TOML configuration files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingValue  = errors.New("missing required configuration value")
)

// Config holds all bot configuration
type Config struct {
	// Developers configuration
	Developers DevelopersConfig `toml:"developers"`

	// Diagnostics configuration
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`
}

// DevelopersConfig holds the developer allow-list. Developers bypass
// command cooldowns and may appear in diagnostic summaries.
type DevelopersConfig struct {
	// IDs are the actor identifiers exempt from cooldown enforcement
	IDs []string `toml:"ids" env:"ROLEGATE_DEVELOPERS"`
}

// DiagnosticsConfig holds diagnostic delivery configuration
type DiagnosticsConfig struct {
	// Enabled enables delivery of escalated errors to the log channel
	Enabled bool `toml:"enabled" env:"ROLEGATE_DIAG_ENABLED"`

	// ChannelID is the operator log channel for escalated errors
	ChannelID string `toml:"channel_id" env:"ROLEGATE_LOG_CHANNEL"`

	// StorePath is the path to the escalated-error database
	StorePath string `toml:"store_path" env:"ROLEGATE_STORE_PATH"`

	// RetentionDays is how long stored errors are kept (0 = default 30)
	RetentionDays int `toml:"retention_days" env:"ROLEGATE_RETENTION_DAYS"`

	// CleanupSchedule is the cron expression for the retention sweep
	CleanupSchedule string `toml:"cleanup_schedule" env:"ROLEGATE_CLEANUP_SCHEDULE"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `toml:"level" env:"ROLEGATE_LOG_LEVEL"`

	// Format is the log output format ("json" or "text")
	Format string `toml:"format" env:"ROLEGATE_LOG_FORMAT"`

	// Output is "stdout", "stderr", or a file path
	Output string `toml:"output" env:"ROLEGATE_LOG_OUTPUT"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{
			Enabled:         true,
			StorePath:       defaultStorePath(),
			RetentionDays:   30,
			CleanupSchedule: "@daily",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rolegate-errors.db"
	}
	return filepath.Join(home, ".rolegate", "errors.db")
}

// ConfigPaths returns the default config file search locations, in order
func ConfigPaths() []string {
	paths := []string{"rolegate.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".rolegate", "rolegate.toml"))
	}
	paths = append(paths, "/etc/rolegate/rolegate.toml")
	return paths
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}

	if c.Diagnostics.RetentionDays < 0 {
		return fmt.Errorf("%w: diagnostics.retention_days must not be negative", ErrInvalidConfig)
	}

	// An empty channel_id is allowed: channel delivery is skipped and the
	// process-level log remains the only diagnostic sink.

	for _, id := range c.Developers.IDs {
		if id == "" {
			return fmt.Errorf("%w: developers.ids contains an empty identifier", ErrInvalidConfig)
		}
	}

	return nil
}

// IsDeveloper reports whether the given actor identifier is on the
// developer allow-list.
func (c *Config) IsDeveloper(id string) bool {
	for _, dev := range c.Developers.IDs {
		if dev == id {
			return true
		}
	}
	return false
}
