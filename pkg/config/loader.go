package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from a file path. An empty path searches the
// default locations; if none exists, defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, p := range ConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROLEGATE_DEVELOPERS"); v != "" {
		var ids []string
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Developers.IDs = ids
	}

	if v := os.Getenv("ROLEGATE_DIAG_ENABLED"); v != "" {
		cfg.Diagnostics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("ROLEGATE_LOG_CHANNEL"); v != "" {
		cfg.Diagnostics.ChannelID = v
	}
	if v := os.Getenv("ROLEGATE_STORE_PATH"); v != "" {
		cfg.Diagnostics.StorePath = v
	}
	if v := os.Getenv("ROLEGATE_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Diagnostics.RetentionDays = days
		}
	}
	if v := os.Getenv("ROLEGATE_CLEANUP_SCHEDULE"); v != "" {
		cfg.Diagnostics.CleanupSchedule = v
	}

	if v := os.Getenv("ROLEGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ROLEGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ROLEGATE_LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
}

// Save saves the configuration to a file
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Forward slashes keep TOML strings portable on Windows
	cfgCopy := *cfg
	cfgCopy.Diagnostics.StorePath = filepath.ToSlash(cfg.Diagnostics.StorePath)

	data, err := toml.Marshal(&cfgCopy)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
