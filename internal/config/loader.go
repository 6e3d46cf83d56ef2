// Package config provides configuration loading for repoingest.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/repoingest/internal/logging"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	defaultMaxFileSize = 1024 * 1024      // 1MB
	maxMaxFileSize     = 10 * 1024 * 1024 // 10MB

	envPrefix = "REPOINGEST_"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (REPOINGEST_WORKDIR, REPOINGEST_LOG_LEVEL, ...)
//  2. YAML config file (~/.config/repoingest/config.yaml)
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, the
// default path is used; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "repoingest", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables override file values.
	// REPOINGEST_WORKDIR          -> workdir
	// REPOINGEST_LOG_LEVEL        -> log.level
	// REPOINGEST_INGEST_MAX_FILE_SIZE -> ingest.max_file_size
	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// transformEnvKey maps an environment variable name to a config key.
// The first underscore separates the section from the field name, so
// field names keep their own underscores.
func transformEnvKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)

	if len(parts) == 1 {
		return lower
	}

	switch parts[0] {
	case "log", "ingest":
		return parts[0] + "." + parts[1]
	default:
		// Top-level keys like output_dir keep their underscores.
		return lower
	}
}

// DefaultWorkDir computes the platform-appropriate default working
// directory. Falls back to the system temp directory when the user cache
// directory cannot be determined.
func DefaultWorkDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "repoingest", "repos")
	}
	return filepath.Join(cache, "repoingest", "repos")
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Ingest.MaxFileSize == 0 {
		cfg.Ingest.MaxFileSize = defaultMaxFileSize
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("workdir cannot be empty")
	}
	if _, err := logging.LevelFromString(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format)
	}
	if c.Ingest.MaxFileSize < 0 {
		return fmt.Errorf("ingest max_file_size cannot be negative")
	}
	if c.Ingest.MaxFileSize > maxMaxFileSize {
		return fmt.Errorf("ingest max_file_size cannot exceed 10MB")
	}
	for _, pattern := range c.Ingest.Exclude {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}
