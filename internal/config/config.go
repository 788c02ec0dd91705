// Package config loads foshuo's TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
	"github.com/crab-xieyujin/foshuo/internal/state"
)

// Config is the on-disk configuration.
type Config struct {
	StateDir    string `toml:"state_dir"`
	LibraryPath string `toml:"library_path"`
	LogLevel    string `toml:"log_level"` // debug, info, warn, error

	Reader     ReaderConfig     `toml:"reader"`
	Pagination PaginationConfig `toml:"pagination"`
}

// ReaderConfig holds defaults used before any settings are saved.
type ReaderConfig struct {
	Size pagination.Size `toml:"size"`
	Mode reader.Mode     `toml:"mode"`
}

// PaginationConfig tunes the paginator.
type PaginationConfig struct {
	Lookback   int    `toml:"lookback"`
	Boundaries string `toml:"boundaries"`
}

// Default returns the built-in configuration.
func Default() Config {
	stateDir := state.DefaultDir()
	return Config{
		StateDir:    stateDir,
		LibraryPath: filepath.Join(stateDir, "library.db"),
		LogLevel:    "info",
		Reader: ReaderConfig{
			Size: pagination.Medium,
			Mode: reader.ModeFlip,
		},
		Pagination: PaginationConfig{
			Lookback:   pagination.DefaultLookback,
			Boundaries: pagination.DefaultBoundaries,
		},
	}
}

// DefaultPath returns XDG_CONFIG_HOME/foshuo/config.toml or
// ~/.config/foshuo/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "foshuo", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "foshuo", "config.toml")
}

// Load reads path over the defaults and applies FOSHUO_* environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FOSHUO_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("FOSHUO_LIBRARY"); v != "" {
		c.LibraryPath = v
	}
	if v := os.Getenv("FOSHUO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FOSHUO_LOOKBACK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOSHUO_LOOKBACK: %w", err)
		}
		c.Pagination.Lookback = n
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.Pagination.Lookback < 0 {
		return fmt.Errorf("pagination.lookback must not be negative, got %d", c.Pagination.Lookback)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must be set")
	}
	return nil
}

// Paginator builds the paginator described by the configuration.
func (c Config) Paginator() pagination.Paginator {
	p := pagination.Paginator{Lookback: c.Pagination.Lookback, Boundaries: c.Pagination.Boundaries}
	if p.Boundaries == "" {
		p.Boundaries = pagination.DefaultBoundaries
	}
	return p
}

// Save writes the configuration as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
