// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Layered configuration: defaults, YAML file, environment and flags.
// Usage: The CLI calls Load once per command with its flag set.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override, e.g. TEXELDOCK_STORAGE_BACKEND.
const EnvPrefix = "TEXELDOCK_"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// StorageConfig selects and locates the layout sink.
type StorageConfig struct {
	Backend    string `koanf:"backend"`
	Dir        string `koanf:"dir"`
	SQLitePath string `koanf:"sqlite_path"`
	RedisAddr  string `koanf:"redis_addr"`
	RedisDB    int    `koanf:"redis_db"`
	Key        string `koanf:"key"`
}

// Config is the resolved configuration.
type Config struct {
	Storage      StorageConfig `koanf:"storage"`
	SaveDebounce time.Duration `koanf:"save_debounce"`
	LogLevel     string        `koanf:"log_level"`
	LogFile      string        `koanf:"log_file"`
	Watch        bool          `koanf:"watch"`
	PaneContent  string        `koanf:"pane_content"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// FlagKeys maps CLI flag names onto config keys. Flags not listed map by
// turning dashes into underscores.
var FlagKeys = map[string]string{
	"backend":     "storage.backend",
	"storage-dir": "storage.dir",
	"sqlite-path": "storage.sqlite_path",
	"redis-addr":  "storage.redis_addr",
	"redis-db":    "storage.redis_db",
	"key":         "storage.key",
	"debounce":    "save_debounce",
}

func defaults() map[string]any {
	return map[string]any{
		"storage.backend":     BackendFile,
		"storage.dir":         defaultLayoutDir(),
		"storage.sqlite_path": defaultSQLitePath(),
		"storage.redis_addr":  "localhost:6379",
		"storage.redis_db":    0,
		"storage.key":         "layout",
		"save_debounce":       "500ms",
		"log_level":           "info",
		"log_file":            "",
		"watch":               false,
		"pane_content":        "text",
	}
}

// Load resolves configuration. Precedence, highest first: explicitly set
// flags, environment, the config file, defaults. An empty path means the
// default location, which may be missing; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	used := ""
	if path != "" {
		used = path
	} else if p, err := DefaultConfigPath(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			used = p
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := FlagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns TEXELDOCK_STORAGE_REDIS_ADDR into storage.redis_addr.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "storage_"); ok {
		return "storage." + rest
	}
	return key
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(backends, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("%w: storage.backend %q, want one of %s", ErrInvalid, c.Storage.Backend, strings.Join(backends, ", ")))
	}
	if c.Storage.Key == "" {
		errs = append(errs, fmt.Errorf("%w: storage.key is empty", ErrInvalid))
	}
	if c.SaveDebounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: save_debounce must be positive, got %s", ErrInvalid, c.SaveDebounce))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// WriteDefault writes the default configuration to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return false, fmt.Errorf("config: load defaults: %w", err)
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return false, fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return true, nil
}
