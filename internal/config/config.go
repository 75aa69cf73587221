// Package config resolves the strata CLI configuration.
// Sources are layered: built-in defaults, then the YAML file, then STRATA_*
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given. A missing default file is not an error.
const DefaultFile = "strata.yaml"

// Config holds everything the CLI needs to build an engine and a store.
type Config struct {
	Driver      string        `yaml:"driver" env:"STRATA_DRIVER"`
	DSN         string        `yaml:"dsn" env:"STRATA_DSN"`
	Revisions   string        `yaml:"revisions" env:"STRATA_REVISIONS"`
	DefaultHead string        `yaml:"default_head" env:"STRATA_DEFAULT_HEAD"`
	LockKey     string        `yaml:"lock_key" env:"STRATA_LOCK_KEY"`
	LockTimeout time.Duration `yaml:"lock_timeout" env:"STRATA_LOCK_TIMEOUT"`
	LockTTL     time.Duration `yaml:"lock_ttl" env:"STRATA_LOCK_TTL"`
	Block       bool          `yaml:"block" env:"STRATA_BLOCK"`
	Redis       string        `yaml:"redis" env:"STRATA_REDIS"`
	MetricsFile string        `yaml:"metrics_file" env:"STRATA_METRICS_FILE"`
	Debug       bool          `yaml:"debug" env:"STRATA_DEBUG"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Driver:      "sqlite",
		DSN:         "strata.db",
		Revisions:   "revisions",
		LockKey:     domain.DefaultLockKey,
		LockTimeout: domain.DefaultLockTimeout,
		LockTTL:     domain.DefaultLockTTL,
	}
}

// Load layers the file at path and the environment over the defaults.
// An empty path means DefaultFile, which may be absent. The result is not
// validated, since flags may still complete it.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres", "file", "memory":
	default:
		return fmt.Errorf("unknown driver %q (want sqlite, postgres, file or memory)", c.Driver)
	}
	if c.Driver != "memory" && c.DSN == "" {
		return fmt.Errorf("driver %s requires a dsn", c.Driver)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative, got %s", c.LockTimeout)
	}
	return nil
}

// WaitPolicy returns the lock wait policy the settings describe.
func (c Config) WaitPolicy() domain.WaitPolicy {
	return domain.WaitPolicy{Block: c.Block, Timeout: c.LockTimeout}
}
