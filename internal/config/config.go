// Package config loads the bankfeed.yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	User     string         `yaml:"user"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig controls statement import behavior.
type ImportConfig struct {
	// TimeZone resolves date-only booking dates to instants,
	// e.g. "Europe/Riga".
	TimeZone string `yaml:"time_zone"`
}

// Load reads a bankfeed.yaml file from disk. A .env file in the working
// directory, when present, is loaded first so BANKFEED_DB_PATH and
// BANKFEED_USER can override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if path := os.Getenv("BANKFEED_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if user := os.Getenv("BANKFEED_USER"); user != "" {
		cfg.User = user
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(user string) *Config {
	return &Config{
		Database: DatabaseConfig{Path: "bankfeed.db"},
		Import:   ImportConfig{TimeZone: "UTC"},
		User:     user,
	}
}

// Location resolves the configured import time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Import.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Import.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", c.Import.TimeZone, err)
	}
	return loc, nil
}
