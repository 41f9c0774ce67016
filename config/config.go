// Package config loads the console settings from fincheck.toml.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"fincheck/services"
)

// EnvPath overrides the config file location.
const EnvPath = "FINCHECK_CONFIG"

// DefaultPath is read when EnvPath is unset.
const DefaultPath = "fincheck.toml"

// Config is the console configuration.
type Config struct {
	Console ConsoleConfig `toml:"console"`
	Export  ExportConfig  `toml:"export"`
}

// ConsoleConfig holds the startup and form defaults.
type ConsoleConfig struct {
	SeedAQL               bool   `toml:"seed_aql"`
	DefaultInspectionType string `toml:"default_inspection_type"`
	DefaultLevel          string `toml:"default_level"`
}

// ExportConfig holds the header lines of exported charts.
type ExportConfig struct {
	Title  string `toml:"title"`
	Author string `toml:"author"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			SeedAQL:               true,
			DefaultInspectionType: string(services.InspectionGeneral),
			DefaultLevel:          string(services.LevelII),
		},
		Export: ExportConfig{
			Title:  "AQL Sampling Chart",
			Author: "Fin Check",
		},
	}
}

// Path returns the config file path, honouring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the console defaults name a real inspection type and
// a level of that type.
func (c *Config) Validate() error {
	it := services.InspectionType(c.Console.DefaultInspectionType)
	if _, ok := services.LevelsByType[it]; !ok {
		return fmt.Errorf("config: console.default_inspection_type: unknown inspection type %q", c.Console.DefaultInspectionType)
	}
	if !services.ValidLevel(it, services.InspectionLevel(c.Console.DefaultLevel)) {
		return fmt.Errorf("config: console.default_level: %q is not a %s level", c.Console.DefaultLevel, it)
	}
	return nil
}
