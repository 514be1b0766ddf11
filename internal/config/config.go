// Package config holds all moduspractica configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/frankyzip/moduspractica/internal/flags"
	"github.com/frankyzip/moduspractica/internal/retention"
)

// Config holds all moduspractica configuration.
type Config struct {
	Profile  string         `yaml:"profile"`
	DataDir  string         `yaml:"data_dir"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Flags    flags.Set      `yaml:"flags"`
	Personal PersonalConfig `yaml:"personal"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PersonalConfig carries the profile-level inputs the optional tau layers
// consume. Both are inert unless the corresponding flag is on.
type PersonalConfig struct {
	AgeBracket  string  `yaml:"age_bracket"` // "", "under18", "adult", "senior"
	Calibration float64 `yaml:"calibration"` // zero means unset
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Profile: "default",
		DataDir: "", // resolved at runtime via DefaultDataDir()
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37878,
		},
		Flags: flags.Set{
			DiagnosticDailyLimit: flags.DefaultDiagnosticLimit,
		},
	}
}

// DefaultDataDir returns ~/.moduspractica.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".moduspractica"), nil
}

// Load reads the YAML config at path on top of the defaults. A missing file
// is not an error: first run gets the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.Flags.DiagnosticDailyLimit <= 0 {
		cfg.Flags.DiagnosticDailyLimit = flags.DefaultDiagnosticLimit
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Age maps the configured age bracket onto the retention model's input.
// Unknown strings map to AgeUnknown, which every layer treats as neutral.
func (c *Config) Age() retention.AgeBracket {
	switch c.Personal.AgeBracket {
	case "under18":
		return retention.AgeUnder18
	case "adult":
		return retention.AgeAdult
	case "senior":
		return retention.AgeSenior
	default:
		return retention.AgeUnknown
	}
}
