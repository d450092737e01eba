// Package config loads the service configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Timezone  string    `yaml:"timezone"`
	RateLimit RateLimit `yaml:"rate_limit"`
	SSO       SSO       `yaml:"sso"`
	Logging   Logging   `yaml:"logging"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	// DSN is the connection string, or the file path for sqlite.
	DSN string `yaml:"dsn"`
}

type RateLimit struct {
	// Requests allowed per client IP per window on the public read endpoint.
	// Zero disables the limiter.
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type SSO struct {
	Enabled      bool   `yaml:"enabled"`
	IssuerURL    string `yaml:"issuer_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Load reads path (optional), applies defaults and env overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{Driver: "sqlite", DSN: "streaks.db"},
		Timezone: "UTC",
		RateLimit: RateLimit{
			Requests: 60,
			Window:   Duration(time.Minute),
		},
		Logging: Logging{Level: "info"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STREAKS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STREAKS_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = v
	}
	if v := os.Getenv("STREAKS_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("STREAKS_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("STREAKS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.SSO.Enabled {
		if c.SSO.IssuerURL == "" || c.SSO.ClientID == "" || c.SSO.RedirectURL == "" {
			return fmt.Errorf("sso requires issuer_url, client_id and redirect_url")
		}
	}
	return nil
}

// Location resolves the configured timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
