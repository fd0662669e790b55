// Package config provides typed application configuration hydrated from
// viper. Defaults, environment bindings, and file discovery are wired in
// cmd; this package only unmarshals and validates the result.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values referenced by the cmd wiring.
const (
	DefaultServerAddress = ":8080"
	DefaultDatabasePath  = "./data/scheduler.db"

	DefaultScrapeTimeout = 300 * time.Second
	DefaultMapTimeout    = 120 * time.Second
	DefaultPollInterval  = 5 * time.Second
	DefaultPollAttempts  = 120
)

// Config holds all configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// AppConfig holds service-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Address is the address to listen on (e.g. ":8080").
	Address string `mapstructure:"address"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the maximum time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the location of the SQLite database file.
	Path string `mapstructure:"path"`
}

// ScraperConfig holds outbound scraping client settings.
type ScraperConfig struct {
	// ScrapeTimeout bounds scrape, crawl submit, batch submit, and poll calls.
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout"`
	// MapTimeout bounds map calls.
	MapTimeout time.Duration `mapstructure:"map_timeout"`
	// PollInterval is the sleep between async status polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// PollAttempts is the poll budget per async job.
	PollAttempts int `mapstructure:"poll_attempts"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// FromViper unmarshals the current viper state into a validated Config.
func FromViper() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Scraper.Validate(); err != nil {
		return fmt.Errorf("scraper: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be positive")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *ScraperConfig) Validate() error {
	if c.ScrapeTimeout <= 0 {
		return errors.New("scrape timeout must be positive")
	}
	if c.MapTimeout <= 0 {
		return errors.New("map timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.PollAttempts <= 0 {
		return errors.New("poll attempts must be positive")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
	switch c.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log encoding: %q", c.Encoding)
	}
	return nil
}
