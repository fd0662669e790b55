package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/firecrawl-webui/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "firecrawl-webui",
			Version:     "1.0.0",
			Environment: "production",
		},
		Server: config.ServerConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: config.DatabaseConfig{
			Path: "./data/scheduler.db",
		},
		Scraper: config.ScraperConfig{
			ScrapeTimeout: 300 * time.Second,
			MapTimeout:    120 * time.Second,
			PollInterval:  5 * time.Second,
			PollAttempts:  120,
		},
		Logger: config.LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{
			name:    "valid configuration",
			mutate:  func(*config.Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *config.Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing server address",
			mutate:  func(c *config.Config) { c.Server.Address = "" },
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *config.Config) { c.Server.ReadTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *config.Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *config.Config) { c.Scraper.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "negative poll attempts",
			mutate:  func(c *config.Config) { c.Scraper.PollAttempts = -1 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Logger.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "unknown log encoding",
			mutate:  func(c *config.Config) { c.Logger.Encoding = "xml" },
			wantErr: true,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			test.mutate(cfg)

			err := cfg.Validate()
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("app.name", "firecrawl-webui")
	viper.Set("app.version", "1.0.0")
	viper.Set("app.environment", "production")
	viper.Set("server.address", ":9090")
	viper.Set("server.read_timeout", "15s")
	viper.Set("server.write_timeout", "15s")
	viper.Set("server.idle_timeout", "60s")
	viper.Set("database.path", "/var/lib/scheduler.db")
	viper.Set("scraper.scrape_timeout", "300s")
	viper.Set("scraper.map_timeout", "120s")
	viper.Set("scraper.poll_interval", "5s")
	viper.Set("scraper.poll_attempts", 120)
	viper.Set("logger.level", "debug")
	viper.Set("logger.encoding", "console")
	viper.Set("logger.development", true)

	cfg, err := config.FromViper()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/var/lib/scheduler.db", cfg.Database.Path)
	assert.Equal(t, 300*time.Second, cfg.Scraper.ScrapeTimeout)
	assert.Equal(t, 5*time.Second, cfg.Scraper.PollInterval)
	assert.Equal(t, 120, cfg.Scraper.PollAttempts)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.Development)
}

func TestFromViper_InvalidConfigRejected(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("app.name", "firecrawl-webui")
	viper.Set("server.address", "")

	_, err := config.FromViper()
	require.Error(t, err)
}
