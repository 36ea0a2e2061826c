package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
// It is loaded once at startup and injected into components; nothing in
// the calculation core reads ambient state.
type Config struct {
	Database     DatabaseConfig     `yaml:"database" envconfig:"DATABASE"`
	Logging      LoggingConfig      `yaml:"logging" envconfig:"LOGGING"`
	PriceTracker PriceTrackerConfig `yaml:"price_tracker" envconfig:"PRICE_TRACKER"`
	FX           FXConfig           `yaml:"fx" envconfig:"FX"`
	Discord      DiscordConfig      `yaml:"discord" envconfig:"DISCORD"`
	Reports      ReportsConfig      `yaml:"reports" envconfig:"REPORTS"`
}

// DatabaseConfig contains Postgres connection settings.
type DatabaseConfig struct {
	URL             string        `yaml:"url" envconfig:"URL"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output     string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tcgindex.log"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" default:"50"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" default:"30"`
}

// PriceTrackerConfig contains settings for the upstream card price API.
type PriceTrackerConfig struct {
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://www.pokemonpricetracker.com/api"`
	APIKey            string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE" default:"60"`
	RequestBurst      int           `yaml:"request_burst" envconfig:"REQUEST_BURST" default:"5"`
}

// FXConfig contains settings for the Frankfurter exchange-rate API.
type FXConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.frankfurter.dev/v1"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// DiscordConfig contains operational notification settings.
type DiscordConfig struct {
	WebhookURL string        `yaml:"webhook_url" envconfig:"WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

// ReportsConfig contains output locations for exported reports.
type ReportsConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"data/reports"`
}

// Load loads configuration from .env, environment variables and an
// optional config.yaml. Environment variables take precedence over the
// file, matching how the batch jobs are deployed.
func Load() (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	var cfg Config

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("TCG", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks the configuration for values the batch jobs cannot
// run without.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required (TCG_DATABASE_URL)")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database max open conns must be positive")
	}
	if c.PriceTracker.RequestsPerMinute <= 0 {
		return fmt.Errorf("price tracker rate limit must be positive")
	}
	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	return nil
}

// findConfigFile returns the path of the first config file found in the
// conventional locations, or "" when only env vars are in play.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
