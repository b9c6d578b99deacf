// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// maxSearchPage is the number of items GitHub returns on the first search page by default.
const maxSearchPage = 30

// Config holds all configuration for the application.
type Config struct {
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr          string        `mapstructure:"HTTP_ADDR"`
	GithubBaseURL     string        `mapstructure:"GITHUB_BASE_URL"`
	GithubToken       string        `mapstructure:"GITHUB_TOKEN"`
	MaxResults        int           `mapstructure:"MAX_RESULTS"`
	EnrichConcurrency int           `mapstructure:"ENRICH_CONCURRENCY"`
	EnrichTimeout     time.Duration `mapstructure:"ENRICH_TIMEOUT"`
	SearchTimeout     time.Duration `mapstructure:"SEARCH_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	DBURL             string        `mapstructure:"DB_URL"`
}

// HistoryEnabled reports whether searches should be recorded in Postgres.
func (c *Config) HistoryEnabled() bool {
	return c.DBURL != ""
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Every key needs a default so that Unmarshal sees values coming from the environment.
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GITHUB_BASE_URL", "")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("MAX_RESULTS", 5)
	v.SetDefault("ENRICH_CONCURRENCY", 5)
	v.SetDefault("ENRICH_TIMEOUT", "10s")
	v.SetDefault("SEARCH_TIMEOUT", "15s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_URL", "")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is a required configuration field")
	}
	if c.MaxResults < 1 || c.MaxResults > maxSearchPage {
		return errors.New("MAX_RESULTS must be between 1 and 30")
	}
	if c.EnrichConcurrency < 1 {
		return errors.New("ENRICH_CONCURRENCY must be at least 1")
	}
	if c.EnrichTimeout <= 0 {
		return errors.New("ENRICH_TIMEOUT must be a positive duration (e.g. 10s)")
	}
	if c.SearchTimeout <= 0 {
		return errors.New("SEARCH_TIMEOUT must be a positive duration (e.g. 15s)")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be a positive duration (e.g. 10s)")
	}
	return nil
}
