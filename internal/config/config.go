// Package config provides configuration management for the chart viewer.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Search  SearchConfig  `mapstructure:"search"`
	Chart   ChartConfig   `mapstructure:"chart"`
	UI      UIConfig      `mapstructure:"ui"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds backend API configuration.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds autocomplete configuration.
type SearchConfig struct {
	Featured       []string `mapstructure:"featured"`
	MaxSuggestions int      `mapstructure:"max_suggestions"`
}

// ChartConfig holds chart rendering configuration.
type ChartConfig struct {
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	DefaultSymbol string `mapstructure:"default_symbol"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled  bool          `mapstructure:"color_enabled"`
	SplashEnabled bool          `mapstructure:"splash_enabled"`
	SplashDelay   time.Duration `mapstructure:"splash_delay"`
	DateFormat    string        `mapstructure:"date_format"`
}

// SessionConfig holds the session flag store configuration.
type SessionConfig struct {
	DBPath string        `mapstructure:"db_path"` // empty: in-memory only
	TTL    time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Environment variables that override file settings.
const (
	EnvAPIURL   = "KABUCHART_API_URL"
	EnvLogLevel = "KABUCHART_LOG_LEVEL"
	EnvSession  = "KABUCHART_SESSION"
)

// DefaultFeatured are the codes shown when the search box is empty.
var DefaultFeatured = []string{"7203", "6758", "9984", "8306", "6861"}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/kabuchart"
	}
	return filepath.Join(home, ".config", "kabuchart")
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("api.base_url", "http://127.0.0.1:5000")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("search.featured", DefaultFeatured)
	v.SetDefault("search.max_suggestions", 10)

	v.SetDefault("chart.width", 100)
	v.SetDefault("chart.height", 24)
	v.SetDefault("chart.default_symbol", "^N225")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.splash_enabled", true)
	v.SetDefault("ui.splash_delay", "600ms")
	v.SetDefault("ui.date_format", "2006/01/02")

	v.SetDefault("session.db_path", filepath.Join(configDir, "session.db"))
	v.SetDefault("session.ttl", "12h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "kabuchart.log"))
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 14)
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template and the defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env in the working directory, if any
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir, "config"); err != nil {
			return nil, fmt.Errorf("creating config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewValidationError("api.base_url", c.API.BaseURL, "must be an absolute URL")
	}
	if c.API.Timeout < 0 {
		return apperrors.NewValidationError("api.timeout", c.API.Timeout, "must be non-negative")
	}
	if c.Search.MaxSuggestions < 1 {
		return apperrors.NewValidationError("search.max_suggestions", c.Search.MaxSuggestions, "must be at least 1")
	}
	if c.Chart.Width < 20 || c.Chart.Height < 6 {
		return apperrors.NewValidationError("chart", fmt.Sprintf("%dx%d", c.Chart.Width, c.Chart.Height), "chart must be at least 20x6")
	}
	if c.UI.SplashDelay < 0 {
		return apperrors.NewValidationError("ui.splash_delay", c.UI.SplashDelay, "must be non-negative")
	}
	return nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    true,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
