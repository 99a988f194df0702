package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the connection settings for the webmail backend.
type ServerConfig struct {
	// BaseURL is the root URL of the webmail server (e.g., http://localhost:5000).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP round-trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SessionConfig controls the token refresh cadence.
type SessionConfig struct {
	RefreshIntervalMin int `mapstructure:"refresh_interval_min" yaml:"refresh_interval_min"`
}

// SearchConfig controls the global search box.
type SearchConfig struct {
	MinChars   int `mapstructure:"min_chars" yaml:"min_chars"`
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	Limit      int `mapstructure:"limit" yaml:"limit"`
}

// DashboardConfig controls the dashboard activity refresh.
type DashboardConfig struct {
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// DisplayConfig holds rendering preferences.
type DisplayConfig struct {
	AlertDurationSec int    `mapstructure:"alert_duration_sec" yaml:"alert_duration_sec"`
	DefaultFolder    string `mapstructure:"default_folder" yaml:"default_folder"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
	File        string `mapstructure:"file" yaml:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Search    SearchConfig    `mapstructure:"search" yaml:"search"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// RefreshInterval returns the token refresh period.
func (c *AppConfig) RefreshInterval() time.Duration {
	return time.Duration(c.Session.RefreshIntervalMin) * time.Minute
}

// Debounce returns the search debounce window.
func (c *AppConfig) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// ActivityInterval returns the dashboard refresh period.
func (c *AppConfig) ActivityInterval() time.Duration {
	return time.Duration(c.Dashboard.RefreshIntervalSec) * time.Second
}

// AlertDuration returns how long transient alerts stay visible.
func (c *AppConfig) AlertDuration() time.Duration {
	return time.Duration(c.Display.AlertDurationSec) * time.Second
}

// Timeout returns the HTTP round-trip timeout.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailassist/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailassist", "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "http://localhost:5000",
			TimeoutSec: 30,
		},
		Session: SessionConfig{
			RefreshIntervalMin: 30,
		},
		Search: SearchConfig{
			MinChars:   3,
			DebounceMS: 500,
			Limit:      10,
		},
		Dashboard: DashboardConfig{
			RefreshIntervalSec: 120,
		},
		Display: DisplayConfig{
			AlertDurationSec: 5,
			DefaultFolder:    string(FolderInbox),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	v.SetDefault("session.refresh_interval_min", d.Session.RefreshIntervalMin)
	v.SetDefault("search.min_chars", d.Search.MinChars)
	v.SetDefault("search.debounce_ms", d.Search.DebounceMS)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("dashboard.refresh_interval_sec", d.Dashboard.RefreshIntervalSec)
	v.SetDefault("display.alert_duration_sec", d.Display.AlertDurationSec)
	v.SetDefault("display.default_folder", d.Display.DefaultFolder)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// MAILASSIST_* environment variables override file values
// (e.g. MAILASSIST_SERVER_BASE_URL). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("mailassist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, missingFile := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missingFile && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Search.MinChars <= 0 {
		cfg.Search.MinChars = 3
	}
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = 10
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("session", cfg.Session)
	v.Set("search", cfg.Search)
	v.Set("dashboard", cfg.Dashboard)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
