// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings for the upstream
// product store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// CatalogConfig defines mapping and cache behavior for the phone catalog.
type CatalogConfig struct {
	// RootSlug is the category term marking the catalog root; it is skipped
	// during brand resolution.
	RootSlug string `yaml:"root_slug"`
	// PopularTag marks editor's picks.
	PopularTag string `yaml:"popular_tag"`
	// ExcludedTitleWords drops products whose title contains any of these
	// (accessories like smartwatches share the category).
	ExcludedTitleWords []string `yaml:"excluded_title_words"`

	// CachePath is the badger directory. Empty means in-memory.
	CachePath string `yaml:"cache_path"`
	// CacheVersion keys the snapshot so schema generations can cohabit.
	CacheVersion string `yaml:"cache_version"`
	// FullTTL applies to snapshots written by a whole-list replace.
	FullTTL time.Duration `yaml:"full_ttl"`
	// BatchTTL applies during batched rebuilds, which can take a while on
	// large catalogs.
	BatchTTL  time.Duration   `yaml:"batch_ttl"`
	BatchSize int             `yaml:"batch_size"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds how fast rebuild batches hit the product store.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	// RefreshInterval is how often the full catalog cache is rebuilt in the
	// background.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// TelemetryConfig defines OTLP trace export settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// NotificationsConfig defines operator notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyCatalogDefaults(&cfg.Catalog)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.RootSlug == "" {
		c.RootSlug = "mobile-phones"
	}
	if c.PopularTag == "" {
		c.PopularTag = "editor-pick"
	}
	if c.ExcludedTitleWords == nil {
		c.ExcludedTitleWords = []string{"watch"}
	}
	if c.CacheVersion == "" {
		c.CacheVersion = "v5"
	}
	if c.FullTTL == 0 {
		c.FullTTL = 2 * time.Hour
	}
	if c.BatchTTL == 0 {
		c.BatchTTL = 12 * time.Hour
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 5.0
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshInterval == 0 {
		s.RefreshInterval = 6 * time.Hour
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Catalog.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("catalog.batch_size must be positive"))
	}
	if cfg.Catalog.FullTTL < 0 || cfg.Catalog.BatchTTL < 0 {
		errs = append(errs, fmt.Errorf("catalog TTLs must not be negative"))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when enabled"))
	}

	return errors.Join(errs...)
}
