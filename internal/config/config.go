package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	RawLogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"data/scenes.db"`
	SeedOnStart  bool   `env:"SEED_ON_START" envDefault:"false"`

	// Session events go over Redis pub/sub whichever backend stores data.
	EventsEnabled bool `env:"EVENTS_ENABLED" envDefault:"true"`

	SessionRetentionDays int           `env:"SESSION_RETENTION_DAYS" envDefault:"30"`
	CleanupInterval      time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`

	// Empty disables trace export.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (want %q or %q)", c.StoreBackend, BackendRedis, BackendSQLite)
	}
	if c.SessionRetentionDays < 0 {
		return fmt.Errorf("SESSION_RETENTION_DAYS must not be negative")
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must not be negative")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
