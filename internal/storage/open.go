package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/internal/config"
	"github.com/jwebster45206/scene-engine/internal/storage/sqlite"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

// Backend is an opened store plus the Redis client, when there is one.
type Backend struct {
	Store storage.Storage
	Redis *redis.Client
}

// Open connects the store selected by cfg.StoreBackend. For Redis it waits
// for the server to come up.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rs, err := NewRedisStorage(cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		if err := rs.WaitForConnection(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("%w: %w", storage.ErrPersistenceUnavailable, err)
		}
		return &Backend{Store: rs, Redis: rs.Client()}, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		st, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: st}, nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// NewRedisClient builds a client from a redis:// URL or host:port.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
