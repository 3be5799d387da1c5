package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/hero-quest/internal/config"
)

// Open creates the store selected by configuration, wrapped in an LRU
// cache when a cache size is configured
func Open(ctx context.Context, cfg *config.Config, opts ...CacheOption) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendRedis:
		store, err = NewRedisStore(ctx, RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.BackendPostgres:
		store, err = NewPostgresStore(ctx, PostgresConfig{
			DSN:         cfg.Database.DSN,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxLifetime: cfg.Database.MaxLifetime,
		})
	case config.BackendSQLite:
		store, err = NewSQLiteStore(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	slog.Info("storage opened", "backend", cfg.Storage.Backend)

	// Memory already holds everything in process
	if cfg.Storage.CacheSize == 0 || cfg.Storage.Backend == config.BackendMemory {
		return store, nil
	}

	cached, err := NewCachedStore(store, cfg.Storage.CacheSize, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return cached, nil
}
