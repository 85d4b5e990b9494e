package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-content/internal/platform/cache"
	"github.com/p-n-ai/pai-content/internal/platform/config"
	"github.com/p-n-ai/pai-content/internal/platform/database"
)

// Open connects the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	backend := cfg.Storage.Backend
	slog.Info("opening content store", "backend", backend)

	switch backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, err
		}
		s, err := NewRedisStore(c)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s, err := NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
