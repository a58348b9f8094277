package storage

import (
	"context"
	"fmt"

	"github.com/liminalpurple/evastatus/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open creates the slot selected by cfg.Backend
func Open(ctx context.Context, cfg config.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case BackendFile, "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("file backend needs storage.data_dir")
		}
		return NewFileSlot(cfg.DataDir), nil
	case BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case BackendRedis:
		return OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (valid: file, sqlite, redis, memory)", cfg.Backend)
	}
}
