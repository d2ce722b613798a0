package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open elige Redis si redisURL está configurada y responde; si no, usa MemoryStore.
// El cierre devuelto libera la conexión o detiene el sweeper.
func Open(ctx context.Context, redisURL, sweepSpec string, logger *zap.Logger) (Store, *redis.Client, func(), error) {
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(ctxPing).Err()
		cancel()
		if err == nil {
			logger.Info("redis cache connected", zap.String("addr", opts.Addr))
			return NewRedisStore(client), client, func() { _ = client.Close() }, nil
		}
		logger.Warn("redis ping failed, switching to in-memory cache", zap.Error(err))
		_ = client.Close()
	}

	store := NewMemoryStore()
	if err := store.StartSweeper(sweepSpec); err != nil {
		return nil, nil, nil, fmt.Errorf("start cache sweeper: %w", err)
	}
	logger.Warn("using in-memory cache: entries are lost on restart and not shared between instances, do not run more than one instance")
	return store, nil, store.Close, nil
}
