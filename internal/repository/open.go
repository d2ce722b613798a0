package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cleanease/internal/config"
	"cleanease/internal/db"
)

// Stores agrupa los repositorios del almacén configurado.
type Stores struct {
	Users     UserRepository
	Providers ProviderRepository
	close     func()
}

func (s Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open conecta el almacén elegido por STORE_DRIVER y prepara índices o esquema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return Stores{}, err
		}
		if err := EnsurePgSchema(ctx, pool); err != nil {
			pool.Close()
			return Stores{}, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres store")
		return Stores{
			Users:     NewPgUserRepository(pool),
			Providers: NewPgProviderRepository(pool),
			close:     pool.Close,
		}, nil
	case config.StoreMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return Stores{}, err
		}
		closeFn := func() {
			ctxClose, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctxClose); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}
		database := client.Database(cfg.MongoDB)
		users := NewMongoUserRepository(database, logger)
		providers := NewMongoProviderRepository(database, logger)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return Stores{}, err
		}
		if err := providers.EnsureIndexes(ctx); err != nil {
			closeFn()
			return Stores{}, err
		}
		logger.Info("using mongo store", zap.String("database", cfg.MongoDB))
		return Stores{Users: users, Providers: providers, close: closeFn}, nil
	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
