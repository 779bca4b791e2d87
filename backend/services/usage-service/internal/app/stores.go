package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	libdb "energydash/backend/libs/db"
	libredis "energydash/backend/libs/redis"
	"energydash/backend/services/usage-service/internal/config"
	"energydash/backend/services/usage-service/internal/kvstore"
	"energydash/backend/services/usage-service/internal/repository"
	"energydash/backend/services/usage-service/internal/service"
)

// Stores bundles the entry and settings stores of the configured driver.
type Stores struct {
	Usage    service.UsageStore
	Settings service.SettingsStore
	close    func() error
}

// Close releases the underlying connection or file.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores connects to the store selected by cfg.Store.Driver.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		sqlDB, err := libdb.NewPostgresDB(ctx, cfg.Database.DSN, libdb.PoolOptions{MaxOpenConns: cfg.Database.MaxOpenConns})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := repository.Migrate(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("using postgres store")
		return &Stores{
			Usage:    repository.NewUsageRepository(sqlDB),
			Settings: repository.NewSettingsRepository(sqlDB),
			close:    sqlDB.Close,
		}, nil

	case config.DriverRedis:
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		store := kvstore.NewRedisStore(client)
		logger.Info("using redis store", zap.String("addr", cfg.Redis.Addr))
		return &Stores{Usage: store, Settings: store, close: client.Close}, nil

	case config.DriverBolt:
		store, err := kvstore.OpenBoltStore(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("using bolt store", zap.String("path", cfg.Bolt.Path))
		return &Stores{Usage: store, Settings: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
