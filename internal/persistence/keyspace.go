package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/config"
	"github.com/vaahan-portal/violation-portal/internal/repository"
)

// OpenKeySpace builds the key space selected by cfg.Session.Store. The
// returned close func releases any connection it opened.
func OpenKeySpace(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.KeySpace, func(), error) {
	noop := func() {}

	switch cfg.Session.Store {
	case config.StoreMemory:
		logger.Warn("memory session store selected; sessions will not survive restart")
		return repository.NewMemoryKeySpace(), noop, nil
	case config.StoreRedis:
		rdb := NewRedis(ctx, cfg.Redis, logger)
		return repository.NewRedisKeySpace(rdb.Client, cfg.Session.KeyPrefix), rdb.Close, nil
	case config.StorePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), DefaultMigrationsDir, logger); err != nil {
				pg.Close()
				return nil, noop, err
			}
		}
		return repository.NewPostgresKeySpace(pg.PoolHandle(), cfg.Session.KeyPrefix), pg.Close, nil
	default:
		ks, err := repository.NewFileKeySpace(cfg.Session.FilePath, cfg.Session.SealSecret)
		if err != nil {
			return nil, noop, err
		}
		return ks, noop, nil
	}
}
