package postgres

import (
	"context"
	"fmt"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"
)

// NewTxManager поднимает пул и проверяет соединение.
func NewTxManager(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN: cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poolMaster: %w", err)
	}

	err = poolMaster.Ping(ctx)
	if err != nil {
		poolMaster.Close()
		return nil, err
	}

	return db.NewPgTxManager(poolMaster), nil
}
