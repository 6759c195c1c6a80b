package profiles

import (
	"context"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/profiles/service"
	"signal_bot/internal/modules/profiles/service/file"
	"signal_bot/internal/modules/profiles/service/pg"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

// NewStore выбирает хранилище по store.driver.
func NewStore(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (service.Store, error) {
	if cfg.Store.Driver != "postgres" {
		logger.Info("profile store: file %s", cfg.Store.Path)
		return file.New(cfg.Store.Path), nil
	}

	tx, err := postgres.NewTxManager(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := pg.New(tx)
	if err := store.Migrate(ctx); err != nil {
		tx.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tx.Close()
			return nil
		},
	})
	logger.Info("profile store: postgres")
	return store, nil
}

func Module() fx.Option {
	return fx.Module("profiles",
		fx.Provide(
			NewStore,
			service.NewLedger,
		),
	)
}
