package telegram

import (
	"context"

	"signal_bot/internal/modules/config"
	crossover "signal_bot/internal/modules/crossover/service"
	profiles "signal_bot/internal/modules/profiles/service"
	"signal_bot/internal/modules/telegram_bot/service"
	trader "signal_bot/internal/modules/trader/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

// NewNotifier без токена уведомления уходят в лог.
func NewNotifier(
	lc fx.Lifecycle,
	cfg *config.Config,
	store profiles.Store,
	m *trader.Manager,
	engine *crossover.Engine,
) (notify.Notifier, error) {
	if cfg.Telegram.Token == "" {
		logger.Warn("telegram token is empty, notifications go to log")
		return notify.NewStdout(), nil
	}

	t, err := service.NewTelegram(cfg, store, m, engine)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			t.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			t.Stop()
			return nil
		},
	})
	return t, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			NewNotifier, // notify.Notifier
		),
	)
}
