package binance_client

import (
	"context"

	"signal_bot/internal/modules/binance_client/service"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func NewClient(cfg *config.Config, clock *service.Clock) *service.Client {
	return service.New(service.Config{
		SpotURL:      cfg.Binance.SpotURL,
		FuturesURL:   cfg.Binance.FuturesURL,
		RecvWindowMs: cfg.Binance.RecvWindowMs,
		Timeout:      cfg.Binance.Timeout,
		RPS:          cfg.Binance.RPS,
		Burst:        cfg.Binance.Burst,
	}, clock)
}

func Module() fx.Option {
	return fx.Module("binance_client",
		fx.Provide(
			service.NewClock,
			NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					// без синхронизации подписанные запросы всё равно пройдут через resync
					if err := c.SyncTime(ctx); err != nil {
						logger.Error("initial clock sync failed: %v", err)
					}
					return nil
				},
			})
		}),
	)
}
