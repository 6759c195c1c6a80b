package market_data

import (
	binance "signal_bot/internal/modules/binance_client/service"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/market_data/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("market_data",
		fx.Provide(
			func(cfg *config.Config, client *binance.Client) *service.Cache {
				return service.New(client, cfg.Monitor.CacheTTL)
			},
		),
	)
}
