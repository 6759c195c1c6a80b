package trader

import (
	binance "signal_bot/internal/modules/binance_client/service"
	profiles "signal_bot/internal/modules/profiles/service"
	"signal_bot/internal/modules/trader/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			func(client *binance.Client, ledger *profiles.Ledger) *service.Manager {
				return service.New(client, ledger)
			},
		),
	)
}
