package crossover

import (
	"signal_bot/internal/modules/crossover/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("crossover",
		fx.Provide(
			service.New,
		),
	)
}
