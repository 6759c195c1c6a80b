package bootstrap

import (
	"context"

	bootstrap "signal_bot/internal/modules/bootstrap/service"
	"signal_bot/internal/modules/config"
	marketdata "signal_bot/internal/modules/market_data/service"
	profiles "signal_bot/internal/modules/profiles/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func NewWarmuper(store profiles.Store, cache *marketdata.Cache, n notify.Notifier, cfg *config.Config) *bootstrap.Warmuper {
	return bootstrap.NewWarmuper(store, cache, n, cfg)
}

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			NewWarmuper, // -> *bootstrap.Warmuper
		),
		fx.Invoke(func(lc fx.Lifecycle, wu *bootstrap.Warmuper) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						rep, err := wu.Warmup(context.Background())
						if err != nil {
							logger.Error("warmup error: %v", err)
							return
						}
						logger.Info("warmup done: profiles=%d symbols=%d failed=%d", rep.Profiles, rep.Symbols, len(rep.Failed))
					}()
					return nil
				},
			})
		}),
	)
}
