package runner

import (
	"context"

	"signal_bot/internal/modules/config"
	crossover "signal_bot/internal/modules/crossover/service"
	marketdata "signal_bot/internal/modules/market_data/service"
	profiles "signal_bot/internal/modules/profiles/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner/router"

	"go.uber.org/fx"
)

func NewScheduler(
	cfg *config.Config,
	store profiles.Store,
	cache *marketdata.Cache,
	engine *crossover.Engine,
	r *router.Router,
	n notify.Notifier,
) *Scheduler {
	return New(cfg.Monitor, store, cache, engine, r, n)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			router.NewRouter, // *router.Router
			NewScheduler,     // *Scheduler
		),
		fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
			var (
				cancel context.CancelFunc
				done   = make(chan struct{})
			)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					var ctx context.Context
					ctx, cancel = context.WithCancel(context.Background())
					go func() {
						defer close(done)
						s.Run(ctx)
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					// текущий проход доводим до конца
					select {
					case <-done:
					case <-stopCtx.Done():
						return stopCtx.Err()
					}
					return nil
				},
			})
		}),
	)
}
