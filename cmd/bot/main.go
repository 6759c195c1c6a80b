package main

import (
	"context"
	"log"

	"signal_bot/internal/modules/binance_client"
	"signal_bot/internal/modules/bootstrap"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/crossover"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/market_data"
	"signal_bot/internal/modules/profiles"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/internal/modules/trader"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "signal_bot"

func initLogger(cfg *config.Config) error {
	logger.SetServiceName(serviceName)
	return logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(initLogger, initTracing),

		binance_client.Module(),
		market_data.Module(),
		crossover.Module(),
		profiles.Module(),
		trader.Module(),
		telegram.Module(),
		bootstrap.Module(),
		runner.Module(),
		health.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}

	// Run блокируется до SIGINT/SIGTERM и корректно останавливает хуки
	app.Run()
	logger.Sync()
}
