package service

import (
	"context"
	"fmt"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
	"signal_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
)

// Close закрывает позицию целиком reduce-only ордером по свежему снапшоту.
func (m *Manager) Close(ctx context.Context, ownerID int64, creds models.Credentials, symbol string) (err error) {
	span, ctx := tracing.StartSpan(ctx, "trader.Close", opentracing.Tag{Key: "symbol", Value: symbol})
	defer func() {
		tracing.Finish(span, err)
		metrics.Orders.WithLabelValues("close", outcome(err)).Inc()
	}()

	if creds.Empty() {
		return ErrNoCredentials
	}

	positions, err := m.RefreshPositions(ctx, ownerID, creds)
	if err != nil {
		return fmt.Errorf("refresh positions: %w", err)
	}
	pos, ok := positions[symbol]
	if !ok {
		return fmt.Errorf("%s: %w", symbol, ErrNoPosition)
	}

	if err := m.ex.SyncTime(ctx); err != nil {
		logger.Warn("clock sync before close failed: %v", err)
	}

	_, err = m.ex.PlaceOrder(ctx, creds, binance.OrderRequest{
		Symbol:     symbol,
		Side:       pos.Side.OrderSide().Opposite(),
		Type:       binance.OrderMarket,
		Quantity:   helper.RoundQty(pos.AbsQuantity()),
		ReduceOnly: true,
	})
	if err != nil {
		return err
	}

	m.forget(ownerID, symbol)
	if lerr := m.ledger.Remove(ctx, ownerID, symbol); lerr != nil {
		logger.Error("ledger remove owner=%d %s: %v", ownerID, symbol, lerr)
	}

	logger.Info("closed owner=%d %s %s qty=%.3f", ownerID, symbol, pos.Side, pos.AbsQuantity())
	return nil
}
