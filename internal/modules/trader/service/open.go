package service

import (
	"context"
	"fmt"
	"strconv"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
	"signal_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
)

type OpenRequest struct {
	OwnerID  int64
	Creds    models.Credentials
	Symbol   string
	Side     models.PositionSide
	Amount   float64 // notional
	Leverage int
}

type OpenResult struct {
	OrderID    int64
	Quantity   float64
	EntryPrice float64 // опорная цена для TP/SL
	Position   models.SystemPosition
}

// Open рыночный вход. Ошибку отдаём как есть, без повторов.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (_ *OpenResult, err error) {
	span, ctx := tracing.StartSpan(ctx, "trader.Open",
		opentracing.Tag{Key: "symbol", Value: req.Symbol},
		opentracing.Tag{Key: "side", Value: string(req.Side)},
	)
	defer func() {
		tracing.Finish(span, err)
		metrics.Orders.WithLabelValues("open", outcome(err)).Inc()
	}()

	if req.Creds.Empty() {
		return nil, ErrNoCredentials
	}

	// 1) плечо
	if req.Leverage > 0 {
		if err := m.ex.SetLeverage(ctx, req.Creds, req.Symbol, req.Leverage); err != nil {
			return nil, fmt.Errorf("set leverage: %w", err)
		}
	}

	// 2) количество от mark price
	price, err := m.ex.MarkPrice(ctx, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("mark price: %w", err)
	}
	qty := helper.RoundQty(req.Amount / price)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: amount=%.4f price=%.4f", ErrZeroQuantity, req.Amount, price)
	}

	// 3) синхронизация часов перед ордером
	if err := m.ex.SyncTime(ctx); err != nil {
		logger.Warn("clock sync before order failed: %v", err)
	}

	// 4) рыночный ордер
	resp, err := m.ex.PlaceOrder(ctx, req.Creds, binance.OrderRequest{
		Symbol:   req.Symbol,
		Side:     req.Side.OrderSide(),
		Type:     binance.OrderMarket,
		Quantity: qty,
	})
	if err != nil {
		return nil, err
	}

	entry := price
	if avg, perr := strconv.ParseFloat(resp.AvgPrice, 64); perr == nil && avg > 0 {
		entry = avg
	}

	q, _ := qty.Float64()
	pos := models.SystemPosition{
		OrderID:    resp.OrderID,
		Side:       req.Side,
		Quantity:   q,
		EntryPrice: entry,
		Leverage:   req.Leverage,
		Amount:     req.Amount,
		OpenedAt:   m.now(),
	}
	if lerr := m.ledger.Append(ctx, req.OwnerID, req.Symbol, pos); lerr != nil {
		logger.Error("ledger append owner=%d %s order=%d: %v", req.OwnerID, req.Symbol, resp.OrderID, lerr)
	}

	logger.Info("opened owner=%d %s %s qty=%s @ %.4f order=%d",
		req.OwnerID, req.Symbol, req.Side, qty, entry, resp.OrderID)

	return &OpenResult{OrderID: resp.OrderID, Quantity: q, EntryPrice: entry, Position: pos}, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
