package service

import (
	"context"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
	"signal_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
)

type ProtectRequest struct {
	OwnerID    int64
	Creds      models.Credentials
	Symbol     string
	Side       models.PositionSide
	EntryPrice float64
	TPPct      float64 // 0 = без TP
	SLPct      float64 // 0 = без SL
}

// Leg результат одной защитной ноги.
type Leg struct {
	Price   decimal.Decimal
	OrderID int64
	Err     error
}

type ProtectResult struct {
	TP *Leg // nil если нога выключена
	SL *Leg
}

// TriggerPrices TP выше входа и SL ниже для лонга, зеркально для шорта.
func TriggerPrices(side models.PositionSide, entry, tpPct, slPct float64) (tp, sl decimal.Decimal) {
	sign := 1.0
	if side == models.PositionShort {
		sign = -1.0
	}
	if tpPct > 0 {
		tp = helper.RoundPrice(entry * (1 + sign*tpPct/100))
	}
	if slPct > 0 {
		sl = helper.RoundPrice(entry * (1 - sign*slPct/100))
	}
	return tp, sl
}

// Protect ставит TP и SL независимо; ошибка одной ноги не откатывает другую и вход.
func (m *Manager) Protect(ctx context.Context, req ProtectRequest) ProtectResult {
	span, ctx := tracing.StartSpan(ctx, "trader.Protect", opentracing.Tag{Key: "symbol", Value: req.Symbol})
	defer span.Finish()

	tp, sl := TriggerPrices(req.Side, req.EntryPrice, req.TPPct, req.SLPct)

	var res ProtectResult
	if req.TPPct > 0 {
		res.TP = m.placeLeg(ctx, req, binance.OrderTakeProfitMarket, tp)
	}
	if req.SLPct > 0 {
		res.SL = m.placeLeg(ctx, req, binance.OrderStopMarket, sl)
	}
	return res
}

func (m *Manager) placeLeg(ctx context.Context, req ProtectRequest, typ binance.OrderType, price decimal.Decimal) *Leg {
	leg := &Leg{Price: price}

	if err := m.ex.SyncTime(ctx); err != nil {
		logger.Warn("clock sync before %s failed: %v", typ, err)
	}

	resp, err := m.ex.PlaceOrder(ctx, req.Creds, binance.OrderRequest{
		Symbol:        req.Symbol,
		Side:          req.Side.OrderSide().Opposite(),
		Type:          typ,
		StopPrice:     price,
		ClosePosition: true,
	})
	metrics.Orders.WithLabelValues(string(typ), outcome(err)).Inc()
	if err != nil {
		logger.Error("%s owner=%d %s @ %s: %v", typ, req.OwnerID, req.Symbol, price.StringFixed(4), err)
		leg.Err = err
		return leg
	}
	leg.OrderID = resp.OrderID
	return leg
}
