package router

import (
	"context"
	"fmt"
	"strings"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	binance "signal_bot/internal/modules/binance_client/service"
	trader "signal_bot/internal/modules/trader/service"
	"signal_bot/pkg/logger"
)

// execute разворот: закрыть встречную позицию, открыть новую, выставить TP/SL.
// Шаги строго последовательные; при неудаче закрытия вход не делаем.
func (r *Router) execute(ctx context.Context, p *models.Profile, at models.AutoTradeConfig, sig models.Signal) {
	var (
		owner  = p.OwnerID
		creds  = p.Credentials
		symbol = helper.NormSymbol(sig.Symbol, models.MarketContract)
		side   = sig.Side()
	)

	positions, err := r.trader.RefreshPositions(ctx, owner, creds)
	if err != nil {
		logger.Error("router: refresh positions owner=%d: %v", owner, err)
		r.n.Notify(ctx, owner, fmt.Sprintf("❌ %s: не удалось получить позиции, вход отменён\nПричина: %s", symbol, binance.Reason(err)))
		return
	}

	if cur, ok := positions[symbol]; ok && cur.Side == side.Opposite() {
		if err := r.trader.Close(ctx, owner, creds, symbol); err != nil {
			logger.Error("router: close %s owner=%d: %v", symbol, owner, err)
			r.n.Notify(ctx, owner, fmt.Sprintf(
				"❌ %s: не удалось закрыть %s позицию, новая %s не открыта\nПричина: %s",
				symbol, cur.Side, side, binance.Reason(err),
			))
			return
		}
		r.n.Notify(ctx, owner, fmt.Sprintf("🔄 %s: закрыта %s позиция %.3f перед разворотом", symbol, cur.Side, cur.AbsQuantity()))
	}

	res, err := r.trader.Open(ctx, trader.OpenRequest{
		OwnerID:  owner,
		Creds:    creds,
		Symbol:   symbol,
		Side:     side,
		Amount:   at.Amount,
		Leverage: at.Leverage,
	})
	if err != nil {
		logger.Error("router: open %s %s owner=%d: %v", symbol, side, owner, err)
		r.n.Notify(ctx, owner, fmt.Sprintf("❌ %s: ошибка открытия %s\nПричина: %s", symbol, side, binance.Reason(err)))
		return
	}

	r.n.Notify(ctx, owner, fmt.Sprintf(
		"✅ %s: открыт %s по сигналу %s %s\nКол-во: %.3f | Цена: %.4f | Плечо: %dx | Сумма: %.2f USDT",
		symbol, side, strings.ToUpper(string(sig.Monitor)), sig.Type, res.Quantity, res.EntryPrice, at.Leverage, at.Amount,
	))

	if _, err := r.trader.RefreshPositions(ctx, owner, creds); err != nil {
		logger.Warn("router: refresh after open owner=%d: %v", owner, err)
	}

	if at.TP <= 0 && at.SL <= 0 {
		return
	}
	pr := r.trader.Protect(ctx, trader.ProtectRequest{
		OwnerID:    owner,
		Creds:      creds,
		Symbol:     symbol,
		Side:       side,
		EntryPrice: res.EntryPrice,
		TPPct:      at.TP,
		SLPct:      at.SL,
	})
	r.reportLeg(ctx, owner, symbol, "TP", at.TP, pr.TP)
	r.reportLeg(ctx, owner, symbol, "SL", at.SL, pr.SL)
}

// reportLeg каждая нога сообщается отдельно, частичная защита тоже.
func (r *Router) reportLeg(ctx context.Context, owner int64, symbol, name string, pct float64, leg *trader.Leg) {
	if leg == nil {
		return
	}
	if leg.Err != nil {
		logger.Error("router: %s %s owner=%d: %v", name, symbol, owner, leg.Err)
		r.n.Notify(ctx, owner, fmt.Sprintf(
			"⚠️ %s: %s не выставлен (%.2f%% → %s)\nПричина: %s",
			symbol, name, pct, leg.Price.StringFixed(4), binance.Reason(leg.Err),
		))
		return
	}
	r.n.Notify(ctx, owner, fmt.Sprintf("🛡 %s: %s выставлен на %s (%.2f%%)", symbol, name, leg.Price.StringFixed(4), pct))
}
