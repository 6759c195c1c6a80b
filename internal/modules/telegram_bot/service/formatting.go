package service

import (
	"fmt"
	"strings"

	"signal_bot/internal/models"
	trader "signal_bot/internal/modules/trader/service"
)

func formatProfile(p *models.Profile, crossInterval string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статус: %s\n", onOff(p.Active))
	fmt.Fprintf(&b, "Мониторы: цена %s | MACD %s | MA %s (%s)\n",
		onOff(p.Monitors.Price), onOff(p.Monitors.MACD), onOff(p.Monitors.MA), crossInterval)

	if len(p.Watches) == 0 {
		b.WriteString("Символы: нет\n")
	}
	for _, w := range p.Watches {
		if w.Monitor == models.MonitorPrice {
			fmt.Fprintf(&b, "• %s [%s] %s %s, порог %s%%\n", w.Symbol, w.Market, w.Monitor, w.Interval, f2(w.Threshold))
			continue
		}
		fmt.Fprintf(&b, "• %s [%s] %s\n", w.Symbol, w.Market, w.Monitor)
	}

	at := p.AutoTrade
	fmt.Fprintf(&b, "\n🤖 Автоторговля: %s", onOff(at.Enabled))
	if at.Mode != models.TradeModeNone {
		fmt.Fprintf(&b, " (%s)", at.Mode)
	}
	for _, s := range at.Symbols {
		fmt.Fprintf(&b, "\n• %s %dx %s USDT, TP %s%% SL %s%%", s.Symbol, s.Leverage, f2(s.Amount), f2(s.TP), f2(s.SL))
	}
	return b.String()
}

func formatHoldings(h *trader.Holdings) string {
	if len(h.System) == 0 && len(h.Other) == 0 {
		return "📭 Открытых позиций нет"
	}

	var b strings.Builder
	if len(h.System) > 0 {
		b.WriteString("🤖 Открыты ботом:\n")
		for _, p := range h.System {
			writePosition(&b, p)
		}
	}
	if len(h.Other) > 0 {
		b.WriteString("👤 Прочие позиции:\n")
		for _, p := range h.Other {
			writePosition(&b, p)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writePosition(b *strings.Builder, p models.ExchangePosition) {
	fmt.Fprintf(b, "• %s %s %.3f @ %.4f (mark %.4f) %dx PnL %s\n",
		p.Symbol, p.Side, p.AbsQuantity(), p.EntryPrice, p.MarkPrice, p.Leverage, f2(p.UnrealizedProfit))
}
