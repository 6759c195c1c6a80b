package runner

import (
	"fmt"
	"time"

	"signal_bot/internal/models"
	crossover "signal_bot/internal/modules/crossover/service"
)

const timeLayout = "2006-01-02 15:04:05"

func formatPrice(t task, prev, cur, change float64, at time.Time) string {
	icon, word := "🚀", "рост"
	if change < 0 {
		icon, word = "📉", "падение"
	}
	return fmt.Sprintf(
		"%s %s\n%s %+.2f%% (порог %.2f%%)\nЦена: %.4f → %.4f\n🕒 %s",
		icon, t.key.label(), word, change, t.threshold, prev, cur, at.Format(timeLayout),
	)
}

func formatCross(sig models.Signal, p crossover.Point) string {
	icon, word := "🟢", "золотой крест"
	if sig.Type == models.CrossDead {
		icon, word = "🔴", "мёртвый крест"
	}

	name := "MA"
	values := fmt.Sprintf("MA fast: %.4f | MA slow: %.4f", p.CurA, p.CurB)
	if sig.Monitor == models.MonitorMACD {
		name = "MACD"
		values = fmt.Sprintf("MACD: %.6f | Signal: %.6f", p.CurA, p.CurB)
	}

	return fmt.Sprintf(
		"%s %s: %s %s (%s)\n%s\nЦена: %.4f\n🕒 %s",
		icon, sig.Symbol, name, word, marketLabel(sig.Market), values, sig.Price, sig.At.Format(timeLayout),
	)
}
