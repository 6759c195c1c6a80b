package runner

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"

	opentracing "github.com/opentracing/opentracing-go"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	crossover "signal_bot/internal/modules/crossover/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
	"signal_bot/pkg/tracing"
)

// PriceChange изменение в процентах и превышен ли порог по модулю.
func PriceChange(prev, cur, threshold float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	change := (cur - prev) / prev * 100
	return change, math.Abs(change) > threshold
}

// detect одна детекция; паника не должна ронять проход.
func (s *Scheduler) detect(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("detect %s panic: %v\n%s", t.key, r, debug.Stack())
		}
	}()

	span, ctx := tracing.StartSpan(ctx, "detect",
		opentracing.Tag{Key: "symbol", Value: t.key.Symbol},
		opentracing.Tag{Key: "monitor", Value: string(t.key.Monitor)},
	)
	defer span.Finish()

	metrics.Detections.WithLabelValues(string(t.key.Monitor)).Inc()

	switch t.key.Monitor {
	case models.MonitorPrice:
		s.detectPrice(ctx, t)
	case models.MonitorMACD, models.MonitorMA:
		s.detectCross(ctx, t)
	default:
		logger.Warn("detect %s: unknown monitor", t.key)
	}
}

func (s *Scheduler) detectPrice(ctx context.Context, t task) {
	klines, err := s.klines.GetKline(ctx, t.key.Symbol, t.key.Interval, t.key.Market, s.cfg.PriceLimit)
	if err != nil {
		logger.Warn("price %s: %v", t.key, err)
		return
	}
	if len(klines) < 2 {
		return
	}

	prev, cur := klines[len(klines)-2].Close, klines[len(klines)-1].Close
	change, fired := PriceChange(prev, cur, t.threshold)
	if !fired {
		return
	}

	dir := "up"
	if change < 0 {
		dir = "down"
	}
	metrics.Signals.WithLabelValues(string(models.MonitorPrice), dir).Inc()
	logger.Info("price %s: %+.2f%% (threshold %.2f%%)", t.key, change, t.threshold)

	s.n.Notify(ctx, t.key.OwnerID, formatPrice(t, prev, cur, change, s.now()))
}

func (s *Scheduler) detectCross(ctx context.Context, t task) {
	klines, err := s.klines.GetKline(ctx, t.key.Symbol, t.key.Interval, t.key.Market, s.cfg.CrossLimit)
	if err != nil {
		logger.Warn("%s %s: %v", t.key.Monitor, t.key.Symbol, err)
		return
	}
	closes := models.Closes(klines)

	p, ok := s.points(t.key.Monitor, closes)
	if !ok {
		// мало истории, молча пропускаем
		return
	}

	key := crossover.Key{OwnerID: t.key.OwnerID, Symbol: t.key.Symbol, Market: t.key.Market, Kind: t.key.Monitor}
	state, fired := s.engine.Observe(key, p)
	if !fired {
		return
	}

	sig := models.Signal{
		OwnerID: t.key.OwnerID,
		Symbol:  t.key.Symbol,
		Market:  t.key.Market,
		Type:    state,
		Monitor: t.key.Monitor,
		Price:   closes[len(closes)-1],
		At:      s.now(),
	}
	metrics.Signals.WithLabelValues(string(sig.Monitor), string(sig.Type)).Inc()
	logger.Info("%s %s %s cross @ %.4f", sig.Monitor, sig.Symbol, sig.Type, sig.Price)

	s.n.Notify(ctx, sig.OwnerID, formatCross(sig, p))
	if s.router != nil {
		s.router.OnSignal(ctx, sig)
	}
}

// points последние две точки пары рядов, false если истории не хватает.
func (s *Scheduler) points(kind models.MonitorKind, closes []float64) (crossover.Point, bool) {
	switch kind {
	case models.MonitorMACD:
		if len(closes) < s.cfg.MACDMinRows {
			return crossover.Point{}, false
		}
		res, err := indicator.MACD(closes, indicator.MACDFast, indicator.MACDSlow, indicator.MACDSignal)
		if err != nil {
			return crossover.Point{}, false
		}
		return pair(res.Line, res.Signal)

	case models.MonitorMA:
		if len(closes) < s.cfg.MAMinRows {
			return crossover.Point{}, false
		}
		fast, err := indicator.SMA(closes, s.cfg.MAFast)
		if err != nil {
			return crossover.Point{}, false
		}
		slow, err := indicator.SMA(closes, s.cfg.MASlow)
		if err != nil {
			return crossover.Point{}, false
		}
		return pair(fast, slow)
	}
	return crossover.Point{}, false
}

func pair(a, b []float64) (crossover.Point, bool) {
	prevA, curA, okA := indicator.Last2(a)
	prevB, curB, okB := indicator.Last2(b)
	if !okA || !okB {
		return crossover.Point{}, false
	}
	return crossover.Point{PrevA: prevA, PrevB: prevB, CurA: curA, CurB: curB}, true
}

func marketLabel(m models.MarketKind) string {
	if m == models.MarketContract {
		return "фьючерсы"
	}
	return "спот"
}

func (k markKey) label() string {
	return fmt.Sprintf("%s (%s, %s)", k.Symbol, marketLabel(k.Market), k.Interval)
}
