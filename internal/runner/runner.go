package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	crossover "signal_bot/internal/modules/crossover/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

// marks старше этого срока точно не понадобятся: самый длинный интервал 4h.
const markTTL = 8 * time.Hour

type ProfileSource interface {
	List(ctx context.Context) ([]*models.Profile, error)
}

type KlineSource interface {
	GetKline(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error)
}

// Pruner источник свечей с кэшем, который чистится после прохода.
type Pruner interface {
	Prune() int
}

type SignalRouter interface {
	OnSignal(ctx context.Context, sig models.Signal)
}

// Status снапшот для health.
type Status struct {
	LastPass      time.Time
	LastTasks     int
	HighFrequency bool
	Marks         int
}

// Scheduler решает, какие кортежи проверять на текущем проходе.
type Scheduler struct {
	cfg      config.Monitor
	profiles ProfileSource
	klines   KlineSource
	engine   *crossover.Engine
	router   SignalRouter
	n        notify.Notifier
	now      func() time.Time

	marks *marks
	mode  mode

	statusMu sync.Mutex
	status   Status
}

func New(
	cfg config.Monitor,
	profiles ProfileSource,
	klines KlineSource,
	engine *crossover.Engine,
	router SignalRouter,
	n notify.Notifier,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		profiles: profiles,
		klines:   klines,
		engine:   engine,
		router:   router,
		n:        n,
		now:      time.Now,
		marks:    newMarks(),
	}
}

// Run крутит проходы до отмены ctx. Начатый проход всегда доводится до конца.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("scheduler started: low=%s high=%s window=%s", s.cfg.LowFrequency, s.cfg.HighFrequency, s.cfg.Window)
	for {
		s.Pass(context.WithoutCancel(ctx), s.now())

		wait := s.mode.cadence(s.now(), s.cfg.LowFrequency, s.cfg.HighFrequency)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			logger.Info("scheduler stopped")
			return
		case <-t.C:
		}
	}
}

// Pass один проход: собрать due-кортежи, запустить детекции параллельно, дождаться всех.
func (s *Scheduler) Pass(ctx context.Context, now time.Time) int {
	tasks, expiry := s.collect(ctx, now)
	if len(tasks) > 0 {
		s.mode.enter(expiry)
	}

	var g errgroup.Group
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			s.detect(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	s.marks.prune(now.Add(-markTTL).UnixMilli())
	if p, ok := s.klines.(Pruner); ok {
		if n := p.Prune(); n > 0 {
			logger.Debug("kline cache: pruned %d entries", n)
		}
	}

	s.statusMu.Lock()
	s.status = Status{
		LastPass:      now,
		LastTasks:     len(tasks),
		HighFrequency: s.mode.highFrequency(),
		Marks:         s.marks.len(),
	}
	s.statusMu.Unlock()

	if len(tasks) > 0 {
		logger.Debug("pass done: %d detections", len(tasks))
	}
	return len(tasks)
}

func (s *Scheduler) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

type task struct {
	key       markKey
	threshold float64
	boundary  time.Time
}

func (k markKey) String() string {
	return fmt.Sprintf("%d:%s:%s:%s:%s", k.OwnerID, k.Symbol, k.Market, k.Interval, k.Monitor)
}

// collect возвращает новые due-кортежи и максимальный срок частого режима.
func (s *Scheduler) collect(ctx context.Context, now time.Time) ([]task, time.Time) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		logger.Error("list profiles: %v", err)
		return nil, time.Time{}
	}

	var (
		tasks  []task
		expiry time.Time
	)
	for _, p := range profiles {
		if !p.Active {
			continue
		}
		for _, w := range p.Watches {
			if !p.Monitors.Enabled(w.Monitor) {
				continue
			}

			interval := helper.NormTF(s.cfg.DefaultInterval)
			threshold := 0.0
			if w.Monitor == models.MonitorPrice {
				if w.Interval != "" {
					interval = helper.NormTF(w.Interval)
				}
				threshold = w.Threshold
				if threshold <= 0 {
					threshold = s.cfg.DefaultThreshold
				}
			}

			next, due := Due(now, helper.IntervalDuration(interval), s.cfg.Window)
			if !due {
				continue
			}

			key := markKey{
				OwnerID:  p.OwnerID,
				Symbol:   w.Symbol,
				Market:   w.Market,
				Interval: interval,
				Monitor:  w.Monitor,
			}
			if !s.marks.mark(key, next.UnixMilli()) {
				continue
			}

			tasks = append(tasks, task{key: key, threshold: threshold, boundary: next})
			if e := next.Add(s.cfg.Window); e.After(expiry) {
				expiry = e
			}
		}
	}
	return tasks, expiry
}
