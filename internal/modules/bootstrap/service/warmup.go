package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

type ProfileStore interface {
	List(ctx context.Context) ([]*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
}

type KlineSource interface {
	GetKline(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error)
}

type target struct {
	Symbol   string
	Market   models.MarketKind
	Interval string
}

// Report итог прогрева.
type Report struct {
	Profiles int
	Symbols  int
	Failed   map[target]error
}

// Warmuper на старте переписывает профили в текущем формате и проверяет, что биржа отдаёт свечи по всем символам.
type Warmuper struct {
	store  ProfileStore
	klines KlineSource
	n      notify.Notifier
	cfg    *config.Config

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(store ProfileStore, klines KlineSource, n notify.Notifier, cfg *config.Config) *Warmuper {
	return &Warmuper{
		store:  store,
		klines: klines,
		n:      n,
		cfg:    cfg,
		sem:    make(chan struct{}, 8), // 8 параллельных символов
	}
}

func (w *Warmuper) Warmup(ctx context.Context) (*Report, error) {
	profiles, err := w.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	// профили уже нормализованы при чтении, сохраняем их в новом формате
	for _, p := range profiles {
		if err := w.store.Save(ctx, p); err != nil {
			logger.Error("warmup: save profile %d: %v", p.OwnerID, err)
		}
	}

	owners := w.targets(profiles)
	rep := &Report{Profiles: len(profiles), Symbols: len(owners), Failed: make(map[target]error)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for t := range owners {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			if _, err := w.klines.GetKline(ctx, t.Symbol, t.Interval, t.Market, w.cfg.Monitor.PriceLimit); err != nil {
				mu.Lock()
				rep.Failed[t] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for t, err := range rep.Failed {
		logger.Warn("warmup: %s %s %s: %v", t.Symbol, t.Market, t.Interval, err)
		for _, owner := range owners[t] {
			w.n.Notify(ctx, owner, fmt.Sprintf("⚠️ %s (%s, %s): свечи недоступны, мониторинг по символу не сработает\nПричина: %v",
				t.Symbol, t.Market, t.Interval, err))
		}
	}
	return rep, nil
}

// targets уникальные (symbol, market, interval) активных профилей и их владельцы.
func (w *Warmuper) targets(profiles []*models.Profile) map[target][]int64 {
	out := make(map[target][]int64)
	for _, p := range profiles {
		if !p.Active {
			continue
		}
		for _, e := range p.Watches {
			interval := w.cfg.Monitor.DefaultInterval
			if e.Monitor == models.MonitorPrice && e.Interval != "" {
				interval = e.Interval
			}
			t := target{Symbol: e.Symbol, Market: e.Market, Interval: helper.NormTF(interval)}
			if !containsOwner(out[t], p.OwnerID) {
				out[t] = append(out[t], p.OwnerID)
			}
		}
	}
	for t := range out {
		sort.Slice(out[t], func(i, j int) bool { return out[t][i] < out[t][j] })
	}
	return out
}

func containsOwner(owners []int64, id int64) bool {
	for _, o := range owners {
		if o == id {
			return true
		}
	}
	return false
}
