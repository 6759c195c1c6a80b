package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

type memStore struct {
	mu    sync.Mutex
	list  []*models.Profile
	saved []int64
}

func (s *memStore) List(ctx context.Context) ([]*models.Profile, error) { return s.list, nil }

func (s *memStore) Save(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, p.OwnerID)
	return nil
}

type klines struct {
	mu    sync.Mutex
	calls []string
}

func (k *klines) GetKline(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error) {
	k.mu.Lock()
	k.calls = append(k.calls, symbol+"/"+interval)
	k.mu.Unlock()
	if symbol == "NOPEUSDT" {
		return nil, errors.New("Invalid symbol.")
	}
	return []models.Kline{{Close: 1}, {Close: 2}}, nil
}

func active(owner int64, watches ...models.WatchEntry) *models.Profile {
	p := models.NewProfile(owner)
	p.Active = true
	p.Watches = watches
	p.Normalize()
	return p
}

func TestWarmup(t *testing.T) {
	store := &memStore{list: []*models.Profile{
		active(1,
			models.WatchEntry{Symbol: "BTCUSDT", Monitor: models.MonitorPrice, Interval: "1h"},
			models.WatchEntry{Symbol: "NOPEUSDT", Market: models.MarketContract, Monitor: models.MonitorMA},
		),
		active(2, models.WatchEntry{Symbol: "BTCUSDT", Monitor: models.MonitorPrice, Interval: "60m"}),
		models.NewProfile(3),
	}}
	kl := &klines{}
	rec := notify.NewRecorder(10)

	rep, err := NewWarmuper(store, kl, rec, config.Default()).Warmup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Profiles != 3 || len(store.saved) != 3 {
		t.Fatalf("profiles=%d saved=%v", rep.Profiles, store.saved)
	}
	// BTCUSDT 1h и 60m один и тот же таргет
	if rep.Symbols != 2 || len(kl.calls) != 2 {
		t.Fatalf("symbols=%d calls=%v", rep.Symbols, kl.calls)
	}
	if len(rep.Failed) != 1 {
		t.Fatalf("failed=%v", rep.Failed)
	}

	msgs := rec.Drain()
	if len(msgs) != 1 || msgs[0].OwnerID != 1 || !strings.Contains(msgs[0].Text, "NOPEUSDT") {
		t.Fatalf("messages=%+v", msgs)
	}
}
