package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	profiles "signal_bot/internal/modules/profiles/service"
	trader "signal_bot/internal/modules/trader/service"
)

type memStore struct {
	mu       sync.Mutex
	profiles map[int64]*models.Profile
}

func (s *memStore) Get(ctx context.Context, ownerID int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	return p, nil
}

func (s *memStore) List(ctx context.Context) ([]*models.Profile, error) { return nil, nil }

func (s *memStore) Save(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.OwnerID] = p
	return nil
}

func (s *memStore) Delete(ctx context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, ownerID)
	return nil
}

func (s *memStore) Update(ctx context.Context, ownerID int64, fn func(p *models.Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[ownerID]
	if !ok {
		return profiles.ErrNotFound
	}
	return fn(p)
}

// fakeTrader пишет последовательность вызовов.
type fakeTrader struct {
	mu     sync.Mutex
	calls  []string
	locked bool
}

func (f *fakeTrader) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeTrader) Holdings(ctx context.Context, ownerID int64, creds models.Credentials) (*trader.Holdings, error) {
	return &trader.Holdings{}, nil
}

func (f *fakeTrader) Close(ctx context.Context, ownerID int64, creds models.Credentials, symbol string) error {
	f.mu.Lock()
	held := f.locked
	f.mu.Unlock()
	if held {
		f.record("close " + symbol)
	} else {
		f.record("close-unlocked " + symbol)
	}
	return nil
}

func (f *fakeTrader) Lock(ownerID int64, symbol string) func() {
	f.record("lock " + symbol)
	f.mu.Lock()
	f.locked = true
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.locked = false
		f.mu.Unlock()
		f.record("unlock " + symbol)
	}
}

func (f *fakeTrader) ForgetOwner(ownerID int64) { f.record("forget-positions") }

type fakeEngine struct{ forgotten []int64 }

func (f *fakeEngine) Forget(ownerID int64) { f.forgotten = append(f.forgotten, ownerID) }

func newTestTelegram() (*Telegram, *memStore, *fakeTrader, *fakeEngine) {
	store := &memStore{profiles: map[int64]*models.Profile{}}
	tr := &fakeTrader{}
	eng := &fakeEngine{}
	return &Telegram{cfg: &config.Config{}, store: store, trader: tr, engine: eng}, store, tr, eng
}

func TestClosePositionTakesLock(t *testing.T) {
	tg, store, tr, _ := newTestTelegram()
	_ = store.Save(context.Background(), models.NewProfile(5))

	reply, err := tg.closePosition(context.Background(), 5, " btc ")
	if err != nil {
		t.Fatalf("closePosition: %v", err)
	}
	if !strings.Contains(reply, "BTCUSDT") {
		t.Fatalf("reply=%q, expected symbol", reply)
	}

	want := []string{"lock BTCUSDT", "close BTCUSDT", "unlock BTCUSDT"}
	if strings.Join(tr.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls=%v, expected %v", tr.calls, want)
	}
}

func TestClosePositionWithoutSymbol(t *testing.T) {
	tg, _, tr, _ := newTestTelegram()

	reply, err := tg.closePosition(context.Background(), 5, "  ")
	if err != nil || !strings.Contains(reply, "/close") {
		t.Fatalf("reply=%q err=%v, expected usage hint", reply, err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("calls=%v, expected none", tr.calls)
	}
}

func TestRemoveProfileForgetsOwner(t *testing.T) {
	tg, store, tr, eng := newTestTelegram()
	_ = store.Save(context.Background(), models.NewProfile(9))

	if _, err := tg.removeProfile(context.Background(), 9); err != nil {
		t.Fatalf("removeProfile: %v", err)
	}
	if _, err := store.Get(context.Background(), 9); err != profiles.ErrNotFound {
		t.Fatalf("profile still stored, err=%v", err)
	}
	if len(eng.forgotten) != 1 || eng.forgotten[0] != 9 {
		t.Fatalf("forgotten=%v, expected [9]", eng.forgotten)
	}
	if len(tr.calls) != 1 || tr.calls[0] != "forget-positions" {
		t.Fatalf("calls=%v, expected forget-positions", tr.calls)
	}
}
