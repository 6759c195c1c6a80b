package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

type fakeFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeFetcher) Klines(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error) {
	n := f.calls.Add(1)
	if f.started != nil && n == 1 {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return []models.Kline{{Close: float64(n)}}, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func runConcurrent(t *testing.T, c *Cache, f *fakeFetcher, n int) ([][]models.Kline, []error) {
	t.Helper()

	results := make([][]models.Kline, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetKline(context.Background(), "BTCUSDT", "15m", models.MarketSpot, 100)
		}(i)
	}

	<-f.started
	// даём остальным горутинам встать в ожидание
	time.Sleep(100 * time.Millisecond)
	close(f.release)
	wg.Wait()
	return results, errs
}

func TestConcurrentCallsCoalesce(t *testing.T) {
	f := &fakeFetcher{started: make(chan struct{}), release: make(chan struct{})}
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock(f, DefaultTTL, clk.Now)

	results, errs := runConcurrent(t, c, f, 50)

	if f.calls.Load() != 1 {
		t.Fatalf("upstream calls=%d, expected 1", f.calls.Load())
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d err=%v", i, errs[i])
		}
		if &results[i][0] != &results[0][0] {
			t.Fatalf("caller %d got a different payload", i)
		}
	}
}

func TestConcurrentFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{started: make(chan struct{}), release: make(chan struct{}), err: boom}
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock(f, DefaultTTL, clk.Now)

	_, errs := runConcurrent(t, c, f, 20)

	if f.calls.Load() != 1 {
		t.Fatalf("upstream calls=%d, expected 1", f.calls.Load())
	}
	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Fatalf("caller %d err=%v, expected boom", i, err)
		}
	}

	// ошибка не кешируется
	f.err = nil
	f.release = nil
	if _, err := c.GetKline(context.Background(), "BTCUSDT", "15m", models.MarketSpot, 100); err != nil {
		t.Fatalf("retry err=%v", err)
	}
	if f.calls.Load() != 2 {
		t.Fatalf("upstream calls=%d, expected 2 after failed fetch", f.calls.Load())
	}
}

func TestFreshness(t *testing.T) {
	f := &fakeFetcher{}
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock(f, DefaultTTL, clk.Now)
	ctx := context.Background()

	first, err := c.GetKline(ctx, "ETHUSDT", "15m", models.MarketContract, 100)
	if err != nil {
		t.Fatal(err)
	}

	clk.Advance(4 * time.Second)
	second, _ := c.GetKline(ctx, "ETHUSDT", "15m", models.MarketContract, 100)
	if f.calls.Load() != 1 || &second[0] != &first[0] {
		t.Fatalf("t+4s: calls=%d, expected cached payload", f.calls.Load())
	}

	clk.Advance(2 * time.Second)
	third, _ := c.GetKline(ctx, "ETHUSDT", "15m", models.MarketContract, 100)
	if f.calls.Load() != 2 || third[0].Close != 2 {
		t.Fatalf("t+6s: calls=%d, expected new fetch", f.calls.Load())
	}

	// другой limit - другой ключ
	_, _ = c.GetKline(ctx, "ETHUSDT", "15m", models.MarketContract, 2)
	if f.calls.Load() != 3 {
		t.Fatalf("calls=%d, expected separate key per limit", f.calls.Load())
	}

	clk.Advance(10 * time.Second)
	if n := c.Prune(); n != 2 {
		t.Fatalf("pruned=%d, expected 2", n)
	}
}

func TestFreshReadNotBlockedByReaders(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, time.Minute)
	ctx := context.Background()

	if _, err := c.GetKline(ctx, "BTCUSDT", "15m", models.MarketSpot, 100); err != nil {
		t.Fatal(err)
	}

	// держим читающий замок, как параллельная проверка свежести
	c.mu.RLock()
	defer c.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		_, _ = c.GetKline(ctx, "BTCUSDT", "15m", models.MarketSpot, 100)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cached read blocked by concurrent reader")
	}
	if f.calls.Load() != 1 {
		t.Fatalf("calls=%d, expected cached payload", f.calls.Load())
	}
}
