package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 5 * time.Second

type Fetcher interface {
	Klines(ctx context.Context, symbol, interval string, market models.MarketKind, limit int) ([]models.Kline, error)
}

type Key struct {
	Symbol   string
	Interval string
	Market   models.MarketKind
	Limit    int
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s_%d", k.Symbol, k.Interval, k.Market, k.Limit)
}

type entry struct {
	klines    []models.Kline
	fetchedAt time.Time
}

// Cache склеивает одинаковые запросы свечей и держит результат ttl.
// Возвращаемый срез общий для всех вызывающих, менять его нельзя.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[Key]entry

	group singleflight.Group
}

func New(fetcher Fetcher, ttl time.Duration) *Cache {
	return NewWithClock(fetcher, ttl, time.Now)
}

func NewWithClock(fetcher Fetcher, ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     now,
		entries: make(map[Key]entry),
	}
}

func (c *Cache) GetKline(
	ctx context.Context,
	symbol, interval string,
	market models.MarketKind,
	limit int,
) ([]models.Kline, error) {
	key := Key{Symbol: symbol, Interval: interval, Market: market, Limit: limit}

	if v, ok := c.fresh(key); ok {
		metrics.KlineCacheHits.Inc()
		return v, nil
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		// пока ждали, другой фетчер мог уже положить свежие данные
		if v, ok := c.fresh(key); ok {
			return v, nil
		}

		metrics.KlineFetches.Inc()
		klines, err := c.fetcher.Klines(context.WithoutCancel(ctx), symbol, interval, market, limit)
		if err != nil {
			logger.Error("kline fetch %s: %v", key, err)
			return nil, err
		}
		c.store(key, klines)
		return klines, nil
	})
	if shared {
		metrics.KlineCacheHits.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]models.Kline), nil
}

func (c *Cache) fresh(key Key) ([]models.Kline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.klines, true
}

func (c *Cache) store(key Key, klines []models.Kline) {
	c.mu.Lock()
	c.entries[key] = entry{klines: klines, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Prune выкидывает протухшие записи.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			n++
		}
	}
	return n
}
