package service

import (
	"context"
	"sync"
	"time"

	"signal_bot/pkg/logger"
)

// Clock держит смещение server-local в миллисекундах.
type Clock struct {
	mu       sync.RWMutex
	offset   int64
	lastSync time.Time
	now      func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt для тестов.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Sync считает смещение, принимая сетевую задержку симметричной.
func (c *Clock) Sync(ctx context.Context, serverTime func(ctx context.Context) (int64, error)) error {
	before := c.now().UnixMilli()
	server, err := serverTime(ctx)
	if err != nil {
		return err
	}
	after := c.now().UnixMilli()

	local := before + (after-before)/2

	c.mu.Lock()
	c.offset = server - local
	c.lastSync = c.now()
	offset := c.offset
	c.mu.Unlock()

	logger.Info("clock sync: offset=%dms server=%d local=%d", offset, server, local)
	return nil
}

// Now время биржи в миллисекундах.
func (c *Clock) Now() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().UnixMilli() + c.offset
}

func (c *Clock) Offset() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

func (c *Clock) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}
