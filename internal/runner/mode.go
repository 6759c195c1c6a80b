package runner

import (
	"sync"
	"time"

	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

// mode частый/редкий опрос.
type mode struct {
	mu     sync.Mutex
	high   bool
	expiry time.Time
}

// enter включает частый режим или продлевает его до expiry.
func (m *mode) enter(expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.high {
		m.high = true
		m.expiry = expiry
		metrics.HighFrequency.Set(1)
		logger.Info("high-frequency mode until %s", expiry.Format(time.DateTime))
		return
	}
	if expiry.After(m.expiry) {
		m.expiry = expiry
	}
}

// cadence интервал до следующего прохода; по истечении expiry возвращаемся в редкий режим.
func (m *mode) cadence(now time.Time, low, high time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.high && now.After(m.expiry) {
		m.high = false
		metrics.HighFrequency.Set(0)
		logger.Info("back to low-frequency mode")
	}
	if m.high {
		return high
	}
	return low
}

func (m *mode) highFrequency() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.high
}
