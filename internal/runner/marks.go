package runner

import (
	"sync"

	"signal_bot/internal/models"
)

type markKey struct {
	OwnerID  int64
	Symbol   string
	Market   models.MarketKind
	Interval string
	Monitor  models.MonitorKind
}

// marks помнит только последнюю обработанную границу для кортежа.
type marks struct {
	mu   sync.Mutex
	last map[markKey]int64 // unix ms границы
}

func newMarks() *marks {
	return &marks{last: make(map[markKey]int64)}
}

// mark true если граница для кортежа ещё не обрабатывалась.
func (m *marks) mark(k markKey, boundary int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last[k] == boundary {
		return false
	}
	m.last[k] = boundary
	return true
}

// prune убирает кортежи, не встречавшиеся с before.
func (m *marks) prune(before int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, b := range m.last {
		if b < before {
			delete(m.last, k)
		}
	}
}

func (m *marks) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.last)
}
