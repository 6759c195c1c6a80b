package runner

import (
	"time"
)

// NextBoundary конец текущей свечи: floor(now/interval)*interval + interval.
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	ms := interval.Milliseconds()
	if ms <= 0 {
		return now
	}
	cur := now.UnixMilli() / ms * ms
	return time.UnixMilli(cur + ms)
}

// InWindow 0 <= remaining <= window.
func InWindow(remaining, window time.Duration) bool {
	return remaining >= 0 && remaining <= window
}

// Due возвращает границу свечи и попадает ли now в окно перед её закрытием.
func Due(now time.Time, interval, window time.Duration) (time.Time, bool) {
	next := NextBoundary(now, interval)
	return next, InWindow(next.Sub(now), window)
}
