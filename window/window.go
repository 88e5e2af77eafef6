// Package window decides when two buckets are chronologically adjacent.
package window

import (
	"time"

	"github.com/davidvella/traffic/record"
)

type Strategy struct {
	interval time.Duration
}

func NewStrategy(interval time.Duration) *Strategy {
	return &Strategy{
		interval: interval,
	}
}

// Default is the half-hour bucket strategy.
func Default() *Strategy {
	return NewStrategy(record.Interval)
}

func (s *Strategy) Interval() time.Duration {
	return s.interval
}

// Contiguous reports whether next starts exactly one interval after prev.
func (s *Strategy) Contiguous(prev, next time.Time) bool {
	return next.Sub(prev) == s.interval
}

// Missing returns how many whole buckets are absent between prev and next.
// It is zero when the two are contiguous, equal or out of order.
func (s *Strategy) Missing(prev, next time.Time) int {
	d := next.Sub(prev)
	if d <= s.interval {
		return 0
	}
	return int(d/s.interval) - 1
}
