// Package cooldown limits each key (a user, or one shared bucket) to one
// command per interval.
package cooldown

import (
	"sync"
	"time"
)

const sweepThreshold = 1024

// Limiter tracks when each key last ran a command.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time

	lastSweep time.Time
}

// New creates a Limiter. An interval <= 0 disables the cooldown.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow records a command for key and reports whether it may run. When it
// may not, the remaining wait is returned.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l.interval <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if t, ok := l.last[key]; ok {
		if elapsed := now.Sub(t); elapsed < l.interval {
			return false, l.interval - elapsed
		}
	}
	l.last[key] = now
	l.sweep(now)
	return true, 0
}

// sweep drops expired keys once the table grows, at most once per
// interval; callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if len(l.last) < sweepThreshold || now.Sub(l.lastSweep) < l.interval {
		return
	}
	l.lastSweep = now
	for k, t := range l.last {
		if now.Sub(t) >= l.interval {
			delete(l.last, k)
		}
	}
}
