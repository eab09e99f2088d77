// Package ratelimit provides a per-user sliding-window limiter for inbound
// messages.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	history map[string][]time.Time
	now     func() time.Time
}

func New(max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = 20
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		window:  window,
		max:     max,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records an attempt and reports whether it fits in the window.
// Denied attempts do not consume window slots.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.history[userID][:0]
	for _, t := range l.history[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.history[userID] = recent
		return false
	}
	l.history[userID] = append(recent, now)
	return true
}

// Remaining reports how many attempts the user has left in the window.
func (l *Limiter) Remaining(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	count := 0
	for _, t := range l.history[userID] {
		if t.After(cutoff) {
			count++
		}
	}
	if count >= l.max {
		return 0
	}
	return l.max - count
}
