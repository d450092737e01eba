package app

import (
	"sync"
	"time"
)

// RateLimiter is the capability the HTTP layer consults before accepting a
// public read-tracking request. Implementations decide the keying scheme;
// the service only supplies an opaque key such as a client IP.
type RateLimiter interface {
	Allow(key string) bool
}

// WindowLimiter is an in-memory fixed-window rate limiter. It is suitable
// for a single-process deployment; a shared store would be needed behind
// this interface for anything horizontally scaled.
type WindowLimiter struct {
	limit  int
	window time.Duration

	// Now supplies the wall clock; overridable in tests.
	Now func() time.Time

	mu      sync.Mutex
	counts  map[string]int
	resetAt time.Time
}

// NewWindowLimiter allows limit requests per key per window.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:  limit,
		window: window,
		Now:    time.Now,
		counts: make(map[string]int),
	}
}

// Allow reports whether key still has budget in the current window.
func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	if now.After(l.resetAt) {
		l.counts = make(map[string]int)
		l.resetAt = now.Add(l.window)
	}

	if l.counts[key] >= l.limit {
		return false
	}
	l.counts[key]++
	return true
}
