// Package ratelimit implements the in-memory fixed-window request governor
// used to slow scripted code scanning. It is advisory: counters live in
// process memory and reset on restart, and each instance enforces its own
// window. A shared external counter can replace FixedWindow behind the
// Limiter interface without touching callers.
package ratelimit

import (
	"sync"
	"time"
)

type Result struct {
	Allowed    bool
	RetryAfter int // seconds; minimum 1 when denied
	Remaining  int
}

type Limiter interface {
	Check(key string, limit int, window time.Duration, now time.Time) Result
}

type bucket struct {
	count   int
	resetAt time.Time
}

type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewFixedWindow() *FixedWindow {
	return &FixedWindow{buckets: make(map[string]*bucket)}
}

var _ Limiter = (*FixedWindow)(nil)

func (l *FixedWindow) Check(key string, limit int, window time.Duration, now time.Time) Result {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[key]
	if !ok || !now.Before(entry.resetAt) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(window)}
		return Result{Allowed: true, Remaining: limit - 1}
	}

	if entry.count >= limit {
		retryAfter := int((entry.resetAt.Sub(now) + time.Second - 1) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Result{Allowed: false, RetryAfter: retryAfter}
	}

	entry.count++
	remaining := limit - entry.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining}
}

// Reset drops every bucket. Test helper.
func (l *FixedWindow) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}
