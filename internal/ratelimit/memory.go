// Package ratelimit provides login attempt rate limiting abstractions.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements Limiter using in-process counters.
// This is NOT suitable for distributed deployments.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count     int
	expiresAt time.Time
}

// NewMemoryLimiter creates a new in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
	}
}

// Allow records an attempt and reports whether it is within the limit.
func (l *MemoryLimiter) Allow(ctx context.Context, key string, limit int, windowDur time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(windowDur)}
		return limit >= 1, nil
	}

	w.count++
	return w.count <= limit, nil
}

// Reset clears the counter for key.
func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// Ensure MemoryLimiter implements Limiter.
var _ Limiter = (*MemoryLimiter)(nil)
