// Package ratelimit provides login attempt rate limiting abstractions.
// For single-node deployments, memory-based counters are used.
// For distributed deployments, Redis-based counters can be used.
package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the interface for fixed-window attempt counting.
// This abstraction allows switching between in-memory counters (single-node)
// and Redis-based counters (distributed) without changing business logic.
type Limiter interface {
	// Allow records an attempt for key and reports whether it is within
	// the limit for the current window. The first attempt in a window
	// starts the window; once limit attempts have been recorded, further
	// calls return false until the window expires.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Reset clears the counter for key, e.g. after a successful login.
	Reset(ctx context.Context, key string) error
}
