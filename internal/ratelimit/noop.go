// Package ratelimit provides login attempt rate limiting abstractions.
package ratelimit

import (
	"context"
	"time"
)

// NoopLimiter implements Limiter without any limiting.
// Used when rate limiting is disabled in configuration.
type NoopLimiter struct{}

// NewNoopLimiter creates a new no-op limiter.
func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

// Allow always permits the attempt.
func (l *NoopLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

// Reset does nothing.
func (l *NoopLimiter) Reset(ctx context.Context, key string) error {
	return nil
}

// Ensure NoopLimiter implements Limiter.
var _ Limiter = (*NoopLimiter)(nil)
