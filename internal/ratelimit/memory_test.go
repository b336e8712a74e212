package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "login:ann", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "login:ann", 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("attempt over the limit should be denied")
	}

	// Other keys keep their own counters.
	allowed, err = limiter.Allow(ctx, "login:bob", 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("unrelated key should not be limited")
	}
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "login:ann", 1, 10*time.Millisecond); !allowed {
		t.Fatal("first attempt should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "login:ann", 1, 10*time.Millisecond); allowed {
		t.Fatal("second attempt in window should be denied")
	}

	time.Sleep(20 * time.Millisecond)

	if allowed, _ := limiter.Allow(ctx, "login:ann", 1, 10*time.Millisecond); !allowed {
		t.Error("attempt after window expiry should be allowed")
	}
}

func TestMemoryLimiter_Reset(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	limiter.Allow(ctx, "login:ann", 1, time.Minute)
	if allowed, _ := limiter.Allow(ctx, "login:ann", 1, time.Minute); allowed {
		t.Fatal("expected key to be limited")
	}

	if err := limiter.Reset(ctx, "login:ann"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed, _ := limiter.Allow(ctx, "login:ann", 1, time.Minute); !allowed {
		t.Error("attempt after reset should be allowed")
	}
}

func TestNoopLimiter(t *testing.T) {
	limiter := NewNoopLimiter()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		allowed, err := limiter.Allow(ctx, "login:ann", 1, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatal("noop limiter must always allow")
		}
	}
	if err := limiter.Reset(ctx, "login:ann"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
