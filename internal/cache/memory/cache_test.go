package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prn-tf/pictor/internal/repository"
)

func TestCache_GetSet(t *testing.T) {
	cache := NewCache()
	defer cache.Stop()
	ctx := context.Background()

	if _, err := cache.Get(ctx, "missing"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := cache.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("expected 'value', got %q", got)
	}

	// Mutating the returned slice must not affect the cached value.
	got[0] = 'X'
	again, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(again) != "value" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}
}

func TestCache_TTL(t *testing.T) {
	cache := NewCache()
	defer cache.Stop()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(ctx, "short"); err != nil {
		t.Fatalf("value should be readable before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache()
	defer cache.Stop()
	ctx := context.Background()

	cache.Set(ctx, "key", []byte("value"), 0)
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(ctx, "key"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := cache.Delete(ctx, "missing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCache_Cleanup(t *testing.T) {
	cache := NewCache()
	defer cache.Stop()
	ctx := context.Background()

	cache.Set(ctx, "a", []byte("1"), time.Nanosecond)
	cache.Set(ctx, "b", []byte("2"), 0)
	time.Sleep(time.Millisecond)

	cache.cleanup()

	if cache.Len() != 1 {
		t.Errorf("expected 1 item after cleanup, got %d", cache.Len())
	}
	if _, err := cache.Get(ctx, "b"); err != nil {
		t.Errorf("unexpired item evicted: %v", err)
	}
}
