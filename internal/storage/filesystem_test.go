package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestBackend(t *testing.T) *FilesystemBackend {
	t.Helper()
	backend, err := NewFilesystemBackend(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	return backend
}

func TestFilesystemBackend_StoreRetrieve(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()
	content := "fake-png-bytes"

	err := backend.Store(ctx, "images/2026/01/01/abc.png", strings.NewReader(content), int64(len(content)), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rc, err := backend.Retrieve(ctx, "images/2026/01/01/abc.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != content {
		t.Errorf("expected %q, got %q", content, data)
	}

	exists, err := backend.Exists(ctx, "images/2026/01/01/abc.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}
}

func TestFilesystemBackend_StoreSizeMismatch(t *testing.T) {
	backend := newTestBackend(t)

	err := backend.Store(context.Background(), "short.png", strings.NewReader("abc"), 10, "image/png")
	if err == nil {
		t.Fatal("expected an error for a short write")
	}

	// The partial object must not be visible under its key.
	if _, err := backend.Retrieve(context.Background(), "short.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for failed store, got %v", err)
	}
}

func TestFilesystemBackend_RetrieveMissing(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.Retrieve(context.Background(), "images/missing.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFilesystemBackend_Delete(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	if err := backend.Store(ctx, "gone.png", strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := backend.Delete(ctx, "gone.png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := backend.Exists(ctx, "gone.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected object to be gone")
	}

	if err := backend.Delete(ctx, "gone.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestFilesystemBackend_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFilesystemBackend(filepath.Join(dir, "objects"), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	secret := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(secret, []byte("keep out"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	keys := []string{
		"../secret.txt",
		"a/../../secret.txt",
		"/etc/passwd",
		".",
	}
	for _, key := range keys {
		if _, err := backend.Retrieve(context.Background(), key); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
		if err := backend.Store(context.Background(), key, strings.NewReader("x"), 1, "image/png"); err == nil {
			t.Errorf("store with key %q should be rejected", key)
		}
	}
}

func TestImageKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	key := ImageKey(now, ".png")
	if !strings.HasPrefix(key, "images/2026/03/07/") {
		t.Errorf("unexpected key prefix: %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key suffix: %q", key)
	}

	if key == ImageKey(now, ".png") {
		t.Error("expected unique keys for repeated calls")
	}
}
