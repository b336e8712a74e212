// Package repository defines data access interfaces for Pictor.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/domain"
)

// Cache defines the interface for caching user lookups.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

// CachedUserRepository decorates a UserRepository with read-through caching
// for GetByID and GetByUsername. Mutations invalidate both cache entries so
// a stale password hash is never used for verification.
type CachedUserRepository struct {
	inner  UserRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedUserRepository wraps repo with caching.
func NewCachedUserRepository(repo UserRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		inner:  repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "user_cache").Logger(),
	}
}

func userIDKey(id int64) string {
	return fmt.Sprintf("user:id:%d", id)
}

func usernameKey(username string) string {
	return "user:name:" + username
}

// Create delegates to the inner repository. New users are not cached until
// first read.
func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.inner.Create(ctx, user)
}

// GetByID retrieves a user by ID, consulting the cache first.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := r.cachedUser(ctx, userIDKey(id)); ok {
		return user, nil
	}

	user, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.storeUser(ctx, user)
	return user, nil
}

// GetByUsername retrieves a user by username, consulting the cache first.
func (r *CachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if user, ok := r.cachedUser(ctx, usernameKey(username)); ok {
		return user, nil
	}

	user, err := r.inner.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.storeUser(ctx, user)
	return user, nil
}

// UpdateName updates the display name and invalidates cache entries.
func (r *CachedUserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	if err := r.inner.UpdateName(ctx, id, name); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// UpdatePassword replaces the password hash and invalidates cache entries.
func (r *CachedUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if err := r.inner.UpdatePassword(ctx, id, passwordHash); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// Delete deletes a user and invalidates cache entries.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// List bypasses the cache.
func (r *CachedUserRepository) List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error) {
	return r.inner.List(ctx, opts)
}

// ExistsByUsername bypasses the cache: uniqueness checks must see the
// current state of the store.
func (r *CachedUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.inner.ExistsByUsername(ctx, username)
}

// cacheEntry mirrors domain.User for cache serialization. PasswordHash is
// json:"-" on the API surface, so the domain struct cannot round-trip it.
type cacheEntry struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e *cacheEntry) toUser() *domain.User {
	return &domain.User{
		ID:           e.ID,
		Name:         e.Name,
		Username:     e.Username,
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (r *CachedUserRepository) cachedUser(ctx context.Context, key string) (*domain.User, bool) {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, evicting")
		_ = r.cache.Delete(ctx, key)
		return nil, false
	}
	return entry.toUser(), true
}

func (r *CachedUserRepository) storeUser(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(cacheEntry{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, userIDKey(user.ID), data, r.ttl); err != nil {
		r.logger.Warn().Err(err).Msg("cache write failed")
	}
	if err := r.cache.Set(ctx, usernameKey(user.Username), data, r.ttl); err != nil {
		r.logger.Warn().Err(err).Msg("cache write failed")
	}
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id int64) {
	// Username is immutable, so resolve it before evicting the ID entry.
	if user, ok := r.cachedUser(ctx, userIDKey(id)); ok {
		_ = r.cache.Delete(ctx, usernameKey(user.Username))
	}
	_ = r.cache.Delete(ctx, userIDKey(id))
}

// Ensure CachedUserRepository implements UserRepository.
var _ UserRepository = (*CachedUserRepository)(nil)
