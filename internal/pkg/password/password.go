// Package password provides salted one-way password hashing for Pictor.
// It wraps bcrypt: each call to Hash produces a fresh salt, so hashing the
// same plaintext twice yields different digests while Verify succeeds for both.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the default bcrypt work factor.
const DefaultCost = 10

// ErrMismatch indicates the plaintext does not match the digest.
// Any other error from Verify is an infrastructure failure (malformed
// digest, unsupported cost) and must not be treated as a wrong password.
var ErrMismatch = errors.New("password does not match")

// Hasher hashes and verifies passwords with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted digest of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify checks the plaintext against a stored digest.
// Returns nil on match, ErrMismatch on a wrong password, and any other
// error when the digest itself is unusable.
func (h *Hasher) Verify(plaintext, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("failed to verify password: %w", err)
}
