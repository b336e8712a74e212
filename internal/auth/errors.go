// Package auth provides token-based authentication for Pictor.
package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed verification for any
	// reason: bad signature, malformed payload, or expiry. Causes are
	// deliberately not differentiated.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingSecret indicates the signing secret was not configured.
	ErrMissingSecret = errors.New("token signing secret is not configured")

	// ErrNoAuthHeader indicates the Authorization header was missing or
	// did not carry a bearer token.
	ErrNoAuthHeader = errors.New("missing or malformed authorization header")
)
