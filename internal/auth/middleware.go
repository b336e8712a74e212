// Package auth provides token-based authentication for Pictor.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// rejectionMessage is the body returned for every authorization failure.
// The message is the same for a missing header, a bad signature, and an
// expired token, so callers cannot probe for the cause.
const rejectionMessage = `{"message":"Invalid or expired token provided!"}`

type contextKey struct{}

var claimsKey contextKey

// ClaimsFromContext returns the verified claims attached by Middleware.
// The second return is false for requests that did not pass the gate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// ContextWithClaims attaches claims to a context. Exposed for tests and
// internal tooling that bypass the HTTP gate.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoAuthHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrNoAuthHeader
	}
	return parts[1], nil
}

// Middleware creates the authorization gate for protected routes.
// It extracts the bearer token, verifies it against the issuer, and
// injects the decoded claims into the request context. Any failure is
// rejected with 401 and an undifferentiated message.
func Middleware(issuer *Issuer, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				log.Debug().Str("path", r.URL.Path).Msg("request without bearer token")
				reject(w)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				log.Debug().Str("path", r.URL.Path).Msg("token verification failed")
				reject(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// reject writes the standard 401 response.
func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(rejectionMessage))
}
