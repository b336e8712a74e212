// Package auth provides token-based authentication for Pictor.
// Tokens are signed HS256 JWTs carrying the account identity; verification
// is stateless and relies only on the process-wide secret and expiry.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity assertion embedded in issued tokens.
type Claims struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies signed identity tokens.
// The secret is loaded once from configuration at startup and does not
// change for the process lifetime.
type Issuer struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewIssuer creates an Issuer with the given secret and token lifetime.
func NewIssuer(secret string, tokenTTL time.Duration) *Issuer {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Issuer{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Issue signs a token asserting the given identity, expiring after the
// configured TTL.
func (i *Issuer) Issue(name, username string, userID int64) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name:     name,
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.tokenTTL)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify validates a token and returns its claims.
// Bad signature, malformed payload, and expiry all collapse into
// ErrInvalidToken so callers cannot distinguish the failure cause.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
