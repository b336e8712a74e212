package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("Ann Smith", "ann", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Name != "Ann Smith" {
		t.Errorf("expected name 'Ann Smith', got %q", claims.Name)
	}
	if claims.Username != "ann" {
		t.Errorf("expected username 'ann', got %q", claims.Username)
	}
	if claims.UserID != 42 {
		t.Errorf("expected userId 42, got %d", claims.UserID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected expiry claim")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 55*time.Minute || ttl > 65*time.Minute {
		t.Errorf("unexpected token lifetime: %v", ttl)
	}
}

func TestIssuer_Verify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				// NewIssuer floors non-positive TTLs, so build the
				// expired token directly with a negative lifetime.
				short := &Issuer{secret: []byte("test-secret"), tokenTTL: -time.Minute}
				tok, err := short.Issue("Ann", "ann", 1)
				if err != nil {
					t.Fatalf("failed to issue token: %v", err)
				}
				return tok
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewIssuer("other-secret", time.Hour)
				tok, err := other.Issue("Ann", "ann", 1)
				if err != nil {
					t.Fatalf("failed to issue token: %v", err)
				}
				return tok
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage token",
			token:   func(t *testing.T) string { return "not.a.token" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIssuer_MissingSecret(t *testing.T) {
	issuer := NewIssuer("", time.Hour)

	if _, err := issuer.Issue("Ann", "ann", 1); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret from Issue, got %v", err)
	}
	if _, err := issuer.Verify("anything"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret from Verify, got %v", err)
	}
}
