package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestAccountService_ChangeName(t *testing.T) {
	tests := []struct {
		name            string
		userID          int64
		currentPassword string
		newName         string
		wantErr         error
		wantValidation  bool
	}{
		{
			name:            "success",
			userID:          1,
			currentPassword: "secret-pass",
			newName:         "Ann Jones",
		},
		{
			name:            "wrong current password",
			userID:          1,
			currentPassword: "wrong-pass",
			newName:         "Ann Jones",
			wantErr:         ErrInvalidCredentials,
		},
		{
			name:            "unknown user",
			userID:          99,
			currentPassword: "secret-pass",
			newName:         "Ann Jones",
			wantErr:         ErrUserNotFound,
		},
		{
			name:            "empty new name",
			userID:          1,
			currentPassword: "secret-pass",
			newName:         "",
			wantValidation:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			hasher := testHasher(t)
			seeded := repo.addUser(t, hasher, "Ann Smith", "ann", "secret-pass")
			svc := NewAccountService(repo, hasher, zerolog.Nop())

			err := svc.ChangeName(context.Background(), tt.userID, tt.currentPassword, tt.newName)

			if tt.wantValidation {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				if seeded.Name != "Ann Smith" {
					t.Errorf("name mutated on failed change: %q", seeded.Name)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seeded.Name != tt.newName {
				t.Errorf("expected name %q, got %q", tt.newName, seeded.Name)
			}
		})
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	tests := []struct {
		name            string
		userID          int64
		currentPassword string
		newPassword     string
		wantErr         error
		wantValidation  bool
	}{
		{
			name:            "success",
			userID:          1,
			currentPassword: "secret-pass",
			newPassword:     "brand-new-pass",
		},
		{
			name:            "wrong current password",
			userID:          1,
			currentPassword: "wrong-pass",
			newPassword:     "brand-new-pass",
			wantErr:         ErrInvalidCredentials,
		},
		{
			name:            "unknown user",
			userID:          99,
			currentPassword: "secret-pass",
			newPassword:     "brand-new-pass",
			wantErr:         ErrUserNotFound,
		},
		{
			name:            "new password too short",
			userID:          1,
			currentPassword: "secret-pass",
			newPassword:     "short",
			wantValidation:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			hasher := testHasher(t)
			seeded := repo.addUser(t, hasher, "Ann Smith", "ann", "secret-pass")
			oldHash := seeded.PasswordHash
			svc := NewAccountService(repo, hasher, zerolog.Nop())

			err := svc.ChangePassword(context.Background(), tt.userID, tt.currentPassword, tt.newPassword)

			if tt.wantValidation {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if seeded.PasswordHash != oldHash {
					t.Error("stored hash mutated on validation failure")
				}
				return
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				if seeded.PasswordHash != oldHash {
					t.Error("stored hash mutated on failed change")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seeded.PasswordHash == oldHash {
				t.Error("expected a new stored hash")
			}
			if err := hasher.Verify(tt.newPassword, seeded.PasswordHash); err != nil {
				t.Errorf("new password does not verify against stored hash: %v", err)
			}
			if err := hasher.Verify(tt.currentPassword, seeded.PasswordHash); err == nil {
				t.Error("old password still verifies after change")
			}
		})
	}
}
