package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/users"
)

// timingHash is compared against when the user does not exist so that unknown
// and known emails take comparable time.
var timingHash = sync.OnceValue(func() string {
	hash, _ := users.HashPassword("timing-equaliser")
	return hash
})

// Verifier checks email/password credentials against the user store.
type Verifier struct {
	users users.UserRepo
}

func NewVerifier(userRepo users.UserRepo) (*Verifier, error) {
	if userRepo == nil {
		return nil, errors.New("[NewVerifier] user repo is required")
	}
	return &Verifier{users: userRepo}, nil
}

// Verify returns the identity for a matching email/password pair. It never
// writes. All failures match ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, email, password string) (Identity, error) {
	if err := ValidateCredentialsInput(email, password); err != nil {
		return Identity{}, fmt.Errorf("[Verify] %w: %w", ErrInvalidCredentials, err)
	}

	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			users.CheckPasswordHash(password, timingHash())
			return Identity{}, fmt.Errorf("[Verify] %w: %w", ErrInvalidCredentials, ErrUserNotFound)
		}
		return Identity{}, fmt.Errorf("[Verify] %w: %w: %w", ErrInvalidCredentials, ErrPersistence, err)
	}

	if !user.HasPassword() {
		return Identity{}, fmt.Errorf("[Verify] %w: %w", ErrInvalidCredentials, ErrNoPasswordSet)
	}

	if !user.CheckPasswordHash(password) {
		return Identity{}, fmt.Errorf("[Verify] %w: %w", ErrInvalidCredentials, ErrInvalidPassword)
	}

	return IdentityFromUser(user), nil
}
