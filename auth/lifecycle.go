package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-booking-server/accounts"
	"github.com/jrsteele09/go-booking-server/users"
)

// Lifecycle is the set of hooks invoked across a session's life: sign-in by
// either method, token issue and update, and each session read.
type Lifecycle interface {
	OnCredentialAttempt(ctx context.Context, email, password string) (Identity, error)
	OnExternalSignIn(ctx context.Context, in ExternalSignIn) (Identity, bool)
	OnTokenIssue(token Claims, identity *Identity) Claims
	OnTokenUpdate(token Claims, patch ClaimsPatch) (Claims, error)
	OnSessionRead(base SessionView, token *Claims) SessionView
}

var _ Lifecycle = (*Service)(nil)

// Service is the Lifecycle backed by the user and account stores.
type Service struct {
	verifier *Verifier
	linker   *Linker
	composer Composer
}

func NewService(userRepo users.UserRepo, accountRepo accounts.Repo, options ...LinkerOption) (*Service, error) {
	verifier, err := NewVerifier(userRepo)
	if err != nil {
		return nil, fmt.Errorf("[NewService] %w", err)
	}
	linker, err := NewLinker(userRepo, accountRepo, options...)
	if err != nil {
		return nil, fmt.Errorf("[NewService] %w", err)
	}
	return &Service{verifier: verifier, linker: linker}, nil
}

func (s *Service) OnCredentialAttempt(ctx context.Context, email, password string) (Identity, error) {
	return s.verifier.Verify(ctx, email, password)
}

// OnExternalSignIn links or creates the local user and returns its identity.
// The bool is false when the sign-in must be denied.
func (s *Service) OnExternalSignIn(ctx context.Context, in ExternalSignIn) (Identity, bool) {
	user, err := s.linker.link(ctx, in)
	if err != nil {
		logLinkFailure(err, in)
		return Identity{}, false
	}
	return IdentityFromUser(user), true
}

func (s *Service) OnTokenIssue(token Claims, identity *Identity) Claims {
	return s.composer.OnTokenIssue(token, identity)
}

// OnTokenUpdate applies a client patch to an authenticated token. Updating an
// anonymous token is an invalid transition.
func (s *Service) OnTokenUpdate(token Claims, patch ClaimsPatch) (Claims, error) {
	if _, err := Transition(StateOf(&token), EventUpdate); err != nil {
		return token, fmt.Errorf("[OnTokenUpdate] %w", err)
	}
	return s.composer.OnTokenUpdate(token, patch), nil
}

func (s *Service) OnSessionRead(base SessionView, token *Claims) SessionView {
	return s.composer.OnSessionRead(base, token)
}

// IsDenied reports whether err is a credential denial as opposed to a bug.
func IsDenied(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
