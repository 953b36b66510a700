package authflowrepo

import (
	"errors"
	"time"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrStateExpired  = errors.New("state expired")
)

// AuthFlowState is what the server remembers between redirecting a browser to
// an identity provider and receiving its callback.
type AuthFlowState struct {
	Provider     string
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns the state and removes it. A state can be taken once.
	Take(state string) (*AuthFlowState, error)
	// DeleteExpired removes states older than the repo's TTL and returns how many were removed.
	DeleteExpired() int
}
