package authflowrepo

import (
	"errors"
	"sync"
	"time"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// States expire ttl after CreatedAt.
type InMemoryRepo struct {
	mu      sync.Mutex
	states  map[string]AuthFlowState
	ttl     time.Duration
	nowFunc func() time.Time
}

type Option func(*InMemoryRepo)

func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowFunc = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo(ttl time.Duration, options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		states:  make(map[string]AuthFlowState),
		ttl:     ttl,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Upsert stores or updates an auth flow state
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *authState
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.nowFunc()
	}
	r.states[state] = stored
	return nil
}

func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	delete(r.states, state)

	if r.expired(authState) {
		return nil, ErrStateExpired
	}
	return &authState, nil
}

func (r *InMemoryRepo) DeleteExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.states {
		if r.expired(s) {
			delete(r.states, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored states, expired ones included.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *InMemoryRepo) expired(s AuthFlowState) bool {
	return r.ttl > 0 && r.nowFunc().Sub(s.CreatedAt) > r.ttl
}
