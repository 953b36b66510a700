package fakeaccountrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/accounts"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

type providerKey struct {
	provider          string
	providerAccountID string
}

type FakeAccountRepo struct {
	lock     sync.RWMutex
	accounts map[providerKey]accounts.Account

	// FailWith, when set, is returned from every call.
	FailWith error
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[providerKey]accounts.Account),
	}
}

func (r *FakeAccountRepo) Create(_ context.Context, account *accounts.Account) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	key := providerKey{account.Provider, account.ProviderAccountID}
	if _, ok := r.accounts[key]; ok {
		return apperrors.ErrAlreadyExists
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	r.accounts[key] = *account
	return nil
}

func (r *FakeAccountRepo) GetByProvider(_ context.Context, provider, providerAccountID string) (*accounts.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	a, ok := r.accounts[providerKey{provider, providerAccountID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (r *FakeAccountRepo) ListByUser(_ context.Context, userID string) ([]*accounts.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*accounts.Account, 0)
	for _, a := range r.accounts {
		if a.UserID == userID {
			acc := a
			list = append(list, &acc)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Provider < list[j].Provider
	})
	return list, nil
}

// Count returns the number of stored accounts.
func (r *FakeAccountRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.accounts)
}
