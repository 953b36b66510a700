package accounts

import "context"

// Repo stores linked accounts. Create returns errors.ErrAlreadyExists when the
// (provider, providerAccountID) pair is taken; GetByProvider returns
// errors.ErrNotFound when nothing is linked.
type Repo interface {
	Create(ctx context.Context, account *Account) error
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*Account, error)
	ListByUser(ctx context.Context, userID string) ([]*Account, error)
}
