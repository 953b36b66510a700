package users

import "context"

// UserRepo stores user records. Implementations must enforce a unique email:
// Create returns errors.ErrAlreadyExists for a duplicate and lookups return
// errors.ErrNotFound when nothing matches.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	UpdateEmail(ctx context.Context, id, email string) (*User, error)
}
