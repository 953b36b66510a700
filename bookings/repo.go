package bookings

import "context"

type Repo interface {
	Create(ctx context.Context, booking *Booking) error
	// ListByUser returns the user's bookings ordered by date, earliest first.
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
}
