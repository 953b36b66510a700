package fakebookingrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/bookings"
)

var _ bookings.Repo = (*FakeBookingRepo)(nil)

type FakeBookingRepo struct {
	lock     sync.RWMutex
	bookings map[string]bookings.Booking

	// FailWith, when set, is returned from every call.
	FailWith error
}

func NewFakeBookingRepo() *FakeBookingRepo {
	return &FakeBookingRepo{
		bookings: make(map[string]bookings.Booking),
	}
}

func (r *FakeBookingRepo) Create(_ context.Context, booking *bookings.Booking) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *FakeBookingRepo) ListByUser(_ context.Context, userID string) ([]*bookings.Booking, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*bookings.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID {
			booking := b
			list = append(list, &booking)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Date.Before(list[j].Date)
	})
	return list, nil
}
