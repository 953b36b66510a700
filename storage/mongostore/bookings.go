package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/bookings"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ bookings.Repo = (*BookingRepo)(nil)

type BookingRepo struct {
	collection *mongo.Collection
}

func NewBookingRepo(ctx context.Context, db *mongo.Database) (*BookingRepo, error) {
	collection := db.Collection(bookingCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("[NewBookingRepo] failed to create booking indexes: %w", err)
	}

	return &BookingRepo{collection: collection}, nil
}

func (r *BookingRepo) Create(ctx context.Context, booking *bookings.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("[BookingRepo Create] %w", mapError(err))
	}
	return nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]*bookings.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("[BookingRepo ListByUser] %w", mapError(err))
	}
	defer cursor.Close(ctx)

	list := make([]*bookings.Booking, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("[BookingRepo ListByUser] %w", mapError(err))
	}
	return list, nil
}
