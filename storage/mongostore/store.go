package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	userCollection    = "users"
	accountCollection = "accounts"
	bookingCollection = "bookings"
)

const connectTimeout = 10 * time.Second

// Connect opens a client and verifies it with a ping against the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("[mongostore Connect] %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("[mongostore Connect] ping: %w", err)
	}

	log.Info().Msg("connected to mongodb")
	return client, nil
}

// Repos bundles every repository backed by one database.
type Repos struct {
	Users    *UserRepo
	Accounts *AccountRepo
	Bookings *BookingRepo
}

// NewRepos creates the repositories and their indexes.
func NewRepos(ctx context.Context, db *mongo.Database) (*Repos, error) {
	users, err := NewUserRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	accounts, err := NewAccountRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	bookings, err := NewBookingRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Repos{Users: users, Accounts: accounts, Bookings: bookings}, nil
}

// mapError turns driver errors into the errors the domain repos promise.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", apperrors.ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
}
