package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/accounts"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/bookings"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"github.com/jrsteele09/go-booking-server/storage/mongostore"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/stretchr/testify/require"
)

// Set MONGODB_TEST_URI to run these against a real server. Each test gets a
// throwaway database.
func setupRepos(t *testing.T) *mongostore.Repos {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := mongostore.Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("booking_test_" + uuid.New().String()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repos, err := mongostore.NewRepos(ctx, db)
	require.NoError(t, err)
	return repos
}

func TestUserRepo(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	u := &users.User{Email: "a@x.com", Name: "Alice", Role: users.RoleUser}
	require.NoError(t, repos.Users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	err := repos.Users.Create(ctx, &users.User{Email: "a@x.com"})
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	got, err := repos.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Nil(t, got.EmailVerified)

	_, err = repos.Users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repos.Users.Create(ctx, &users.User{Email: "b@x.com"}))
	_, err = repos.Users.UpdateEmail(ctx, u.ID, "b@x.com")
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	updated, err := repos.Users.UpdateEmail(ctx, u.ID, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", updated.Email)

	list, err := repos.Users.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestAccountRepo(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	a := &accounts.Account{UserID: "u1", Provider: "github", ProviderAccountID: "123", Type: accounts.AccountTypeOAuth}
	require.NoError(t, repos.Accounts.Create(ctx, a))

	err := repos.Accounts.Create(ctx, &accounts.Account{UserID: "u2", Provider: "github", ProviderAccountID: "123"})
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	got, err := repos.Accounts.GetByProvider(ctx, "github", "123")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)

	_, err = repos.Accounts.GetByProvider(ctx, "google", "123")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBookingRepo_OrderedByDate(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{day.AddDate(0, 0, 2), day, day.AddDate(0, 0, 1)} {
		require.NoError(t, repos.Bookings.Create(ctx, &bookings.Booking{UserID: "u1", Activity: "Yoga", Date: d}))
	}
	require.NoError(t, repos.Bookings.Create(ctx, &bookings.Booking{UserID: "u2", Activity: "Gym", Date: day}))

	list, err := repos.Bookings.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.True(t, list[0].Date.Equal(day))
	require.True(t, list[2].Date.Equal(day.AddDate(0, 0, 2)))
}

func TestLinker_AgainstMongo(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	linker, err := auth.NewLinker(repos.Users, repos.Accounts)
	require.NoError(t, err)

	in := auth.ExternalSignIn{
		User: auth.ExternalUser{Email: "a@x.com", Name: "Alice"},
		Account: auth.ExternalAccount{
			Provider:          "github",
			ProviderAccountID: "123",
			AccessToken:       utils.Ptr("gho_access"),
		},
	}
	require.True(t, linker.LinkOrCreate(ctx, in))
	require.True(t, linker.LinkOrCreate(ctx, in))

	list, err := repos.Users.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	linked, err := repos.Accounts.ListByUser(ctx, list[0].ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
}
