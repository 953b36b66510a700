package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrsteele09/go-booking-server/accounts"
	fakeaccountrepo "github.com/jrsteele09/go-booking-server/accounts/repofake"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"github.com/jrsteele09/go-booking-server/users"
	fakeuserrepo "github.com/jrsteele09/go-booking-server/users/repofake"
	"github.com/stretchr/testify/require"
)

func githubSignIn(email, id string) auth.ExternalSignIn {
	return auth.ExternalSignIn{
		User: auth.ExternalUser{Email: email, Name: "Alice", Image: "https://avatars.example.com/a.png"},
		Account: auth.ExternalAccount{
			Provider:          "github",
			ProviderAccountID: id,
			Type:              accounts.AccountTypeOAuth,
			AccessToken:       utils.Ptr("gho_access"),
		},
	}
}

func newLinker(t *testing.T) (*auth.Linker, *fakeuserrepo.FakeUserRepo, *fakeaccountrepo.FakeAccountRepo) {
	t.Helper()
	ur := fakeuserrepo.NewFakeUserRepo()
	ar := fakeaccountrepo.NewFakeAccountRepo()
	linker, err := auth.NewLinker(ur, ar)
	require.NoError(t, err)
	return linker, ur, ar
}

func TestNewLinker_RequiresRepos(t *testing.T) {
	_, err := auth.NewLinker(nil, fakeaccountrepo.NewFakeAccountRepo())
	require.Error(t, err)
	_, err = auth.NewLinker(fakeuserrepo.NewFakeUserRepo(), nil)
	require.Error(t, err)
}

func TestLinkOrCreate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	linker, ur, ar := newLinker(t)

	require.True(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))
	require.True(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))

	require.Equal(t, 1, ur.Count())
	require.Equal(t, 1, ar.Count())

	u, err := ur.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Empty(t, u.PasswordHash)
	require.Nil(t, u.EmailVerified)
	require.Equal(t, users.RoleUser, u.Role)
	require.Equal(t, "Alice", u.Name)

	linked, err := ar.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	require.Equal(t, "gho_access", linked[0].AccessToken)
	require.Equal(t, "", linked[0].RefreshToken)
}

func TestLinkOrCreate_ConcurrentFirstSignIn(t *testing.T) {
	ctx := context.Background()
	linker, ur, ar := newLinker(t)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123"))
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		require.True(t, ok)
	}
	require.Equal(t, 1, ur.Count())
	require.Equal(t, 1, ar.Count())
}

func TestLinkOrCreate_MissingEmail(t *testing.T) {
	ctx := context.Background()
	linker, ur, ar := newLinker(t)

	for _, email := range []string{"", "   "} {
		require.False(t, linker.LinkOrCreate(ctx, githubSignIn(email, "123")))
	}
	require.Equal(t, 0, ur.Count())
	require.Equal(t, 0, ar.Count())
}

func TestLinkOrCreate_ExistingUserGetsAccount(t *testing.T) {
	ctx := context.Background()
	linker, ur, ar := newLinker(t)

	existing := &users.User{Email: "a@x.com", Name: "Alice", PasswordHash: "hash", Role: users.RoleAdmin}
	require.NoError(t, ur.Create(ctx, existing))

	require.True(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))
	require.Equal(t, 1, ur.Count())
	require.Equal(t, 1, ar.Count())

	account, err := ar.GetByProvider(ctx, "github", "123")
	require.NoError(t, err)
	require.Equal(t, existing.ID, account.UserID)

	// Second provider for the same email links to the same user.
	google := githubSignIn("a@x.com", "g-999")
	google.Account.Provider = "google"
	google.Account.Type = accounts.AccountTypeOIDC
	require.True(t, linker.LinkOrCreate(ctx, google))
	require.Equal(t, 1, ur.Count())
	require.Equal(t, 2, ar.Count())
}

func TestLinkOrCreate_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	linker, ur, ar := newLinker(t)

	ar.FailWith = errors.New("timeout")
	require.False(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))
	require.Equal(t, 0, ur.Count())

	ar.FailWith = nil
	ur.FailWith = errors.New("timeout")
	require.False(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))
	require.Equal(t, 0, ar.Count())
}

func TestOnExternalSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the linked user", func(t *testing.T) {
		f := setupTestFixture(t)

		identity, ok := f.service.OnExternalSignIn(ctx, githubSignIn("a@x.com", "123"))
		require.True(t, ok)
		require.NotEmpty(t, identity.ID)
		require.Equal(t, users.RoleUser, identity.Role)
		require.Equal(t, "a@x.com", identity.Email)

		again, ok := f.service.OnExternalSignIn(ctx, githubSignIn("a@x.com", "123"))
		require.True(t, ok)
		require.Equal(t, identity.ID, again.ID)
	})

	t.Run("account owner wins when the provider email changes", func(t *testing.T) {
		f := setupTestFixture(t)

		first, ok := f.service.OnExternalSignIn(ctx, githubSignIn("a@x.com", "123"))
		require.True(t, ok)

		moved, ok := f.service.OnExternalSignIn(ctx, githubSignIn("a@new.com", "123"))
		require.True(t, ok)
		require.Equal(t, first.ID, moved.ID)
		require.Equal(t, 1, f.userRepo.Count())
	})

	t.Run("denied without email", func(t *testing.T) {
		f := setupTestFixture(t)
		_, ok := f.service.OnExternalSignIn(ctx, githubSignIn("", "123"))
		require.False(t, ok)
	})

	t.Run("stored role is carried", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, "a@x.com", "", users.RoleAdmin)

		identity, ok := f.service.OnExternalSignIn(ctx, githubSignIn("a@x.com", "123"))
		require.True(t, ok)
		require.Equal(t, users.RoleAdmin, identity.Role)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	linker, _, _ := newLinker(t)

	require.True(t, linker.LinkOrCreate(ctx, githubSignIn("a@x.com", "123")))

	identity, err := linker.Resolve(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", identity.Email)

	_, err = linker.Resolve(ctx, "missing@x.com")
	require.Error(t, err)
}
