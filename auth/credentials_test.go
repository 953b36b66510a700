package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/users"
	fakeuserrepo "github.com/jrsteele09/go-booking-server/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_RequiresRepo(t *testing.T) {
	_, err := auth.NewVerifier(nil)
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is denied", func(t *testing.T) {
		f := setupTestFixture(t)
		for _, email := range []string{"nobody@test.com", "BOB@test.com", "bob@test.com "} {
			_, err := f.service.OnCredentialAttempt(ctx, email, testUserPassword)
			require.ErrorIs(t, err, auth.ErrInvalidCredentials, email)
			require.ErrorIs(t, err, auth.ErrUserNotFound, email)
		}
	})

	t.Run("oauth-only user is denied for any password", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, testUserEmail, "", users.RoleUser)

		for _, password := range []string{testUserPassword, "x", "   "} {
			_, err := f.service.OnCredentialAttempt(ctx, testUserEmail, password)
			require.ErrorIs(t, err, auth.ErrInvalidCredentials)
			require.ErrorIs(t, err, auth.ErrNoPasswordSet)
		}
	})

	t.Run("single character difference is denied", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, testUserEmail, testUserPassword, users.RoleUser)

		for _, password := range []string{"pass1235", "Pass1234", "pass123", "pass12345"} {
			_, err := f.service.OnCredentialAttempt(ctx, testUserEmail, password)
			require.ErrorIs(t, err, auth.ErrInvalidPassword, password)
			require.True(t, auth.IsDenied(err))
		}
	})

	t.Run("matching password returns identity", func(t *testing.T) {
		f := setupTestFixture(t)
		u := f.addUser(t, testUserEmail, testUserPassword, users.RoleAdmin)

		identity, err := f.service.OnCredentialAttempt(ctx, testUserEmail, testUserPassword)
		require.NoError(t, err)
		require.Equal(t, u.ID, identity.ID)
		require.Equal(t, users.RoleAdmin, identity.Role)
		require.Equal(t, testUserEmail, identity.Email)
		require.Equal(t, testUserName, identity.Name)
	})

	t.Run("unset role defaults to user", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, testUserEmail, testUserPassword, "")

		identity, err := f.service.OnCredentialAttempt(ctx, testUserEmail, testUserPassword)
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, identity.Role)
	})

	t.Run("no email is special-cased", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, "admin@gmail.com", testUserPassword, users.RoleUser)

		identity, err := f.service.OnCredentialAttempt(ctx, "admin@gmail.com", testUserPassword)
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, identity.Role)
	})

	t.Run("empty input is denied", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.OnCredentialAttempt(ctx, "", testUserPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = f.service.OnCredentialAttempt(ctx, testUserEmail, "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("malformed email is denied before lookup", func(t *testing.T) {
		repo := fakeuserrepo.NewFakeUserRepo()
		repo.FailWith = errors.New("connection refused")
		verifier, err := auth.NewVerifier(repo)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, "not-an-email", testUserPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.NotErrorIs(t, err, auth.ErrPersistence)
		require.Contains(t, err.Error(), "invalid email format")
	})

	t.Run("store failure is a denial", func(t *testing.T) {
		repo := fakeuserrepo.NewFakeUserRepo()
		repo.FailWith = errors.New("connection refused")
		verifier, err := auth.NewVerifier(repo)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, testUserEmail, testUserPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.ErrorIs(t, err, auth.ErrPersistence)
	})
}

func TestVerify_DoesNotWrite(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, testUserEmail, testUserPassword, users.RoleUser)

	_, _ = f.service.OnCredentialAttempt(context.Background(), testUserEmail, "wrong")
	_, _ = f.service.OnCredentialAttempt(context.Background(), "new@test.com", "wrong")
	require.Equal(t, 1, f.userRepo.Count())
	require.Equal(t, 0, f.accountRepo.Count())
}

func TestRegisterThenVerify(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	userService, err := users.NewService(f.userRepo, users.WithHashCost(4))
	require.NoError(t, err)

	_, err = userService.Register(ctx, users.RegisterParams{
		Email:    testUserEmail,
		Password: testUserPassword,
		Name:     testUserName,
	})
	require.NoError(t, err)

	stored, err := f.userRepo.GetByEmail(ctx, testUserEmail)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, testUserPassword, stored.PasswordHash)

	identity, err := f.service.OnCredentialAttempt(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, stored.ID, identity.ID)

	_, err = f.service.OnCredentialAttempt(ctx, testUserEmail, "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
