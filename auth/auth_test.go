package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-server/auth"
	fakeaccountrepo "github.com/jrsteele09/go-booking-server/accounts/repofake"
	"github.com/jrsteele09/go-booking-server/users"
	fakeuserrepo "github.com/jrsteele09/go-booking-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "bob@test.com"
	testUserPassword = "pass1234"
	testUserName     = "Bob"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo    *fakeuserrepo.FakeUserRepo
	accountRepo *fakeaccountrepo.FakeAccountRepo
	service     *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	ar := fakeaccountrepo.NewFakeAccountRepo()
	service, err := auth.NewService(ur, ar, auth.WithLinkerNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	return &testFixture{
		userRepo:    ur,
		accountRepo: ar,
		service:     service,
	}
}

// addUser stores a user. An empty password leaves the hash empty, as for an
// OAuth-only user.
func (f *testFixture) addUser(t *testing.T, email, password string, role users.RoleType) *users.User {
	t.Helper()

	u := &users.User{
		Email: email,
		Name:  testUserName,
		Role:  role,
	}
	if password != "" {
		hash, err := users.HashPasswordWithCost(password, 4)
		require.NoError(t, err)
		u.PasswordHash = hash
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}
