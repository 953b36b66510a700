package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/stretchr/testify/require"
)

func TestOnTokenIssue(t *testing.T) {
	var composer auth.Composer

	t.Run("sets id and role", func(t *testing.T) {
		token := composer.OnTokenIssue(auth.Claims{}, &auth.Identity{ID: "u1", Role: users.RoleAdmin})
		require.Equal(t, "u1", token.ID)
		require.Equal(t, "admin", token.Role)
		require.Empty(t, token.Email)
		require.Empty(t, token.Name)
		require.Empty(t, token.Image)
	})

	t.Run("no identity leaves token unchanged", func(t *testing.T) {
		in := auth.Claims{ID: "u1", Role: "user", Email: "a@x.com"}
		require.Equal(t, in, composer.OnTokenIssue(in, nil))
	})

	t.Run("copies profile fields", func(t *testing.T) {
		token := composer.OnTokenIssue(auth.Claims{}, &auth.Identity{
			ID: "u1", Role: users.RoleUser, Email: "a@x.com", Name: "Alice",
		})
		require.Equal(t, "a@x.com", token.Email)
		require.Equal(t, "Alice", token.Name)
		require.Equal(t, "u1", token.Subject)
	})
}

func TestOnTokenUpdate(t *testing.T) {
	f := setupTestFixture(t)
	token := auth.Claims{ID: "u1", Role: "admin"}

	t.Run("merges allowed fields", func(t *testing.T) {
		patch, err := auth.DecodeSessionUpdate(strings.NewReader(`{"user":{"email":"new@x.com"}}`))
		require.NoError(t, err)

		updated, err := f.service.OnTokenUpdate(token, patch)
		require.NoError(t, err)
		require.Equal(t, "u1", updated.ID)
		require.Equal(t, "admin", updated.Role)
		require.Equal(t, "new@x.com", updated.Email)
	})

	t.Run("role cannot be patched", func(t *testing.T) {
		_, err := auth.DecodeSessionUpdate(strings.NewReader(`{"user":{"email":"new@x.com","role":"admin"}}`))
		require.ErrorIs(t, err, auth.ErrForbiddenClaim)

		_, err = auth.DecodeSessionUpdate(strings.NewReader(`{"user":{"id":"u2"}}`))
		require.ErrorIs(t, err, auth.ErrForbiddenClaim)

		_, err = auth.DecodeSessionUpdate(strings.NewReader(`{"user":{},"expires":"2099-01-01"}`))
		require.ErrorIs(t, err, auth.ErrForbiddenClaim)
	})

	t.Run("empty body is an empty patch", func(t *testing.T) {
		patch, err := auth.DecodeSessionUpdate(strings.NewReader(``))
		require.NoError(t, err)
		require.True(t, patch.IsEmpty())

		updated, err := f.service.OnTokenUpdate(token, patch)
		require.NoError(t, err)
		require.Equal(t, token, updated)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := auth.DecodeSessionUpdate(strings.NewReader(`{"user":`))
		require.Error(t, err)
		require.NotErrorIs(t, err, auth.ErrForbiddenClaim)
	})

	t.Run("anonymous token cannot be updated", func(t *testing.T) {
		_, err := f.service.OnTokenUpdate(auth.Claims{}, auth.ClaimsPatch{Email: utils.Ptr("new@x.com")})
		require.ErrorIs(t, err, auth.ErrInvalidTransition)
	})
}

func TestOnSessionRead(t *testing.T) {
	var composer auth.Composer

	t.Run("overlays id and role on base", func(t *testing.T) {
		base := auth.SessionView{User: &auth.SessionUser{
			Email: "a@x.com", Name: "Alice", Image: "https://avatars.example.com/a.png",
		}}
		view := composer.OnSessionRead(base, &auth.Claims{ID: "u1", Role: "admin"})

		require.True(t, view.IsAuthenticated())
		require.Equal(t, "u1", view.User.ID)
		require.Equal(t, "admin", view.User.Role)
		require.Equal(t, "a@x.com", view.User.Email)
		require.Equal(t, "Alice", view.User.Name)
		require.Equal(t, "https://avatars.example.com/a.png", view.User.Image)
	})

	t.Run("fills empty base fields from token", func(t *testing.T) {
		expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		view := composer.OnSessionRead(auth.SessionView{}, &auth.Claims{
			ID: "u1", Role: "user", Email: "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
		})
		require.Equal(t, "a@x.com", view.User.Email)
		require.NotNil(t, view.Expires)
		require.True(t, expires.Equal(*view.Expires))
	})

	t.Run("no token is anonymous", func(t *testing.T) {
		view := composer.OnSessionRead(auth.SessionView{User: &auth.SessionUser{Email: "a@x.com"}}, nil)
		require.False(t, view.IsAuthenticated())
		require.Nil(t, view.User)
	})

	t.Run("base is not mutated", func(t *testing.T) {
		base := auth.SessionView{User: &auth.SessionUser{Email: "a@x.com"}}
		_ = composer.OnSessionRead(base, &auth.Claims{ID: "u1", Role: "user"})
		require.Empty(t, base.User.ID)
	})
}
