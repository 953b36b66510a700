package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentialsInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, auth.ValidateCredentialsInput("bob@test.com", "pass1234"))
	})

	t.Run("missing email", func(t *testing.T) {
		err := auth.ValidateCredentialsInput("  ", "pass1234")
		require.Error(t, err)
		require.Contains(t, err.Error(), "email is required")
	})

	t.Run("malformed email", func(t *testing.T) {
		for _, email := range []string{"bob", "bob@", "@test.com", "bob @test.com"} {
			err := auth.ValidateCredentialsInput(email, "pass1234")
			require.Error(t, err, email)
			require.Contains(t, err.Error(), "invalid email format", email)
		}
	})

	t.Run("surrounding whitespace is not a format error", func(t *testing.T) {
		require.NoError(t, auth.ValidateCredentialsInput(" bob@test.com ", "pass1234"))
	})

	t.Run("missing password", func(t *testing.T) {
		err := auth.ValidateCredentialsInput("bob@test.com", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "password is required")
	})
}

func TestValidateRedirectURI(t *testing.T) {
	t.Run("valid https URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("https://example.com/api/auth/callback/github"))
	})

	t.Run("valid http URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("http://localhost:3000/api/auth/callback/google"))
	})

	t.Run("empty URI", func(t *testing.T) {
		err := auth.ValidateRedirectURI("")
		require.Error(t, err)
		require.Contains(t, err.Error(), "redirect_uri is required")
	})

	t.Run("invalid scheme", func(t *testing.T) {
		err := auth.ValidateRedirectURI("ftp://example.com/callback")
		require.Error(t, err)
		require.Contains(t, err.Error(), "must use http or https")
	})

	t.Run("URI with fragment", func(t *testing.T) {
		err := auth.ValidateRedirectURI("https://example.com/callback#fragment")
		require.Error(t, err)
		require.Contains(t, err.Error(), "must not contain fragments")
	})
}

func TestValidateState(t *testing.T) {
	t.Run("valid state", func(t *testing.T) {
		require.NoError(t, auth.ValidateState("random-state-1234567890"))
	})

	t.Run("empty state", func(t *testing.T) {
		err := auth.ValidateState("")
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("state too short", func(t *testing.T) {
		err := auth.ValidateState("short")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 16 characters")
	})

	t.Run("state with whitespace", func(t *testing.T) {
		err := auth.ValidateState("random state 1234567890")
		require.Error(t, err)
		require.Contains(t, err.Error(), "whitespace")
	})
}

func TestSafeCallbackURL(t *testing.T) {
	const base = "https://bookings.example.com"

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"empty", "", "/"},
		{"relative path", "/bookings?view=week", "/bookings?view=week"},
		{"protocol relative", "//evil.example.com/", "/"},
		{"backslash trick", "/\\evil.example.com", "/"},
		{"same origin", "https://bookings.example.com/profile", "https://bookings.example.com/profile"},
		{"other origin", "https://evil.example.com/profile", "/"},
		{"scheme downgrade", "http://bookings.example.com/profile", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, auth.SafeCallbackURL(base, tt.target))
		})
	}
}
