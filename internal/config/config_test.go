package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("ENV", "DEV")
	t.Setenv("SESSION_SECRET", "")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "session-token", c.GetSessionCookieName())
	require.Equal(t, 30*24*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 10, c.GetPasswordHashCost())
	require.NotEmpty(t, c.GetSessionSecret(), "DEV falls back to a development secret")
	require.Equal(t, []string{"http://localhost:3000"}, c.GetAllowedOrigins())
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("BASE_URL", "https://book.example.com/")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("GITHUB_ID", "gh-id")
	t.Setenv("GITHUB_SECRET", "gh-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("ADMIN_EMAIL", "root@example.com")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://book.example.com", c.GetBaseURL())
	require.Equal(t, "s3cret", c.GetSessionSecret())
	require.Equal(t, "gh-id", c.GetGitHubClientID())
	require.Equal(t, "gh-secret", c.GetGitHubClientSecret())
	require.Len(t, c.GetAllowedOrigins(), 2)
	require.Equal(t, "root@example.com", c.GetSystemAdminEmail())
	require.Empty(t, c.GetSystemAdminPassword())
}

func TestNew_SecretRequiredOutsideDev(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("SESSION_SECRET", "")

	_, err := config.New()
	require.Error(t, err)
}
