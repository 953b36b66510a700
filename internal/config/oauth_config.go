package config

import "time"

type OAuthConfig interface {
	GetGitHubClientID() string
	GetGitHubClientSecret() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleIssuer() string
	GetAuthFlowTimeout() time.Duration
}

// OAuth holds the upstream identity provider credentials. A provider is only
// enabled when both its client id and secret are set.
type OAuth struct {
	GitHubClientID     string        `env:"GITHUB_ID"`
	GitHubClientSecret string        `env:"GITHUB_SECRET"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleIssuer       string        `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`
	AuthFlowTimeout    time.Duration `env:"OAUTH_FLOW_TIMEOUT" envDefault:"10m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGitHubClientID() string {
	return o.GitHubClientID
}

func (o OAuth) GetGitHubClientSecret() string {
	return o.GitHubClientSecret
}

func (o OAuth) GetGoogleClientID() string {
	return o.GoogleClientID
}

func (o OAuth) GetGoogleClientSecret() string {
	return o.GoogleClientSecret
}

func (o OAuth) GetGoogleIssuer() string {
	return o.GoogleIssuer
}

// GetAuthFlowTimeout is how long an OAuth state/PKCE verifier stays valid
// between the sign-in redirect and the provider callback.
func (o OAuth) GetAuthFlowTimeout() time.Duration {
	return o.AuthFlowTimeout
}
