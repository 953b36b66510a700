package providers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	GitHub = "github"
	Google = "google"
)

// CallbackPath is the provider callback route; the provider name replaces %s.
const CallbackPath = "/api/auth/callback/%s"

var ErrUnknownProvider = errors.New("unknown provider")

// Provider is an upstream identity provider using the authorization code flow.
type Provider interface {
	Name() string
	// AuthCodeURL is where the browser is sent to sign in. verifier is the PKCE
	// code verifier and nonce binds an ID token to this flow where supported.
	AuthCodeURL(state, verifier, nonce string) string
	// Exchange redeems the callback code for the signed-in user's profile and
	// provider account.
	Exchange(ctx context.Context, code, verifier, nonce string) (auth.ExternalSignIn, error)
}

// Registry holds the providers enabled for this deployment.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("[Registry Get] %q: %w", name, ErrUnknownProvider)
	}
	return p, nil
}

// Names returns the enabled provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallbackURL is the absolute redirect URI registered with a provider.
func CallbackURL(baseURL, name string) string {
	return baseURL + fmt.Sprintf(CallbackPath, name)
}

// FromConfig builds a registry containing each provider whose client id and
// secret are both configured. Each provider's callback URL must be an absolute
// http(s) URI.
func FromConfig(ctx context.Context, cfg config.Config) (*Registry, error) {
	var enabled []Provider

	if cfg.GetGitHubClientID() != "" && cfg.GetGitHubClientSecret() != "" {
		redirectURL, err := redirectURLFor(cfg.GetBaseURL(), GitHub)
		if err != nil {
			return nil, fmt.Errorf("[FromConfig] %w", err)
		}
		enabled = append(enabled, NewGitHubProvider(GitHubOptions{
			ClientID:     cfg.GetGitHubClientID(),
			ClientSecret: cfg.GetGitHubClientSecret(),
			RedirectURL:  redirectURL,
		}))
	}

	if cfg.GetGoogleClientID() != "" && cfg.GetGoogleClientSecret() != "" {
		redirectURL, err := redirectURLFor(cfg.GetBaseURL(), Google)
		if err != nil {
			return nil, fmt.Errorf("[FromConfig] %w", err)
		}
		google, err := NewGoogleProvider(ctx, GoogleOptions{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  redirectURL,
			Issuer:       cfg.GetGoogleIssuer(),
		})
		if err != nil {
			return nil, fmt.Errorf("[FromConfig] google: %w", err)
		}
		enabled = append(enabled, google)
	}

	registry := NewRegistry(enabled...)
	log.Info().Strs("providers", registry.Names()).Msg("identity providers enabled")
	return registry, nil
}

func redirectURLFor(baseURL, name string) (string, error) {
	redirectURL := CallbackURL(baseURL, name)
	if err := auth.ValidateRedirectURI(redirectURL); err != nil {
		return "", fmt.Errorf("%s callback %q: %w", name, redirectURL, err)
	}
	return redirectURL, nil
}

// RandomString returns n random bytes base64url encoded, for state, PKCE
// verifiers and nonces.
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[RandomString] %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
