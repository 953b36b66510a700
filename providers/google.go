package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-booking-server/accounts"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"golang.org/x/oauth2"
)

const defaultGoogleIssuer = "https://accounts.google.com"

type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Issuer       string
}

// GoogleProvider signs users in with Google's OpenID Connect endpoint. The
// profile is taken from the verified ID token.
type GoogleProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Nonce         string `json:"nonce"`
}

// NewGoogleProvider runs OIDC discovery against the issuer.
func NewGoogleProvider(ctx context.Context, opts GoogleOptions) (*GoogleProvider, error) {
	issuer := opts.Issuer
	if issuer == "" {
		issuer = defaultGoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[NewGoogleProvider] failed to create OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: opts.ClientID})
	return NewGoogleProviderWithVerifier(opts, provider.Endpoint(), verifier), nil
}

// NewGoogleProviderWithVerifier skips discovery, for tests and pinned configs.
func NewGoogleProviderWithVerifier(opts GoogleOptions, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: verifier,
	}
}

func (p *GoogleProvider) Name() string {
	return Google
}

func (p *GoogleProvider) AuthCodeURL(state, verifier, nonce string) string {
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oidc.Nonce(nonce),
	)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code, verifier, nonce string) (auth.ExternalSignIn, error) {
	tok, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return auth.ExternalSignIn{}, fmt.Errorf("[Google Exchange] token exchange failed: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return auth.ExternalSignIn{}, errors.New("[Google Exchange] no id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return auth.ExternalSignIn{}, fmt.Errorf("[Google Exchange] id token verification failed: %w", err)
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return auth.ExternalSignIn{}, fmt.Errorf("[Google Exchange] failed to extract claims: %w", err)
	}
	if claims.Nonce != nonce {
		return auth.ExternalSignIn{}, errors.New("[Google Exchange] invalid nonce")
	}

	email := claims.Email
	if !claims.EmailVerified {
		// Unverified addresses must not be used to join onto an existing user.
		email = ""
	}

	in := auth.ExternalSignIn{
		User: auth.ExternalUser{
			Email: email,
			Name:  claims.Name,
			Image: claims.Picture,
		},
		Account: auth.ExternalAccount{
			Provider:          Google,
			ProviderAccountID: idToken.Subject,
			Type:              accounts.AccountTypeOIDC,
			AccessToken:       utils.PtrIfSet(tok.AccessToken),
			RefreshToken:      utils.PtrIfSet(tok.RefreshToken),
		},
	}
	return in, nil
}
