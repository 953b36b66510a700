package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-booking-server/accounts"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultGitHubAPIURL = "https://api.github.com"

type GitHubOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overridable for tests
	Endpoint   oauth2.Endpoint
	APIBaseURL string
}

// GitHubProvider signs users in with GitHub OAuth apps. GitHub issues no ID
// token, so the profile comes from the REST API and the nonce is unused.
type GitHubProvider struct {
	oauth2Config *oauth2.Config
	apiBaseURL   string
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func NewGitHubProvider(opts GitHubOptions) *GitHubProvider {
	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = github.Endpoint
	}
	apiBaseURL := opts.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultGitHubAPIURL
	}
	return &GitHubProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
	}
}

func (p *GitHubProvider) Name() string {
	return GitHub
}

func (p *GitHubProvider) AuthCodeURL(state, verifier, _ string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (p *GitHubProvider) Exchange(ctx context.Context, code, verifier, _ string) (auth.ExternalSignIn, error) {
	tok, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return auth.ExternalSignIn{}, fmt.Errorf("[GitHub Exchange] token exchange failed: %w", err)
	}
	client := p.oauth2Config.Client(ctx, tok)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return auth.ExternalSignIn{}, fmt.Errorf("[GitHub Exchange] %w", err)
	}
	if user.ID == 0 {
		return auth.ExternalSignIn{}, fmt.Errorf("[GitHub Exchange] profile has no id")
	}

	email := user.Email
	if email == "" {
		// Private email addresses only appear on /user/emails.
		var emails []githubEmail
		if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return auth.ExternalSignIn{}, fmt.Errorf("[GitHub Exchange] %w", err)
		}
		email = primaryVerifiedEmail(emails)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	in := auth.ExternalSignIn{
		User: auth.ExternalUser{
			Email: email,
			Name:  name,
			Image: user.AvatarURL,
		},
		Account: auth.ExternalAccount{
			Provider:          GitHub,
			ProviderAccountID: strconv.FormatInt(user.ID, 10),
			Type:              accounts.AccountTypeOAuth,
			AccessToken:       utils.PtrIfSet(tok.AccessToken),
			RefreshToken:      utils.PtrIfSet(tok.RefreshToken),
		},
	}
	return in, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func primaryVerifiedEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
