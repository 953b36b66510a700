package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-booking-server/accounts"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/internal/utils"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ExternalUser is the profile an identity provider reports for a sign-in.
type ExternalUser struct {
	Email string
	Name  string
	Image string
}

// ExternalAccount identifies the provider account behind a sign-in. Tokens are
// optional.
type ExternalAccount struct {
	Provider          string
	ProviderAccountID string
	Type              accounts.AccountType
	AccessToken       *string
	RefreshToken      *string
}

type ExternalSignIn struct {
	User    ExternalUser
	Account ExternalAccount
}

// Linker maps external sign-ins onto local users, creating the user and the
// account link on first sign-in.
type Linker struct {
	users    users.UserRepo
	accounts accounts.Repo
	now      func() time.Time
}

type LinkerOption func(*Linker)

func WithLinkerNowTime(now func() time.Time) LinkerOption {
	return func(l *Linker) {
		l.now = now
	}
}

func NewLinker(userRepo users.UserRepo, accountRepo accounts.Repo, options ...LinkerOption) (*Linker, error) {
	if userRepo == nil {
		return nil, errors.New("[NewLinker] user repo is required")
	}
	if accountRepo == nil {
		return nil, errors.New("[NewLinker] account repo is required")
	}
	l := &Linker{
		users:    userRepo,
		accounts: accountRepo,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l, nil
}

// LinkOrCreate reports whether the sign-in may proceed. Failures are logged,
// never returned.
func (l *Linker) LinkOrCreate(ctx context.Context, in ExternalSignIn) bool {
	if _, err := l.link(ctx, in); err != nil {
		logLinkFailure(err, in)
		return false
	}
	return true
}

func logLinkFailure(err error, in ExternalSignIn) {
	log.Err(err).
		Str("provider", in.Account.Provider).
		Str("provider_account_id", in.Account.ProviderAccountID).
		Msg("external sign-in denied")
}

// Resolve returns the identity of the user owning email.
func (l *Linker) Resolve(ctx context.Context, email string) (Identity, error) {
	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return Identity{}, fmt.Errorf("[Resolve] %s: %w", email, err)
	}
	return IdentityFromUser(user), nil
}

// link runs the sign-in and returns the user the provider account belongs to.
func (l *Linker) link(ctx context.Context, in ExternalSignIn) (*users.User, error) {
	email := strings.TrimSpace(in.User.Email)
	if email == "" {
		return nil, fmt.Errorf("[link] %w", ErrMissingExternalEmail)
	}
	if in.Account.Provider == "" || in.Account.ProviderAccountID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[link] provider and provider account id are required")
	}

	var (
		account *accounts.Account
		user    *users.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := l.accounts.GetByProvider(gctx, in.Account.Provider, in.Account.ProviderAccountID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("account lookup: %w: %w", ErrPersistence, err)
		}
		account = a
		return nil
	})
	g.Go(func() error {
		u, err := l.users.GetByEmail(gctx, email)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("user lookup: %w: %w", ErrPersistence, err)
		}
		user = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("[link] %w", err)
	}

	if account != nil {
		// Returning sign-in. The link decides ownership even if the provider
		// now reports a different email.
		if user != nil && user.ID == account.UserID {
			return user, nil
		}
		owner, err := l.users.GetByID(ctx, account.UserID)
		if err != nil {
			return nil, fmt.Errorf("[link] account %s/%s owner %s: %w: %w",
				account.Provider, account.ProviderAccountID, account.UserID, ErrPersistence, err)
		}
		return owner, nil
	}

	if user == nil {
		created, err := l.createUser(ctx, email, in.User)
		if err != nil {
			return nil, err
		}
		user = created
	}

	if err := l.linkAccount(ctx, user.ID, in.Account); err != nil {
		return nil, err
	}
	return user, nil
}

func (l *Linker) createUser(ctx context.Context, email string, profile ExternalUser) (*users.User, error) {
	now := l.now().UTC()
	user := &users.User{
		Email:     email,
		Name:      profile.Name,
		Image:     profile.Image,
		Role:      users.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := l.users.Create(ctx, user)
	if err == nil {
		log.Info().Str("user_id", user.ID).Msg("created user from external sign-in")
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrAlreadyExists) {
		return nil, fmt.Errorf("[createUser] %w: %w", ErrPersistence, err)
	}

	// Lost a race with a concurrent first sign-in for the same email.
	existing, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[createUser] reload %s: %w: %w", email, ErrPersistence, err)
	}
	return existing, nil
}

func (l *Linker) linkAccount(ctx context.Context, userID string, ext ExternalAccount) error {
	accountType := ext.Type
	if accountType == "" {
		accountType = accounts.AccountTypeOAuth
	}
	account := &accounts.Account{
		UserID:            userID,
		Provider:          ext.Provider,
		ProviderAccountID: ext.ProviderAccountID,
		Type:              accountType,
		AccessToken:       utils.Value(ext.AccessToken),
		RefreshToken:      utils.Value(ext.RefreshToken),
		CreatedAt:         l.now().UTC(),
	}
	err := l.accounts.Create(ctx, account)
	if err == nil || apperrors.Is(err, apperrors.ErrAlreadyExists) {
		return nil
	}
	return fmt.Errorf("[linkAccount] %s/%s: %w: %w", ext.Provider, ext.ProviderAccountID, ErrPersistence, err)
}
