package config

import "time"

const devSessionSecret = "dev-insecure-session-secret-change-me"

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetPasswordHashCost() int
	GetEnableRateLimiting() bool
	GetAuthRatePerMinute() int
	GetAuthRateBurst() int
	GetSystemAdminEmail() string
	GetSystemAdminPassword() string
}

type Security struct {
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"session-token"`
	MaxSessionAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	PasswordHashCost    int           `env:"BCRYPT_COST" envDefault:"10"`
	EnableRateLimiting  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	AuthRatePerMinute   int           `env:"AUTH_RATE_PER_MINUTE" envDefault:"10"`
	AuthRateBurst       int           `env:"AUTH_RATE_BURST" envDefault:"5"`
	SystemAdminEmail    string        `env:"ADMIN_EMAIL"`
	SystemAdminPassword string        `env:"ADMIN_PASSWORD"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSessionSecret() string {
	return s.SessionSecret
}

func (s Security) GetSessionCookieName() string {
	return s.SessionCookieName
}

// GetMaxSessionAge is the validity window of a signed session token (30 days by default).
func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}

func (s Security) GetPasswordHashCost() int {
	return s.PasswordHashCost
}

func (s Security) GetEnableRateLimiting() bool {
	return s.EnableRateLimiting
}

func (s Security) GetAuthRatePerMinute() int {
	return s.AuthRatePerMinute
}

func (s Security) GetAuthRateBurst() int {
	return s.AuthRateBurst
}

// GetSystemAdminEmail is the administrator seeded at startup. Empty disables seeding.
func (s Security) GetSystemAdminEmail() string {
	return s.SystemAdminEmail
}

// GetSystemAdminPassword is the seeded administrator's initial password. When
// empty a random password is generated and logged once.
func (s Security) GetSystemAdminPassword() string {
	return s.SystemAdminPassword
}
