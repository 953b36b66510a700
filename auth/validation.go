package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinStateLength is the shortest OAuth state accepted on a provider callback.
const MinStateLength = 16

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCredentialsInput checks the shape of a sign-in form before any lookup.
func ValidateCredentialsInput(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("invalid email format")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateState validates the OAuth state returned on a provider callback.
func ValidateState(state string) error {
	if state == "" {
		return fmt.Errorf("state parameter is required")
	}
	if len(state) < MinStateLength {
		return fmt.Errorf("state parameter should be at least %d characters", MinStateLength)
	}
	if strings.ContainsAny(state, " \t\r\n") {
		return fmt.Errorf("state parameter must not contain whitespace")
	}
	return nil
}

// ValidateRedirectURI validates an absolute http(s) URI such as a provider
// callback.
func ValidateRedirectURI(uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return fmt.Errorf("redirect_uri is required")
	}
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return fmt.Errorf("redirect_uri must use http or https scheme")
	}
	if strings.Contains(uri, "#") {
		return fmt.Errorf("redirect_uri must not contain fragments")
	}
	return nil
}

// SafeCallbackURL returns where to send the browser after sign-in. Relative
// paths and absolute URLs on baseURL's origin are allowed, anything else falls
// back to "/".
func SafeCallbackURL(baseURL, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return "/"
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return target
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "/"
	}
	return u.String()
}
