package errors

import (
	"errors"
	"fmt"
)

// Common error types for the booking server
var (
	// Authentication errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoPasswordSet        = errors.New("no password set")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrMissingExternalEmail = errors.New("external identity has no email")

	// Session errors
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidToken      = errors.New("invalid token")
	ErrForbiddenClaim    = errors.New("claim cannot be updated")
	ErrInvalidTransition = errors.New("invalid session transition")

	// Storage errors
	ErrPersistence   = errors.New("persistence failure")
	ErrAlreadyExists = errors.New("already exists")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// PublicError carries a message that is safe to return to API clients.
type PublicError struct {
	Err     error
	Message string
}

func (e *PublicError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *PublicError) Unwrap() error {
	return e.Err
}

// Public attaches a client-facing message to err.
func Public(err error, format string, args ...interface{}) error {
	return &PublicError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the client-facing message in err's chain, if any.
func PublicMessage(err error) (string, bool) {
	var pe *PublicError
	if errors.As(err, &pe) {
		return pe.Message, true
	}
	return "", false
}
