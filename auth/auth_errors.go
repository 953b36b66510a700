package auth

import apperrors "github.com/jrsteele09/go-booking-server/internal/errors"

// Every credential failure also matches ErrInvalidCredentials so callers can
// deny uniformly without learning which check failed.
var (
	ErrInvalidCredentials   = apperrors.ErrInvalidCredentials
	ErrUserNotFound         = apperrors.ErrUserNotFound
	ErrNoPasswordSet        = apperrors.ErrNoPasswordSet
	ErrInvalidPassword      = apperrors.ErrInvalidPassword
	ErrMissingExternalEmail = apperrors.ErrMissingExternalEmail
	ErrPersistence          = apperrors.ErrPersistence
	ErrForbiddenClaim       = apperrors.ErrForbiddenClaim
	ErrInvalidTransition    = apperrors.ErrInvalidTransition
)
