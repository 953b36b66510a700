package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-booking-server/auth"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified session token claims
	ContextKeyClaims ContextKey = "claims"
)

// SessionMiddleware decodes the session cookie, when present and valid, into
// the request context. Invalid or expired cookies are treated as anonymous.
func (s *Server) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.GetSessionCookieName())
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.codec.Decode(cookie.Value)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring invalid session cookie")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the session claims, or nil for an anonymous request.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return claims
}

// RequireSession rejects anonymous requests with 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.StateOf(ClaimsFromContext(r.Context())) != auth.Authenticated {
			writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		next(w, r)
	}
}

// RequireAdmin allows only users whose stored role is admin. It must be chained
// after RequireSession.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || users.ParseRole(claims.Role) != users.RoleAdmin {
			writeError(w, http.StatusForbidden, apperrors.ErrForbidden.Error())
			return
		}

		// The token role may be stale; the stored record decides.
		user, err := s.userRepo.GetByID(r.Context(), claims.ID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				writeError(w, http.StatusForbidden, apperrors.ErrForbidden.Error())
				return
			}
			log.Err(err).Str("user_id", claims.ID).Msg("admin check failed")
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, apperrors.ErrForbidden.Error())
			return
		}
		next(w, r)
	}
}
