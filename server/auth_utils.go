package server

import (
	"net/http"

	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/rs/zerolog/log"
)

// authFlowCookieName binds an OAuth state to the browser that started the flow.
const authFlowCookieName = "auth_flow_state"

// issueSession signs claims and sets the session cookie.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, claims auth.Claims) error {
	raw, expires, err := s.codec.Encode(claims)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    raw,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.codec.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setAuthFlowCookie(w http.ResponseWriter, r *http.Request, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authFlowCookieName,
		Value:    state,
		Path:     "/api/auth/callback",
		MaxAge:   int(s.config.GetAuthFlowTimeout().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearAuthFlowCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authFlowCookieName,
		Value:    "",
		Path:     "/api/auth/callback",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionView projects the request's claims through the lifecycle. The base
// carries the profile fields a default session exposes.
func (s *Server) sessionView(claims *auth.Claims) auth.SessionView {
	if claims == nil {
		return s.lifecycle.OnSessionRead(auth.SessionView{}, nil)
	}
	base := auth.SessionView{User: &auth.SessionUser{
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Image,
	}}
	return s.lifecycle.OnSessionRead(base, claims)
}

// transition applies ev to the request's session state, logging rejected moves.
func transition(claims *auth.Claims, ev auth.SessionEvent) error {
	from := auth.StateOf(claims)
	to, err := auth.Transition(from, ev)
	if err != nil {
		log.Warn().Err(err).Msg("rejected session transition")
		return err
	}
	log.Debug().Str("from", from.String()).Str("to", to.String()).Str("event", string(ev)).Msg("session transition")
	return nil
}
