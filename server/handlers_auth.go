package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-booking-server/auth"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/internal/metrics"
	"github.com/jrsteele09/go-booking-server/providers"
	"github.com/jrsteele09/go-booking-server/server/authflowrepo"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/rs/zerolog/log"
)

const (
	// credentialsMethod labels credential sign-ins in metrics
	credentialsMethod = "credentials"

	flowSecretLength = 32
)

type successResponse struct {
	Success string `json:"success"`
}

type redirectResponse struct {
	URL string `json:"url"`
}

// RegisterHandler creates a credentials user. Fields the form does not know,
// such as a role, are ignored.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params users.RegisterParams
		if err := decodeJSONLenient(w, r, &params); err != nil {
			s.metrics.RecordRegistration(metrics.OutcomeDenied)
			writeServiceError(w, r, err)
			return
		}

		user, err := s.users.Register(r.Context(), params)
		if err != nil {
			outcome := metrics.OutcomeDenied
			if !apperrors.Is(err, apperrors.ErrInvalidRequest) && !apperrors.Is(err, apperrors.ErrAlreadyExists) {
				outcome = metrics.OutcomeError
			}
			s.metrics.RecordRegistration(outcome)
			writeServiceError(w, r, err)
			return
		}

		s.metrics.RecordRegistration(metrics.OutcomeSuccess)
		log.Info().Str("user_id", user.ID).Msg("user registered")
		writeJSON(w, http.StatusCreated, successResponse{Success: "Account created"})
	}
}

// CredentialsCallbackHandler signs in with email and password and sets the
// session cookie. Every failure is reported as "invalid credentials".
func (s *Server) CredentialsCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := readCredentials(w, r)
		if err != nil {
			s.metrics.RecordSignIn(credentialsMethod, metrics.OutcomeDenied)
			writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}

		identity, err := s.lifecycle.OnCredentialAttempt(r.Context(), form.Email, form.Password)
		if err != nil {
			outcome := metrics.OutcomeDenied
			if !auth.IsDenied(err) || apperrors.Is(err, auth.ErrPersistence) {
				outcome = metrics.OutcomeError
				log.Err(err).Msg("credential sign-in failed")
			} else {
				log.Debug().Err(err).Msg("credential sign-in denied")
			}
			s.metrics.RecordSignIn(credentialsMethod, outcome)
			writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}

		// Any session already on the request is replaced.
		if err := transition(nil, auth.EventSignIn); err != nil {
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}
		claims := s.lifecycle.OnTokenIssue(auth.Claims{}, &identity)
		if err := s.issueSession(w, r, claims); err != nil {
			log.Err(err).Msg("failed to issue session")
			s.metrics.RecordSignIn(credentialsMethod, metrics.OutcomeError)
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}

		s.metrics.RecordSignIn(credentialsMethod, metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, redirectResponse{URL: auth.SafeCallbackURL(s.config.GetBaseURL(), form.CallbackURL)})
	}
}

// ProviderSignInHandler starts the authorization code flow with a provider.
func (s *Server) ProviderSignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := s.providers.Get(chi.URLParam(r, "provider"))
		if err != nil {
			writeError(w, http.StatusNotFound, providers.ErrUnknownProvider.Error())
			return
		}

		state, err := providers.RandomString(flowSecretLength)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		verifier, err := providers.RandomString(flowSecretLength)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		nonce, err := providers.RandomString(flowSecretLength)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		err = s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			Provider:     provider.Name(),
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    auth.SafeCallbackURL(s.config.GetBaseURL(), r.URL.Query().Get("callbackUrl")),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		s.setAuthFlowCookie(w, r, state)
		http.Redirect(w, r, provider.AuthCodeURL(state, verifier, nonce), http.StatusFound)
	}
}

// ProviderCallbackHandler completes a provider sign-in, linking or creating
// the local user before issuing the session.
func (s *Server) ProviderCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "provider")
		provider, err := s.providers.Get(name)
		if err != nil {
			writeError(w, http.StatusNotFound, providers.ErrUnknownProvider.Error())
			return
		}

		query := r.URL.Query()
		if upstreamErr := query.Get("error"); upstreamErr != "" {
			log.Warn().Str("provider", name).Str("error", upstreamErr).Msg("provider returned an error")
			s.metrics.RecordSignIn(name, metrics.OutcomeDenied)
			writeError(w, http.StatusUnauthorized, "sign-in was cancelled or denied")
			return
		}

		state := query.Get("state")
		if err := auth.ValidateState(state); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cookie, err := r.Cookie(authFlowCookieName)
		if err != nil || cookie.Value != state {
			writeError(w, http.StatusBadRequest, "state mismatch")
			return
		}
		s.clearAuthFlowCookie(w, r)

		flow, err := s.authState.Take(state)
		if err != nil {
			if errors.Is(err, authflowrepo.ErrStateExpired) {
				writeError(w, http.StatusBadRequest, "sign-in expired, please try again")
				return
			}
			writeError(w, http.StatusBadRequest, "unknown state")
			return
		}
		if flow.Provider != provider.Name() {
			writeError(w, http.StatusBadRequest, "state mismatch")
			return
		}

		code := query.Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		in, err := provider.Exchange(r.Context(), code, flow.CodeVerifier, flow.Nonce)
		if err != nil {
			log.Err(err).Str("provider", name).Msg("provider exchange failed")
			s.metrics.RecordSignIn(name, metrics.OutcomeError)
			writeError(w, http.StatusBadGateway, "failed to complete sign-in")
			return
		}

		identity, ok := s.lifecycle.OnExternalSignIn(r.Context(), in)
		if !ok {
			s.metrics.RecordSignIn(name, metrics.OutcomeDenied)
			writeError(w, http.StatusForbidden, apperrors.ErrForbidden.Error())
			return
		}

		if err := transition(nil, auth.EventSignIn); err != nil {
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}
		claims := s.lifecycle.OnTokenIssue(auth.Claims{}, &identity)
		if err := s.issueSession(w, r, claims); err != nil {
			log.Err(err).Msg("failed to issue session")
			s.metrics.RecordSignIn(name, metrics.OutcomeError)
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}

		s.metrics.RecordSignIn(name, metrics.OutcomeSuccess)
		http.Redirect(w, r, flow.ReturnURL, http.StatusFound)
	}
}

// GetSessionHandler returns the current session, or {} when anonymous.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.sessionView(ClaimsFromContext(r.Context())))
	}
}

// UpdateSessionHandler applies a client profile update to the session token
// and reissues it.
func (s *Server) UpdateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}

		patch, err := auth.DecodeSessionUpdate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			s.metrics.RecordSessionUpdate(metrics.OutcomeDenied)
			if apperrors.Is(err, auth.ErrForbiddenClaim) {
				log.Warn().Err(err).Str("user_id", claims.ID).Msg("session update rejected")
				writeError(w, http.StatusForbidden, auth.ErrForbiddenClaim.Error())
				return
			}
			writeError(w, http.StatusBadRequest, apperrors.ErrInvalidRequest.Error())
			return
		}

		updated, err := s.lifecycle.OnTokenUpdate(*claims, patch)
		if err != nil {
			s.metrics.RecordSessionUpdate(metrics.OutcomeDenied)
			writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		if err := s.issueSession(w, r, updated); err != nil {
			log.Err(err).Msg("failed to reissue session")
			s.metrics.RecordSessionUpdate(metrics.OutcomeError)
			writeError(w, http.StatusInternalServerError, apperrors.ErrInternal.Error())
			return
		}

		s.metrics.RecordSessionUpdate(metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, s.sessionView(&updated))
	}
}

// SignOutHandler clears the session cookie. Signing out an anonymous session
// is a no-op.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			_ = transition(claims, auth.EventSignOut)
		}
		s.clearSession(w, r)
		writeJSON(w, http.StatusOK, redirectResponse{URL: auth.SafeCallbackURL(s.config.GetBaseURL(), r.URL.Query().Get("callbackUrl"))})
	}
}

type providerInfo struct {
	ID          string `json:"id"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// ProvidersHandler lists the enabled sign-in methods.
func (s *Server) ProvidersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := s.config.GetBaseURL()
		list := map[string]providerInfo{
			credentialsMethod: {
				ID:          credentialsMethod,
				SignInURL:   base + RouteCredentialsCallback,
				CallbackURL: base + RouteCredentialsCallback,
			},
		}
		for _, name := range s.providers.Names() {
			list[name] = providerInfo{
				ID:          name,
				SignInURL:   base + "/api/auth/signin/" + name,
				CallbackURL: providers.CallbackURL(base, name),
			}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
