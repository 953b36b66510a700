package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jrsteele09/go-booking-server/internal/metrics"
)

func (s *Server) initRoutes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.SecurityHeadersMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.config.GetAllowedOrigins(),
			AllowedMethods:   s.config.GetAllowedMethods(),
			AllowedHeaders:   s.config.GetAllowedHeaders(),
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		s.SessionMiddleware,
	)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// AUTH
	s.router.Method(http.MethodPost, RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimit(RouteRegister))...))
	s.router.Method(http.MethodPost, RouteCredentialsCallback, ChainMiddleware(s.CredentialsCallbackHandler(), s.APIMiddleware(s.RateLimit(RouteCredentialsCallback))...))
	s.router.Method(http.MethodGet, RouteProviderSignIn, s.ProviderSignInHandler())
	s.router.Method(http.MethodGet, RouteProviderCallback, s.ProviderCallbackHandler())
	s.router.Method(http.MethodGet, RouteSession, s.GetSessionHandler())
	s.router.Method(http.MethodPost, RouteSession, ChainMiddleware(s.UpdateSessionHandler(), s.APIMiddleware(s.RequireSession)...))
	s.router.Method(http.MethodPost, RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware()...))
	s.router.Method(http.MethodGet, RouteProviders, s.ProvidersHandler())

	// API
	s.router.Method(http.MethodGet, RouteGetUser, ChainMiddleware(s.GetUserHandler(), s.RequireSession))
	s.router.Method(http.MethodPost, RouteUpdateEmail, ChainMiddleware(s.UpdateEmailHandler(), s.APIMiddleware(s.RequireSession)...))
	s.router.Method(http.MethodPost, RouteBookings, ChainMiddleware(s.CreateBookingHandler(), s.APIMiddleware(s.RequireSession)...))
	s.router.Method(http.MethodGet, RouteBookings, ChainMiddleware(s.ListBookingsHandler(), s.RequireSession))
	s.router.Method(http.MethodGet, RouteUsers, ChainMiddleware(s.DirectoryHandler(), s.RequireSession))

	// ADMIN
	s.router.Method(http.MethodGet, RouteAdminUsers, ChainMiddleware(s.AdminUsersHandler(), s.RequireSession, s.RequireAdmin))

	// SYSTEM
	s.router.Method(http.MethodGet, RouteMetrics, metrics.Handler(s.gatherer))
	s.router.Method(http.MethodGet, RouteHealthz, s.HealthzHandler())
}

// routePattern is the matched chi pattern, used to keep metric labels bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
