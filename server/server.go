package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-booking-server/accounts"
	"github.com/jrsteele09/go-booking-server/auth"
	"github.com/jrsteele09/go-booking-server/bookings"
	"github.com/jrsteele09/go-booking-server/internal/config"
	"github.com/jrsteele09/go-booking-server/internal/metrics"
	"github.com/jrsteele09/go-booking-server/providers"
	"github.com/jrsteele09/go-booking-server/server/authflowrepo"
	"github.com/jrsteele09/go-booking-server/token"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Repos are the stores the server is built on.
type Repos struct {
	Users    users.UserRepo
	Accounts accounts.Repo
	Bookings bookings.Repo
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	router    *chi.Mux
	config    config.Config
	lifecycle auth.Lifecycle
	codec     *token.Codec
	users     *users.Service
	userRepo  users.UserRepo
	bookings  *bookings.Service
	providers *providers.Registry
	authState authflowrepo.Repo
	limiter   *RateLimiter
	metrics   metrics.Recorder
	gatherer  prometheus.Gatherer
}

type Option func(*Server)

// WithRegistry records metrics on reg and serves them from /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = metrics.NewCollector(reg)
		s.gatherer = reg
	}
}

// WithLifecycle replaces the store-backed session lifecycle.
func WithLifecycle(lifecycle auth.Lifecycle) Option {
	return func(s *Server) {
		s.lifecycle = lifecycle
	}
}

func New(cfg config.Config, repos Repos, providerRegistry *providers.Registry, authStateRepo authflowrepo.Repo, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if providerRegistry == nil {
		providerRegistry = providers.NewRegistry()
	}
	if authStateRepo == nil {
		return nil, errors.New("[Server New] auth flow state repo is required")
	}

	authService, err := auth.NewService(repos.Users, repos.Accounts)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}
	userService, err := users.NewService(repos.Users, users.WithHashCost(cfg.GetPasswordHashCost()))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create user service: %w", err)
	}
	bookingService, err := bookings.NewService(repos.Bookings)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create booking service: %w", err)
	}

	signer, err := token.NewHMACSigner(cfg.GetSessionSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session signer: %w", err)
	}
	codec, err := token.NewCodec(signer, cfg.GetMaxSessionAge(), token.WithIssuer(cfg.GetBaseURL()))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session codec: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		router:    chi.NewRouter(),
		config:    cfg,
		lifecycle: authService,
		codec:     codec,
		users:     userService,
		userRepo:  repos.Users,
		bookings:  bookingService,
		providers: providerRegistry,
		authState: authStateRepo,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.metrics == nil {
		WithRegistry(prometheus.NewRegistry())(s)
	}
	if cfg.GetEnableRateLimiting() {
		s.limiter = NewRateLimiter(DefaultRateLimiterConfig(cfg.GetAuthRatePerMinute(), cfg.GetAuthRateBurst()))
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logRoute(method, route)
		return nil
	})
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func (s *Server) secureCookies(r *http.Request) bool {
	return strings.HasPrefix(s.config.GetBaseURL(), "https://") || getScheme(r) == "https"
}
