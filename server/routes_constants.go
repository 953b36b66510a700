package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteRegister            = "/api/auth/register"
	RouteCredentialsCallback = "/api/auth/callback/credentials"
	RouteProviderSignIn      = "/api/auth/signin/{provider}"
	RouteProviderCallback    = "/api/auth/callback/{provider}"
	RouteSession             = "/api/auth/session"
	RouteSignOut             = "/api/auth/signout"
	RouteProviders           = "/api/auth/providers"

	// API Routes
	RouteGetUser     = "/api/getUser"
	RouteUpdateEmail = "/api/updateEmail"
	RouteBookings    = "/api/bookings"
	RouteUsers       = "/api/users"

	// Admin Routes
	RouteAdminUsers = "/api/admin/users"

	// System Routes
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
