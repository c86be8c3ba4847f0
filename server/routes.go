package server

import (
	"net/http"

	"github.com/imshq/go-ims-server/internal/metrics"
)

func (s *Server) initRoutes() {
	// Accounts / auth
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Registration
	s.RegisterRouteHandler("POST "+RouteRegistration, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegistrationVerify, ChainMiddleware(s.VerifyRegistrationHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegistrationResend, ChainMiddleware(s.ResendVerificationHandler(), s.APIMiddleware()...))

	// Recovery
	s.RegisterRouteHandler("POST "+RouteRecovery, ChainMiddleware(s.StartRecoveryHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRecoveryVerify, ChainMiddleware(s.RecoverAccountHandler(), s.APIMiddleware()...))

	// Protected
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.DeserializeUser())...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler())

	// Method-specific patterns never match preflight requests, so CORS
	// handles them on a catch-all.
	s.RegisterRouteHandler("OPTIONS /api/", s.CorsMiddleware(func(http.ResponseWriter, *http.Request) {}))
}

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the standard chain for JSON API routes; extra middleware
// (e.g. DeserializeUser) runs after it.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleware := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		metrics.Instrument,
		s.CorsMiddleware,
	}
	chainedMiddleware = append(chainedMiddleware, mw...)
	return chainedMiddleware
}
