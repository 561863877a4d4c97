package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Pages: every navigation is evaluated by the route guard
	for _, page := range []string{
		RoutePageLanding,
		RoutePageLogin,
		RoutePageSignup,
		RoutePageLeads,
		RoutePageUpload,
		RoutePageCustomInsight,
		RoutePageRiskAssessment,
		RoutePageDocument,
		RoutePageAudio,
		RoutePageFallback,
	} {
		s.RegisterRouteHandler("GET "+page, ChainMiddleware(s.PageHandler(), s.PageMiddleware(s.WithApp, s.GuardMiddleware)...))
	}

	// Session API
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.WithApp)...))
	s.RegisterRouteHandler("POST "+RouteAPISignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware(s.WithApp)...))
	s.RegisterRouteHandler("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.WithApp)...))
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware(s.WithApp)...))

	// Lead API (requires a logged-in agent)
	s.RegisterRouteHandler("POST "+RouteAPILeads, ChainMiddleware(s.CreateLeadHandler(), s.APIMiddleware(s.WithApp, s.RequireAgent)...))
	s.RegisterRouteHandler("POST "+RouteAPIUpload, ChainMiddleware(s.UploadHandler(), s.APIMiddleware(s.WithApp, s.RequireAgent)...))
	s.RegisterRouteHandler("GET "+RouteAPIDocumentImage, ChainMiddleware(s.DocumentImageHandler(), s.APIMiddleware(s.WithApp, s.RequireAgent)...))

	// CORS preflight for the API
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthHandler())
}
