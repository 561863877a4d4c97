package server

import "github.com/jrsteele09/lead-dashboard/guard"

// Route path constants
const (
	// Page routes, gated by the route guard
	RoutePageLanding        = "/{$}"
	RoutePageLogin          = guard.PathLogin
	RoutePageSignup         = guard.PathSignup
	RoutePageLeads          = "/leads"
	RoutePageUpload         = "/upload"
	RoutePageCustomInsight  = "/custom-insight"
	RoutePageRiskAssessment = "/risk-assessment/{leadId}"
	RoutePageDocument       = "/documents/{leadId}/{documentType}"
	RoutePageAudio          = "/audio/{id}"
	RoutePageFallback       = "/"

	// API routes
	RouteAPILogin         = "/api/login"
	RouteAPISignup        = "/api/signup"
	RouteAPILogout        = "/api/logout"
	RouteAPISession       = "/api/session"
	RouteAPILeads         = "/api/leads"
	RouteAPIUpload        = "/api/upload"
	RouteAPIDocumentImage = "/api/documents/{documentId}/image"

	// Operational routes
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
