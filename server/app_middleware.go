package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/lead-dashboard/dashboard"
	"github.com/jrsteele09/lead-dashboard/guard"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyApp stores the request's dashboard.App
	ContextKeyApp ContextKey = "app"
	// ContextKeyScreen stores the guard-approved screen for page routes
	ContextKeyScreen ContextKey = "screen"
	// ContextKeyRequestID stores the request id
	ContextKeyRequestID ContextKey = "request_id"
)

func appFrom(ctx context.Context) *dashboard.App {
	app, _ := ctx.Value(ContextKeyApp).(*dashboard.App)
	return app
}

func screenFrom(ctx context.Context) (dashboard.Screen, bool) {
	screen, ok := ctx.Value(ContextKeyScreen).(dashboard.Screen)
	return screen, ok
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// WithApp restores the client's session into a fresh dashboard.App, as a
// browser does on reload, and closes it when the request ends.
func (s *Server) WithApp(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		namespace, err := s.clientNamespace(w, r)
		if err != nil {
			log.Err(err).Msg("Failed to identify client")
			writeError(w, http.StatusInternalServerError, "internal error", false)
			return
		}

		app := dashboard.New(sessions.NewStore(s.storage, namespace), s.backend)
		defer app.Close()
		app.Boot(r.Context())

		ctx := context.WithValue(r.Context(), ContextKeyApp, app)
		next(w, r.WithContext(ctx))
	}
}

// GuardMiddleware evaluates the route guard for the requested page and
// redirects when the guard says so. Must run after WithApp.
func (s *Server) GuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())
		if app == nil {
			writeError(w, http.StatusInternalServerError, "internal error", false)
			return
		}

		screen := app.Navigate(r.Context(), r.URL.Path)
		switch screen.Decision.Outcome {
		case guard.RedirectLogin, guard.RedirectHome:
			redirectSuccess(w, r, screen.Decision.Location)
			return
		case guard.Loading:
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"view": dashboard.ViewLoading, "retryable": true})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyScreen, screen)
		next(w, r.WithContext(ctx))
	}
}

// RequireAgent rejects API calls without a logged-in agent. Must run after WithApp.
func (s *Server) RequireAgent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())
		if app == nil || !app.Session().Authenticated() {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Outcome:  "error",
				Message:  "Please log in to continue.",
				Redirect: guard.PathLogin,
			})
			return
		}
		next(w, r)
	}
}
