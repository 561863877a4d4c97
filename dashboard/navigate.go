package dashboard

import (
	"context"

	"github.com/jrsteele09/lead-dashboard/guard"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/jrsteele09/lead-dashboard/resolver"
	"github.com/rs/zerolog/log"
)

type ViewKind string

const (
	ViewLoading        ViewKind = "loading"
	ViewLogin          ViewKind = "login"
	ViewSignup         ViewKind = "signup"
	ViewHome           ViewKind = "home"
	ViewLeads          ViewKind = "leads"
	ViewUpload         ViewKind = "upload"
	ViewCustomInsight  ViewKind = "custom-insight"
	ViewLeadOverview   ViewKind = "lead-overview"
	ViewDocumentReport ViewKind = "document-report"
	ViewAudioReport    ViewKind = "audio-report"
)

var viewForRoute = map[guard.RouteName]ViewKind{
	guard.RouteLogin:          ViewLogin,
	guard.RouteSignup:         ViewSignup,
	guard.RouteHome:           ViewHome,
	guard.RouteLeads:          ViewLeads,
	guard.RouteUpload:         ViewUpload,
	guard.RouteCustomInsight:  ViewCustomInsight,
	guard.RouteRiskAssessment: ViewLeadOverview,
	guard.RouteDocument:       ViewDocumentReport,
	guard.RouteAudio:          ViewAudioReport,
}

type waiter interface {
	Wait(ctx context.Context) (bool, error)
}

// Screen is the result of a navigation attempt.
type Screen struct {
	Decision guard.Decision
	View     ViewKind

	loads []waiter
}

// Redirected reports whether the guard sent the agent elsewhere.
func (s Screen) Redirected() bool {
	return s.Decision.Outcome == guard.RedirectLogin || s.Decision.Outcome == guard.RedirectHome
}

// Wait blocks until every load started by this navigation has settled.
func (s Screen) Wait(ctx context.Context) error {
	for _, l := range s.loads {
		if _, err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Navigate evaluates the guard for path and, when allowed, mounts the view.
// Data loads run asynchronously; use Screen.Wait to observe them. The guard
// is evaluated under the view lock, so a logout that has torn the views down
// is always seen and one that arrives later unmounts what was mounted here.
func (a *App) Navigate(ctx context.Context, path string) Screen {
	a.mu.Lock()
	defer a.mu.Unlock()

	decision := a.guard.Evaluate(path)
	switch decision.Outcome {
	case guard.Loading:
		return Screen{Decision: decision, View: ViewLoading}
	case guard.RedirectLogin, guard.RedirectHome:
		a.unmount("")
		return Screen{Decision: decision}
	}

	route := decision.Route
	view := viewForRoute[route.Name]

	a.unmount(view)
	a.route = route
	screen := Screen{Decision: decision, View: view}

	if leadID := route.LeadID(); leadID != "" {
		if l := a.enterLead(ctx, leadID); l != nil {
			screen.loads = append(screen.loads, l)
		}
	} else {
		a.leaveLead()
	}

	switch view {
	case ViewHome, ViewLeads:
		screen.loads = append(screen.loads, a.loadLeads(ctx))
	case ViewUpload:
		screen.loads = append(screen.loads, a.loadLeadOptions(ctx))
	case ViewCustomInsight:
		screen.loads = append(screen.loads, a.loadLeadOptions(ctx), a.loadDocumentTypes(ctx))
	case ViewLeadOverview:
		screen.loads = append(screen.loads, a.loadOverview(ctx, route.LeadID()))
	case ViewDocumentReport:
		screen.loads = append(screen.loads, a.loadDocument(ctx, route))
	case ViewAudioReport:
		screen.loads = append(screen.loads, a.loadAudio(ctx, route.Param("id")))
	}
	return screen
}

// unmount resets every slot the next view does not use.
func (a *App) unmount(next ViewKind) {
	if next != ViewHome && next != ViewLeads {
		a.leadList.Reset()
	}
	if next != ViewUpload && next != ViewCustomInsight {
		a.leadOptions.Reset()
	}
	if next != ViewCustomInsight {
		a.docTypes.Reset()
	}
	if next != ViewLeadOverview {
		a.overview.Reset()
	}
	if next != ViewDocumentReport && next != ViewAudioReport {
		a.report.Reset()
	}
	if next == "" {
		a.leaveLead()
	}
}

// enterLead publishes the lead to the chrome for as long as the agent stays
// within its views, loading the display name once per lead.
func (a *App) enterLead(ctx context.Context, leadID string) waiter {
	if a.scope != nil && a.scope.LeadID() == leadID && a.scope.Owns() {
		return nil
	}
	a.leaveLead()

	scope := a.chrome.Publish(leadID, "")
	a.scope = scope
	return a.leadName.Load(ctx, leadID, func(ctx context.Context) resolver.Result[string] {
		res := a.resolver.LeadName(ctx, leadID)
		if name, ok := res.Value(); ok {
			scope.SetName(name)
		}
		return res
	})
}

func (a *App) leaveLead() {
	if a.scope != nil {
		a.scope.Close()
		a.scope = nil
	}
	a.leadName.Reset()
}

func (a *App) loadLeads(ctx context.Context) waiter {
	agentID := a.store.Current().ID
	return a.leadList.Load(ctx, agentID, func(ctx context.Context) resolver.Result[[]leads.Lead] {
		list, err := a.backend.ListLeads(ctx, agentID)
		if err != nil {
			return checkAuth(a, resolver.FromError[[]leads.Lead](err))
		}
		return resolver.Found(list)
	})
}

func (a *App) loadLeadOptions(ctx context.Context) waiter {
	agentID := a.store.Current().ID
	return a.leadOptions.Load(ctx, agentID, func(ctx context.Context) resolver.Result[[]leads.LeadOption] {
		options, err := a.backend.LeadOptions(ctx, agentID)
		if err != nil {
			return checkAuth(a, resolver.FromError[[]leads.LeadOption](err))
		}
		return resolver.Found(options)
	})
}

func (a *App) loadDocumentTypes(ctx context.Context) waiter {
	return a.docTypes.Load(ctx, "document-types", func(ctx context.Context) resolver.Result[[]leads.DocumentTypeOption] {
		options, err := a.backend.DocumentTypes(ctx)
		if err != nil {
			return checkAuth(a, resolver.FromError[[]leads.DocumentTypeOption](err))
		}
		return resolver.Found(options)
	})
}

func (a *App) loadOverview(ctx context.Context, leadID string) waiter {
	return a.overview.Load(ctx, leadID, func(ctx context.Context) resolver.Result[resolver.Overview] {
		return checkAuth(a, a.resolver.LeadOverview(ctx, leadID))
	})
}

func (a *App) loadDocument(ctx context.Context, route guard.Route) waiter {
	leadID := route.LeadID()
	key := leadID + "/" + route.Param("documentType")
	docType, err := leads.ParseDocumentType(route.Param("documentType"))
	if err != nil {
		return a.report.Load(ctx, key, func(context.Context) resolver.Result[resolver.DocumentView] {
			return resolver.Failed[resolver.DocumentView](err)
		})
	}
	return a.report.Load(ctx, key, func(ctx context.Context) resolver.Result[resolver.DocumentView] {
		return checkAuth(a, a.resolver.DocumentReport(ctx, leadID, docType))
	})
}

func (a *App) loadAudio(ctx context.Context, audioID string) waiter {
	ref := leads.Reference{Type: leads.DocumentReferenceCall, ResourceID: audioID}
	return a.report.Load(ctx, audioID, func(ctx context.Context) resolver.Result[resolver.DocumentView] {
		return checkAuth(a, a.resolver.AudioReport(ctx, ref))
	})
}

// checkAuth ends the session when the backend rejects the agent. Auth
// failures redirect, they are never shown as a retryable error.
func checkAuth[T any](a *App, res resolver.Result[T]) resolver.Result[T] {
	if res.Unauthorized() {
		log.Warn().Err(res.Err()).Msg("Backend rejected the agent, ending session")
		a.Logout(context.Background())
	}
	return res
}
