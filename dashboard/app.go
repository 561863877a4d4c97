// Package dashboard is the headless application model: the session store,
// the route guard and the report views wired together the way the browser
// client drives them.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/backend"
	"github.com/jrsteele09/lead-dashboard/guard"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/jrsteele09/lead-dashboard/resolver"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/jrsteele09/lead-dashboard/views"
	"github.com/rs/zerolog/log"
)

// Backend is everything the dashboard calls on the verification service.
type Backend interface {
	resolver.Backend
	Login(ctx context.Context, creds agents.Credentials) (agents.Identity, error)
	Register(ctx context.Context, reg agents.Registration) error
	ListLeads(ctx context.Context, agentID string) ([]leads.Lead, error)
	LeadOptions(ctx context.Context, agentID string) ([]leads.LeadOption, error)
	DocumentTypes(ctx context.Context) ([]leads.DocumentTypeOption, error)
	CreateLead(ctx context.Context, lead leads.NewLead) (leads.Lead, error)
	UploadFiles(ctx context.Context, upload backend.Upload) ([]leads.Reference, error)
}

// App is one client's dashboard. The session store is the only state it
// shares with anything else; every view's data lives in its own slot.
type App struct {
	store    *sessions.Store
	guard    *guard.Machine
	backend  Backend
	resolver *resolver.Resolver
	chrome   views.Chrome

	leadList    views.Slot[resolver.Result[[]leads.Lead]]
	leadOptions views.Slot[resolver.Result[[]leads.LeadOption]]
	docTypes    views.Slot[resolver.Result[[]leads.DocumentTypeOption]]
	overview    views.Slot[resolver.Result[resolver.Overview]]
	report      views.Slot[resolver.Result[resolver.DocumentView]]
	leadName    views.Slot[resolver.Result[string]]

	mu          sync.Mutex
	route       guard.Route
	scope       *views.LeadScope
	unsubscribe func()
}

func New(store *sessions.Store, b Backend) *App {
	a := &App{
		store:    store,
		guard:    guard.NewMachine(store),
		backend:  b,
		resolver: resolver.New(b),
	}
	a.unsubscribe = store.Subscribe(a.onSessionEvent)
	if store.Initialized() {
		a.chrome.SetAgent(store.Current().Identity)
	}
	return a
}

func (a *App) onSessionEvent(event sessions.Event) {
	switch event.Kind {
	case sessions.EventLoggedOut:
		a.teardown()
	default:
		a.chrome.SetAgent(event.Session.Identity)
	}
}

// teardown unmounts every view so that nothing in flight can land after
// the session is gone.
func (a *App) teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.leadList.Reset()
	a.leadOptions.Reset()
	a.docTypes.Reset()
	a.overview.Reset()
	a.report.Reset()
	a.leadName.Reset()
	a.scope = nil
	a.route = guard.Route{}
	a.chrome.Clear()
}

// Boot restores the session. Until it returns the guard answers Loading.
func (a *App) Boot(ctx context.Context) sessions.Session {
	return a.store.Initialize(ctx)
}

func (a *App) Store() *sessions.Store {
	return a.store
}

func (a *App) GuardState() guard.State {
	return a.guard.State()
}

func (a *App) Session() sessions.Session {
	return a.store.Current()
}

// Login authenticates against the backend and starts the session.
func (a *App) Login(ctx context.Context, creds agents.Credentials) (agents.Identity, error) {
	if err := creds.Validate(); err != nil {
		return agents.Identity{}, fmt.Errorf("[dashboard Login] %w", err)
	}
	identity, err := a.backend.Login(ctx, creds)
	if err != nil {
		return agents.Identity{}, fmt.Errorf("[dashboard Login] %w", err)
	}
	if err := a.store.Login(ctx, identity); err != nil {
		return agents.Identity{}, fmt.Errorf("[dashboard Login] %w", err)
	}
	log.Info().Str("agentId", identity.ID).Str("namespace", a.store.Namespace()).Msg("Agent logged in")
	return identity, nil
}

// Register creates an agent account. It does not log the agent in.
func (a *App) Register(ctx context.Context, reg agents.Registration) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("[dashboard Register] %w", err)
	}
	if err := a.backend.Register(ctx, reg); err != nil {
		return fmt.Errorf("[dashboard Register] %w", err)
	}
	return nil
}

// Logout ends the session and tears down every view.
func (a *App) Logout(ctx context.Context) {
	agentID := a.store.Current().ID
	a.store.Logout(ctx)
	if agentID != "" {
		log.Info().Str("agentId", agentID).Str("namespace", a.store.Namespace()).Msg("Agent logged out")
	}
}

func (a *App) agentID() (string, error) {
	session := a.store.Current()
	if !session.Authenticated() {
		return "", apperrors.ErrUnauthorized
	}
	return session.ID, nil
}

// CreateLead submits the new-lead form on behalf of the logged-in agent.
func (a *App) CreateLead(ctx context.Context, lead leads.NewLead) (leads.Lead, error) {
	agentID, err := a.agentID()
	if err != nil {
		return leads.Lead{}, fmt.Errorf("[dashboard CreateLead] %w", err)
	}
	lead.AgentID = agentID
	if err := lead.Validate(); err != nil {
		return leads.Lead{}, fmt.Errorf("[dashboard CreateLead] %w", err)
	}
	created, err := a.backend.CreateLead(ctx, lead)
	if err != nil {
		return leads.Lead{}, fmt.Errorf("[dashboard CreateLead] %w", err)
	}
	return created, nil
}

// Upload sends documents for a lead. The returned references are resolved.
func (a *App) Upload(ctx context.Context, upload backend.Upload) ([]leads.Reference, error) {
	agentID, err := a.agentID()
	if err != nil {
		return nil, fmt.Errorf("[dashboard Upload] %w", err)
	}
	upload.AgentID = agentID
	refs, err := a.backend.UploadFiles(ctx, upload)
	if err != nil {
		return nil, fmt.Errorf("[dashboard Upload] %w", err)
	}
	return refs, nil
}

func (a *App) Chrome() views.ChromeView {
	return a.chrome.View()
}

func (a *App) LeadList() views.Snapshot[resolver.Result[[]leads.Lead]] {
	return a.leadList.Snapshot()
}

func (a *App) LeadOptions() views.Snapshot[resolver.Result[[]leads.LeadOption]] {
	return a.leadOptions.Snapshot()
}

func (a *App) DocumentTypes() views.Snapshot[resolver.Result[[]leads.DocumentTypeOption]] {
	return a.docTypes.Snapshot()
}

func (a *App) Overview() views.Snapshot[resolver.Result[resolver.Overview]] {
	return a.overview.Snapshot()
}

func (a *App) Report() views.Snapshot[resolver.Result[resolver.DocumentView]] {
	return a.report.Snapshot()
}

// Close detaches the app from its session store.
func (a *App) Close() {
	a.unsubscribe()
	a.guard.Close()
	a.teardown()
}
