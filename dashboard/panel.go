package dashboard

import (
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/jrsteele09/lead-dashboard/resolver"
	"github.com/jrsteele09/lead-dashboard/views"
)

// Outcome is what a view renders for its current data.
type Outcome string

const (
	OutcomeIdle           Outcome = "idle"
	OutcomeLoading        Outcome = "loading"
	OutcomeReady          Outcome = "ready"
	OutcomeUploadRequired Outcome = "upload_required"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeError          Outcome = "error"
)

// Panel is a view's data together with how to render it.
type Panel[T any] struct {
	Key         string  `json:"key,omitempty"`
	Outcome     Outcome `json:"outcome"`
	Data        *T      `json:"data,omitempty"`
	Message     string  `json:"message,omitempty"`
	Retryable   bool    `json:"retryable,omitempty"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// PanelOf maps a slot snapshot to a panel. notFound is the outcome used when
// the backend has nothing for the key: an upload prompt for reports, a plain
// not-found for leads.
func PanelOf[T any](snap views.Snapshot[resolver.Result[T]], notFound Outcome) Panel[T] {
	p := Panel[T]{Key: snap.Key}
	switch snap.Phase {
	case views.PhaseIdle:
		p.Outcome = OutcomeIdle
		return p
	case views.PhaseLoading:
		p.Outcome = OutcomeLoading
		return p
	}

	res := snap.Value
	switch res.Kind() {
	case resolver.KindFound:
		value, _ := res.Value()
		p.Outcome = OutcomeReady
		p.Data = &value
	case resolver.KindNotFound:
		p.Outcome = notFound
	default:
		p.Outcome = OutcomeError
		p.Retryable = res.Retryable()
		p.Unavailable = res.Unavailable()
		p.Message = "Something went wrong while loading this view."
		if p.Unavailable {
			p.Message = "The verification service is unavailable. Please try again."
		}
	}
	return p
}

func (a *App) LeadsPanel() Panel[[]leads.Lead] {
	return PanelOf(a.LeadList(), OutcomeNotFound)
}

func (a *App) LeadOptionsPanel() Panel[[]leads.LeadOption] {
	return PanelOf(a.LeadOptions(), OutcomeNotFound)
}

func (a *App) DocumentTypesPanel() Panel[[]leads.DocumentTypeOption] {
	return PanelOf(a.DocumentTypes(), OutcomeNotFound)
}

func (a *App) OverviewPanel() Panel[resolver.Overview] {
	return PanelOf(a.Overview(), OutcomeNotFound)
}

// ReportPanel prompts for an upload when nothing has been uploaded yet.
func (a *App) ReportPanel() Panel[resolver.DocumentView] {
	return PanelOf(a.Report(), OutcomeUploadRequired)
}
