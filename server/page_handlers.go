package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/lead-dashboard/dashboard"
	"github.com/jrsteele09/lead-dashboard/guard"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/jrsteele09/lead-dashboard/resolver"
	"github.com/jrsteele09/lead-dashboard/views"
	"github.com/rs/zerolog/log"
)

// pageResponse is the view model of one page. Presentation is up to the client.
type pageResponse struct {
	View   dashboard.ViewKind `json:"view"`
	Path   string             `json:"path"`
	Params map[string]string  `json:"params,omitempty"`
	Chrome views.ChromeView   `json:"chrome"`
	Data   any                `json:"data,omitempty"`
}

// documentData is a report plus where to fetch its preview.
type documentData struct {
	Reference  leads.Reference `json:"reference"`
	Report     any             `json:"report"`
	PreviewURL string          `json:"previewUrl,omitempty"`
}

func previewURL(view resolver.DocumentView) string {
	if !view.HasPreview() {
		return ""
	}
	id := view.Report.DocumentID
	if id == "" {
		id = view.Reference.ResourceID
	}
	return "/api/documents/" + url.PathEscape(id) + "/image"
}

func reportPanel(p dashboard.Panel[resolver.DocumentView]) dashboard.Panel[documentData] {
	out := dashboard.Panel[documentData]{
		Key:         p.Key,
		Outcome:     p.Outcome,
		Message:     p.Message,
		Retryable:   p.Retryable,
		Unavailable: p.Unavailable,
	}
	if p.Data != nil {
		out.Data = &documentData{
			Reference:  p.Data.Reference,
			Report:     p.Data.Report.Raw,
			PreviewURL: previewURL(*p.Data),
		}
	}
	return out
}

// uploadData is the upload form: the agent's leads and the accepted types.
type uploadData struct {
	Leads         dashboard.Panel[[]leads.LeadOption] `json:"leads"`
	DocumentTypes []leads.DocumentTypeOption          `json:"documentTypes"`
}

// insightOption is a document type the agent can ask a report for. Path is
// set once a lead has been picked.
type insightOption struct {
	leads.DocumentTypeOption
	Path string `json:"path,omitempty"`
}

type customInsightData struct {
	LeadID        string                              `json:"leadId,omitempty"`
	Leads         dashboard.Panel[[]leads.LeadOption] `json:"leads"`
	DocumentTypes dashboard.Panel[[]insightOption]    `json:"documentTypes"`
}

func insightPanel(p dashboard.Panel[[]leads.DocumentTypeOption], leadID string) dashboard.Panel[[]insightOption] {
	out := dashboard.Panel[[]insightOption]{
		Key:         p.Key,
		Outcome:     p.Outcome,
		Message:     p.Message,
		Retryable:   p.Retryable,
		Unavailable: p.Unavailable,
	}
	if p.Data != nil {
		options := make([]insightOption, 0, len(*p.Data))
		for _, o := range *p.Data {
			opt := insightOption{DocumentTypeOption: o}
			if leadID != "" {
				opt.Path = o.InsightPath(leadID)
			}
			options = append(options, opt)
		}
		out.Data = &options
	}
	return out
}

// worstStatus picks the status of the most severe of several panels.
func worstStatus(statuses ...int) int {
	worst := http.StatusOK
	for _, status := range statuses {
		if status > worst {
			worst = status
		}
	}
	return worst
}

// panelStatus is the HTTP status for a view's outcome. A failing view is
// reported, the chrome is still rendered around it.
func panelStatus(outcome dashboard.Outcome, unavailable bool) int {
	switch {
	case outcome != dashboard.OutcomeError:
		return http.StatusOK
	case unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// PageHandler waits for the view mounted by GuardMiddleware and renders it.
func (s *Server) PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())
		screen, ok := screenFrom(r.Context())
		if app == nil || !ok {
			writeError(w, http.StatusInternalServerError, "internal error", false)
			return
		}

		if err := screen.Wait(r.Context()); err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Client went away before the page loaded")
			return
		}

		// The backend rejected the agent while loading.
		if !screen.Decision.Route.Public && !app.Session().Authenticated() {
			redirectWithError(w, r, guard.PathLogin, "Session expired")
			return
		}

		resp := pageResponse{
			View:   screen.View,
			Path:   screen.Decision.Location,
			Params: screen.Decision.Route.Params,
			Chrome: app.Chrome(),
		}
		status := http.StatusOK

		switch screen.View {
		case dashboard.ViewHome, dashboard.ViewLeads:
			panel := app.LeadsPanel()
			resp.Data, status = panel, panelStatus(panel.Outcome, panel.Unavailable)
		case dashboard.ViewUpload:
			panel := app.LeadOptionsPanel()
			resp.Data = uploadData{Leads: panel, DocumentTypes: leads.UploadDocumentTypes()}
			status = panelStatus(panel.Outcome, panel.Unavailable)
		case dashboard.ViewCustomInsight:
			leadID := r.URL.Query().Get("leadId")
			options := app.LeadOptionsPanel()
			types := insightPanel(app.DocumentTypesPanel(), leadID)
			resp.Data = customInsightData{LeadID: leadID, Leads: options, DocumentTypes: types}
			status = worstStatus(panelStatus(options.Outcome, options.Unavailable), panelStatus(types.Outcome, types.Unavailable))
		case dashboard.ViewLeadOverview:
			panel := app.OverviewPanel()
			resp.Data, status = panel, panelStatus(panel.Outcome, panel.Unavailable)
		case dashboard.ViewDocumentReport, dashboard.ViewAudioReport:
			panel := reportPanel(app.ReportPanel())
			resp.Data, status = panel, panelStatus(panel.Outcome, panel.Unavailable)
		case dashboard.ViewLogin, dashboard.ViewSignup:
			if msg := r.URL.Query().Get("error"); msg != "" {
				resp.Data = map[string]string{"error": msg}
			}
		}

		writeJSON(w, status, resp)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": s.config.GetAppName()})
	}
}
