// Package resolver turns lead and document references into concrete backend
// resources and fetches the data the report views display.
package resolver

import (
	"context"
	"fmt"

	"github.com/jrsteele09/lead-dashboard/backend"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/internal/metrics"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the verification service the resolver reads.
type Backend interface {
	RecentDocument(ctx context.Context, leadID string, docType leads.DocumentType) (backend.ResourceSummary, error)
	RecentAudio(ctx context.Context, leadID string) (backend.ResourceSummary, error)
	DocumentReport(ctx context.Context, leadID string, docType leads.DocumentType) (backend.Report, error)
	AudioReport(ctx context.Context, audioID string) (backend.Report, error)
	DocumentImage(ctx context.Context, documentID string) (backend.Image, error)
	LeadName(ctx context.Context, leadID string) (string, error)
	LeadInsights(ctx context.Context, leadID string) ([]leads.Insight, error)
}

type Resolver struct {
	backend Backend
}

func New(b Backend) *Resolver {
	return &Resolver{backend: b}
}

// DocumentView is everything the document report view renders.
type DocumentView struct {
	Reference leads.Reference `json:"reference"`
	Report    backend.Report  `json:"report"`
	Preview   *backend.Image  `json:"-"`
}

// HasPreview reports whether the preview image was fetched.
func (d DocumentView) HasPreview() bool {
	return d.Preview != nil
}

// Overview is the lead summary page: display name plus decorated insights.
type Overview struct {
	LeadID   string              `json:"leadId"`
	Name     string              `json:"name"`
	Insights []leads.InsightView `json:"insights"`
}

func record[T any](kind string, r Result[T]) Result[T] {
	metrics.ResolverLookups.WithLabelValues(kind, r.Kind().String()).Inc()
	if r.Kind() == KindFailed && !r.Canceled() {
		log.Warn().Err(r.Err()).Str("kind", kind).Msg("Resolver lookup failed")
	}
	return r
}

func invalid[T any](op, msg string) Result[T] {
	return Failed[T](fmt.Errorf("[resolver %s] %w: %s", op, apperrors.ErrInvalidRequest, msg))
}

// ResolveDocument finds the most recent document of docType for a lead.
// A lead with nothing uploaded yields NotFound, never an error.
func (r *Resolver) ResolveDocument(ctx context.Context, leadID string, docType leads.DocumentType) Result[leads.Reference] {
	if docType.IsAudio() {
		return r.ResolveAudio(ctx, leadID)
	}
	if leadID == "" {
		return record("document", invalid[leads.Reference]("ResolveDocument", "lead id is required"))
	}

	summary, err := r.backend.RecentDocument(ctx, leadID, docType)
	if err != nil {
		return record("document", FromError[leads.Reference](err))
	}
	ref := leads.Reference{LeadID: leadID, Type: docType}
	return record("document", Found(ref.Resolve(summary.ResourceID())))
}

// ResolveAudio finds the most recent reference-call recording for a lead.
func (r *Resolver) ResolveAudio(ctx context.Context, leadID string) Result[leads.Reference] {
	if leadID == "" {
		return record("audio", invalid[leads.Reference]("ResolveAudio", "lead id is required"))
	}

	summary, err := r.backend.RecentAudio(ctx, leadID)
	if err != nil {
		return record("audio", FromError[leads.Reference](err))
	}
	ref := leads.Reference{LeadID: leadID, Type: leads.DocumentReferenceCall}
	return record("audio", Found(ref.Resolve(summary.ResourceID())))
}

// DocumentReport resolves the reference, fetches its report and then the
// preview image, in that order. A missing preview degrades to a report
// without one; a missing upload yields NotFound.
func (r *Resolver) DocumentReport(ctx context.Context, leadID string, docType leads.DocumentType) Result[DocumentView] {
	resolved := r.ResolveDocument(ctx, leadID, docType)
	ref, ok := resolved.Value()
	if !ok {
		if resolved.Kind() == KindNotFound {
			return NotFound[DocumentView]()
		}
		return Failed[DocumentView](resolved.Err())
	}

	if docType.IsAudio() {
		return r.AudioReport(ctx, ref)
	}

	report, err := r.backend.DocumentReport(ctx, leadID, docType)
	if err != nil {
		return record("report", FromError[DocumentView](err))
	}

	view := DocumentView{Reference: ref, Report: report}
	imageID := report.DocumentID
	if imageID == "" {
		imageID = ref.ResourceID
	}
	img, err := r.backend.DocumentImage(ctx, imageID)
	switch {
	case err == nil:
		view.Preview = &img
	case ctx.Err() != nil:
		return record("report", Failed[DocumentView](ctx.Err()))
	default:
		log.Warn().Err(err).Str("leadId", leadID).Str("documentId", imageID).Msg("Document preview unavailable")
	}
	return record("report", Found(view))
}

// AudioReport fetches the report of a resolved reference-call recording.
func (r *Resolver) AudioReport(ctx context.Context, ref leads.Reference) Result[DocumentView] {
	if !ref.Resolved() {
		return record("report", invalid[DocumentView]("AudioReport", "unresolved reference"))
	}
	report, err := r.backend.AudioReport(ctx, ref.ResourceID)
	if err != nil {
		return record("report", FromError[DocumentView](err))
	}
	return record("report", Found(DocumentView{Reference: ref, Report: report}))
}

// LeadOverview fetches the lead's name and insights concurrently.
func (r *Resolver) LeadOverview(ctx context.Context, leadID string) Result[Overview] {
	if leadID == "" {
		return record("lead", invalid[Overview]("LeadOverview", "lead id is required"))
	}

	var (
		name     string
		insights []leads.Insight
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		name, err = r.backend.LeadName(gctx, leadID)
		return err
	})
	g.Go(func() error {
		var err error
		insights, err = r.backend.LeadInsights(gctx, leadID)
		return err
	})
	if err := g.Wait(); err != nil {
		return record("lead", FromError[Overview](err))
	}

	return record("lead", Found(Overview{
		LeadID:   leadID,
		Name:     name,
		Insights: leads.Decorate(leadID, insights),
	}))
}

// LeadName resolves only the display name, for the navigation chrome.
func (r *Resolver) LeadName(ctx context.Context, leadID string) Result[string] {
	if leadID == "" {
		return record("lead_name", invalid[string]("LeadName", "lead id is required"))
	}
	name, err := r.backend.LeadName(ctx, leadID)
	if err != nil {
		return record("lead_name", FromError[string](err))
	}
	return record("lead_name", Found(name))
}
