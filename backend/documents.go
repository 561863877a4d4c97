package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
)

const maxImageBytes = 20 << 20

// ResourceSummary identifies the stored resource found by a lookup.
type ResourceSummary struct {
	ID           string `json:"id,omitempty"`
	DocumentID   string `json:"documentId,omitempty"`
	AudioID      string `json:"audioId,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
	LeadID       string `json:"leadId,omitempty"`
	UploadedAt   string `json:"uploadedAt,omitempty"`
}

// ResourceID is whichever identifier field the backend populated.
func (r ResourceSummary) ResourceID() string {
	for _, id := range []string{r.DocumentID, r.AudioID, r.ID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// Report is a backend-computed verification report. The scoring content is
// owned by the backend and passed through untouched.
type Report struct {
	DocumentID string          `json:"documentId,omitempty"`
	Raw        json.RawMessage `json:"report"`
}

// Image is a document preview.
type Image struct {
	ContentType string
	Data        []byte
}

func decodeReport(op string, report *Report) func(*http.Response) error {
	return func(resp *http.Response) error {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("[backend %s] %w: %w", op, apperrors.ErrMalformedResponse, err)
		}
		var ids ResourceSummary
		if err := json.Unmarshal(raw, &ids); err != nil {
			return fmt.Errorf("[backend %s] %w: %w", op, apperrors.ErrMalformedResponse, err)
		}
		report.DocumentID = ids.ResourceID()
		report.Raw = raw
		return nil
	}
}

// RecentDocument looks up the most recent document of docType uploaded for a lead.
func (c *Client) RecentDocument(ctx context.Context, leadID string, docType leads.DocumentType) (ResourceSummary, error) {
	u := c.endpoint("documents", "recentdocument", leadID) + "?" + url.Values{"documentType": {string(docType)}}.Encode()
	var out ResourceSummary
	err := c.do(ctx, request{op: "RecentDocument", method: http.MethodGet, url: u}, decodeJSON("RecentDocument", &out))
	if err != nil {
		return ResourceSummary{}, err
	}
	if out.ResourceID() == "" {
		return ResourceSummary{}, fmt.Errorf("[backend RecentDocument] %w: no document identifier", apperrors.ErrNotFound)
	}
	return out, nil
}

// DocumentReport fetches the full verification report of a lead's document.
func (c *Client) DocumentReport(ctx context.Context, leadID string, docType leads.DocumentType) (Report, error) {
	var report Report
	err := c.do(ctx, request{op: "DocumentReport", method: http.MethodGet, url: c.endpoint("documents", leadID, string(docType))},
		decodeReport("DocumentReport", &report))
	return report, err
}

// DocumentImage fetches the preview image of a stored document.
func (c *Client) DocumentImage(ctx context.Context, documentID string) (Image, error) {
	var img Image
	err := c.do(ctx, request{op: "DocumentImage", method: http.MethodGet, url: c.endpoint("documents", "image", documentID)},
		func(resp *http.Response) error {
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
			if err != nil {
				return fmt.Errorf("[backend DocumentImage] %w: %w", apperrors.ErrMalformedResponse, err)
			}
			img = Image{ContentType: resp.Header.Get("Content-Type"), Data: data}
			return nil
		})
	return img, err
}

// DocumentTypes lists the document types the backend can produce insights for.
// The backend answers with a value to label map.
func (c *Client) DocumentTypes(ctx context.Context) ([]leads.DocumentTypeOption, error) {
	var labels map[string]string
	if err := c.getJSON(ctx, "DocumentTypes", &labels, "documents", "types"); err != nil {
		return nil, err
	}
	return leads.DocumentTypeOptions(labels), nil
}
