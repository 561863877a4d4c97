package backend

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// RecentAudio looks up the most recent reference-call recording of a lead.
func (c *Client) RecentAudio(ctx context.Context, leadID string) (ResourceSummary, error) {
	var out ResourceSummary
	if err := c.getJSON(ctx, "RecentAudio", &out, "audio", "recentaudio", leadID); err != nil {
		return ResourceSummary{}, err
	}
	if out.ResourceID() == "" {
		return ResourceSummary{}, fmt.Errorf("[backend RecentAudio] %w: no audio identifier", apperrors.ErrNotFound)
	}
	return out, nil
}

func (c *Client) AudioReport(ctx context.Context, audioID string) (Report, error) {
	var report Report
	err := c.do(ctx, request{op: "AudioReport", method: http.MethodGet, url: c.endpoint("audio", audioID)},
		decodeReport("AudioReport", &report))
	if err == nil && report.DocumentID == "" {
		report.DocumentID = audioID
	}
	return report, err
}
