package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
)

const maxNameBody = 1 << 10

func (c *Client) ListLeads(ctx context.Context, agentID string) ([]leads.Lead, error) {
	var out []leads.Lead
	if err := c.getJSON(ctx, "ListLeads", &out, "leads", "agent", agentID); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLead(ctx context.Context, lead leads.NewLead) (leads.Lead, error) {
	var out leads.Lead
	if err := c.postJSON(ctx, "CreateLead", lead, &out, "leads"); err != nil {
		return leads.Lead{}, err
	}
	return out, nil
}

// LeadName returns the display name, which the backend serves as plain text.
func (c *Client) LeadName(ctx context.Context, leadID string) (string, error) {
	var name string
	err := c.do(ctx, request{op: "LeadName", method: http.MethodGet, url: c.endpoint("leads", leadID, "name")},
		func(resp *http.Response) error {
			raw, err := io.ReadAll(io.LimitReader(resp.Body, maxNameBody))
			if err != nil {
				return fmt.Errorf("[backend LeadName] %w: %w", apperrors.ErrMalformedResponse, err)
			}
			name = strings.Trim(strings.TrimSpace(string(raw)), `"`)
			return nil
		})
	return name, err
}

func (c *Client) LeadInsights(ctx context.Context, leadID string) ([]leads.Insight, error) {
	var out []leads.Insight
	if err := c.getJSON(ctx, "LeadInsights", &out, "leads", leadID, "insights"); err != nil {
		return nil, err
	}
	return out, nil
}

// LeadOptions lists the agent's leads for the lead picker.
func (c *Client) LeadOptions(ctx context.Context, agentID string) ([]leads.LeadOption, error) {
	var out []leads.LeadOption
	if err := c.getJSON(ctx, "LeadOptions", &out, "leads", "agent", agentID, "name-email"); err != nil {
		return nil, err
	}
	return out, nil
}
