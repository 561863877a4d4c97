package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/lead-dashboard/agents"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// Login exchanges credentials for the agent identity. Any 4xx answer is
// reported as errors.ErrInvalidCredentials carrying the backend's message.
func (c *Client) Login(ctx context.Context, creds agents.Credentials) (agents.Identity, error) {
	var identity agents.Identity
	err := c.postJSON(ctx, "Login", creds, &identity, "agents", "login")
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			statusErr.kind = apperrors.ErrInvalidCredentials
		}
		return agents.Identity{}, err
	}
	if !identity.Complete() {
		return agents.Identity{}, fmt.Errorf("[backend Login] %w: incomplete agent identity", apperrors.ErrMalformedResponse)
	}
	return identity, nil
}

func (c *Client) Register(ctx context.Context, reg agents.Registration) error {
	return c.postJSON(ctx, "Register", reg, nil, "agents", "register")
}
