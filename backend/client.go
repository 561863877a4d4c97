// Package backend is the REST client for the external verification service
// that owns agents, leads, documents and the scoring reports.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 4 << 10
)

// Client calls the verification backend. Every call is bounded by the
// configured timeout; a timeout surfaces as errors.ErrServiceUnavailable.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

type Option func(*options)

type options struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	tokenURL     string
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClientCredentials authenticates the dashboard to the backend using the
// OAuth2 client-credentials grant.
func WithClientCredentials(clientID, clientSecret, tokenURL string) Option {
	return func(o *options) {
		o.clientID = clientID
		o.clientSecret = clientSecret
		o.tokenURL = tokenURL
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[backend New] invalid base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	o := options{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if o.clientID != "" {
		if o.tokenURL == "" {
			return nil, fmt.Errorf("[backend New] token url is required with client credentials")
		}
		cc := &clientcredentials.Config{
			ClientID:     o.clientID,
			ClientSecret: o.clientSecret,
			TokenURL:     o.tokenURL,
		}
		httpClient = cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient))
	}

	return &Client{baseURL: u, http: httpClient, timeout: timeout}, nil
}

// StatusError is returned for non-2xx responses. It unwraps to the sentinel
// matching the status class.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[backend %s] status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[backend %s] status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return apperrors.ErrServiceUnavailable
	case status >= 500:
		return apperrors.ErrBackend
	default:
		return apperrors.ErrInvalidRequest
	}
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := *c.baseURL
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	return u.String()
}

type request struct {
	op          string
	method      string
	url         string
	body        io.Reader
	contentType string
}

// do executes req and hands a 2xx response to decode. The body is always closed.
func (c *Client) do(ctx context.Context, req request, decode func(*http.Response) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, req.body)
	if err != nil {
		return fmt.Errorf("[backend %s] build request: %w", req.op, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(req.op, "error").Observe(time.Since(start).Seconds())
		return c.transportError(ctx, req.op, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequests.WithLabelValues(req.op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	log.Debug().Str("op", req.op).Str("method", req.method).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:         req.op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
			kind:       kindForStatus(resp.StatusCode),
		}
	}
	if decode == nil {
		return nil
	}
	if err := decode(resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("[backend %s] %w: %w", req.op, apperrors.ErrServiceUnavailable, err)
		}
		return err
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	// The caller gave up: report cancellation as-is, it is not an outage.
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("[backend %s] %w", op, context.Canceled)
	}
	return fmt.Errorf("[backend %s] %w: %w", op, apperrors.ErrServiceUnavailable, err)
}

// errorMessage extracts {"message": "..."} or falls back to the raw text.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func decodeJSON(op string, out any) func(*http.Response) error {
	return func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("[backend %s] %w: %w", op, apperrors.ErrMalformedResponse, err)
		}
		return nil
	}
}

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) getJSON(ctx context.Context, op string, out any, segments ...string) error {
	return c.do(ctx, request{op: op, method: http.MethodGet, url: c.endpoint(segments...)}, decodeJSON(op, out))
}

func (c *Client) postJSON(ctx context.Context, op string, in, out any, segments ...string) error {
	body, err := jsonBody(in)
	if err != nil {
		return fmt.Errorf("[backend %s] encode: %w", op, err)
	}
	var decode func(*http.Response) error
	if out != nil {
		decode = decodeJSON(op, out)
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		url:         c.endpoint(segments...),
		body:        body,
		contentType: contentTypeJSON,
	}, decode)
}
