package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// Client talks JSON-over-HTTP to the analysis engine. Responses are
// handed back verbatim; the engine's own failure payloads travel
// through untouched so callers see exactly what the engine said.
type Client struct {
	client  *http.Client
	baseURL string
}

// Option configures Client.
type Option func(*Client)

// WithClient sets the HTTP client (default: 30s timeout).
func WithClient(c *http.Client) Option {
	return func(e *Client) {
		e.client = c
	}
}

// NewClient returns a Client for the engine at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserToken implements ports.EngineClient.
func (c *Client) UserToken(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, "/user-token", nil)
}

// SendQuery implements ports.EngineClient.
func (c *Client) SendQuery(ctx context.Context, req ports.EngineQuery) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to encode engine query", err)
	}
	return c.post(ctx, "/query", body)
}

// StartSimulation implements ports.EngineClient.
func (c *Client) StartSimulation(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/simulation/start", body)
}

// StepSimulation implements ports.EngineClient.
func (c *Client) StepSimulation(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/simulation/step", body)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to build engine request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "engine unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to read engine response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.E(errors.KindInternal, "engine returned "+resp.Status+": "+string(payload))
	}
	return payload, nil
}

var _ ports.EngineClient = (*Client)(nil)
