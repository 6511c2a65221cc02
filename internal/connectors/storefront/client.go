package storefront

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.CatalogClient = (*Client)(nil)

// maxErrorBody bounds how much of an error response body is kept for
// diagnostics.
const maxErrorBody = 2048

// Client talks to the storefront's listing and enrichment endpoints using
// an operator-supplied session context. It owns request pacing; it does
// not mutate any shared state.
type Client struct {
	cfg      Config
	http     *http.Client
	sessions driven.SessionStore
	pacer    *Pacer
}

// NewClient creates a storefront client. The session context is fetched
// lazily per request so an operator-supplied refresh between runs is
// picked up without rebuilding the client.
func NewClient(cfg Config, sessions driven.SessionStore) *Client {
	cfg.normalise()
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		sessions: sessions,
		pacer:    NewPacer(cfg.RequestDelay),
	}
}

// Validate performs a one-item listing request to check the session
// context is accepted.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.ListPage(ctx, 0, 1)
	if err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("%w: %w", domain.ErrSessionStale, err)
		}
		return err
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Pacer returns the request pacer for external inspection.
func (c *Client) Pacer() *Pacer {
	return c.pacer
}

// postJSON issues one paced, authenticated POST and returns the response
// body. Non-2xx statuses are returned as *APIError; a 429 additionally
// updates the pacer.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	session, err := c.sessions.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", session.Cookie)
	req.Header.Set("X-CSRF-Token", session.AuthToken)

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacer wait: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.pacer.Observe(resp)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get(HeaderRetryAfter))
		return nil, &RateLimitError{RetryAfter: time.Duration(retryAfter) * time.Second}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(snippet),
			URL:        url,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
