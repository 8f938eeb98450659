package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Client posts table states to a query server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}

// QueryFunc returns a query function posting each state to the server.
// Non-2xx replies become errors wrapping domain.ErrQueryFailed.
func QueryFunc[T any](c *Client) ports.QueryFunc[T] {
	return func(ctx context.Context, state domain.TableState) (ports.QueryResult[T], error) {
		var result ports.QueryResult[T]

		body, err := json.Marshal(state)
		if err != nil {
			return result, fmt.Errorf("failed to encode table state: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/query", bytes.NewReader(body))
		if err != nil {
			return result, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return result, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return result, fmt.Errorf("%w: %s: %s", domain.ErrQueryFailed, resp.Status, readError(resp.Body))
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return result, fmt.Errorf("%w: invalid response: %w", domain.ErrQueryFailed, err)
		}
		return result, nil
	}
}

func readError(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var e ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		if len(e.Details) > 0 {
			return e.Error + " (" + strings.Join(e.Details, "; ") + ")"
		}
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}
