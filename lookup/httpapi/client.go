package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/lookup"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 200 * time.Millisecond
)

// Client is a lookup.Service backed by a remote Server.
type Client struct {
	base        *url.URL
	http        *http.Client
	limiter     *rate.Limiter
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

var _ lookup.Service = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc != nil {
			c.http = hc
		}
		return nil
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) error {
		if rps < 0 {
			return fmt.Errorf("rate limit must not be negative, got %v", rps)
		}
		if rps == 0 {
			c.limiter = nil
			return nil
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		return nil
	}
}

// WithRequestTimeout bounds each attempt.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithRetries sets the attempt budget and the initial backoff delay.
func WithRetries(maxAttempts int, delay time.Duration) ClientOption {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return lookup.ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = delay
		return nil
	}
}

// WithClientLogger sets a custom logger.
// Default is slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a Client for the server at endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	base, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}

	c := &Client{
		base:        base,
		http:        &http.Client{},
		timeout:     DefaultRequestTimeout,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Search queries the remote /search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]*core.Record, error) {
	var resp searchResponse
	if err := c.get(ctx, "/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}

	records := make([]*core.Record, 0, len(resp.Results))
	for _, hit := range resp.Results {
		records = append(records, &core.Record{Id: core.ID(hit.Id), Title: hit.Title})
	}
	return records, nil
}

// Enrich fetches the genres of record from the remote service.
func (c *Client) Enrich(ctx context.Context, record *core.Record) ([]string, error) {
	var resp genresResponse
	path := "/titles/" + url.PathEscape(string(record.Id)) + "/genres"
	if err := c.get(ctx, path, url.Values{"title": {record.Title}}, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := *c.base
	target.Path += path
	target.RawQuery = params.Encode()

	return lookup.RetryWithBackoff(ctx, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debug("request failed", "url", target.String(), "err", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", lookup.ErrNotFound, target.Path)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return decodeStatusError(resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s: %w", target.Path, err)
		}
		return nil
	}, c.maxAttempts, c.retryDelay)
}

func decodeStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload errorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
