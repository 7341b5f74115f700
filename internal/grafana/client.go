// ABOUTME: Authenticated REST client for the Grafana HTTP API.
// ABOUTME: Fails loudly on non-2xx responses and optionally caches GET payloads.

package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/grafana-mcp/internal/cache"
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// maxDebugBody bounds how much of a response body is logged in debug mode.
const maxDebugBody = 1000

// ErrInvalidBaseURL indicates the configured Grafana URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid grafana base URL")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string // Grafana's "message" field when present
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("grafana %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsNotFound reports whether err is a Grafana 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config holds configuration for the Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; Timeout is ignored when set
	Cache      *cache.Cache // optional GET response cache
	Logger     *slog.Logger
	Debug      bool // log request and response summaries
	UserAgent  string
}

// Client talks to one Grafana instance.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	cache     *cache.Cache
	logger    *slog.Logger
	debug     bool
	userAgent string
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "grafana-mcp"
	}

	return &Client{
		baseURL:   u,
		apiKey:    cfg.APIKey,
		http:      httpClient,
		cache:     cfg.Cache,
		logger:    logger.With("component", "grafana"),
		debug:     cfg.Debug,
		userAgent: userAgent,
	}, nil
}

// BaseURL returns the Grafana URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint builds an absolute URL for an already-escaped API path.
func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		c.logger.Debug("grafana request", "method", method, "url", target)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("grafana request failed", "method", method, "path", path, "error", err)
		return nil, nil, fmt.Errorf("grafana %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("grafana response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration", time.Since(start),
			"body", truncate(data, maxDebugBody),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       truncate(bytes.TrimSpace(data), maxDebugBody),
		}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		c.logger.Error("grafana API error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, nil, apiErr
	}

	return data, resp.Header, nil
}

// getJSON performs a GET and decodes the JSON body into out, consulting the
// cache first when one is configured.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	key := c.endpoint(path, query)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			c.logger.Debug("grafana cache hit", "path", path)
			return decode(data, out)
		}
	}

	data, _, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := decode(data, out); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(key, data)
	}
	return nil
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding grafana response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Health reports the Grafana server's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil {
		return nil, err
	}
	var info HealthInfo
	if err := decode(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
