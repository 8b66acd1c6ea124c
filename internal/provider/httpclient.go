package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout   = 12 * time.Second
	DefaultUserAgent = "crypto-query-lab/1.0"
	maxResponseBytes = 32 << 20
)

// Options configures a concrete provider. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// HTTPClient performs single-attempt JSON GET requests against one upstream.
// Failures are returned as *FetchError tagged with the owning provider.
type HTTPClient struct {
	provider  string
	baseURL   string
	client    *http.Client
	userAgent string
	headers   http.Header
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *HTTPClient) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// NewHTTPClient creates a client for provider rooted at baseURL.
func NewHTTPClient(provider, baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		provider:  provider,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		headers:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newClient builds the HTTP client for provider from opts.
func (o Options) newClient(provider, defaultBase string, extra ...ClientOption) *HTTPClient {
	base := o.BaseURL
	if base == "" {
		base = defaultBase
	}
	opts := []ClientOption{
		WithTimeout(o.Timeout),
		WithUserAgent(o.UserAgent),
	}
	if o.HTTPClient != nil {
		// A caller-supplied client keeps its own timeout unless one is set explicitly.
		opts = append([]ClientOption{WithHTTPClient(o.HTTPClient)}, opts...)
	}
	return NewHTTPClient(provider, base, append(opts, extra...)...)
}

// GetJSON issues GET baseURL+path?query and decodes the body into out.
// It is attempted once; the caller's fallback chain provides resilience.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NetworkError(c.provider, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NetworkError(c.provider, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return NetworkError(c.provider, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return NetworkError(c.provider, fmt.Errorf("rate limited (429)"))
	}
	if resp.StatusCode != http.StatusOK {
		return NetworkError(c.provider, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return MalformedError(c.provider, fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
