package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultCatalogPath is the listing resource relative to the API base.
	DefaultCatalogPath = "/catalog"
	defaultUserAgent   = "gryadka"
)

// Client reads products and facets from the catalog API.
type Client struct {
	http        *http.Client
	baseURL     string
	catalogPath string
	userAgent   string
	token       string
	timeout     time.Duration
	limiter     *rate.Limiter
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped, not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithCatalogPath overrides the listing resource path, e.g. "/api/products".
func WithCatalogPath(path string) Option {
	return func(c *Client) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}

		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		c.catalogPath = strings.TrimRight(path, "/")
	}
}

// WithUserAgent overrides the HTTP user agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = agent
		}
	}
}

// WithToken attaches an opaque bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds every individual request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit throttles outgoing requests to rps per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse API URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("API URL %q must use http or https", baseURL)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("API URL %q has no host", baseURL)
	}

	c := &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(parsed.String(), "/"),
		catalogPath: DefaultCatalogPath,
		userAgent:   defaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Copy so the caller's client keeps its own transport.
	httpClient := *c.http

	var transport http.RoundTripper = loggingTransport{base: httpClient.Transport}
	if c.token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	httpClient.Transport = transport
	c.http = &httpClient

	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches one page of products matching q.
func (c *Client) List(ctx context.Context, q Query) ([]ProductSummary, error) {
	var products []ProductSummary
	if err := c.get(ctx, "", q.Encode(), &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if products == nil {
		products = []ProductSummary{}
	}

	return products, nil
}

// Filters fetches the category and supplier vocabularies.
func (c *Client) Filters(ctx context.Context) (Facets, error) {
	var facets Facets
	if err := c.get(ctx, "/filters", "", &facets); err != nil {
		return Facets{}, fmt.Errorf("load filters: %w", err)
	}

	return facets, nil
}

// Product fetches a single product by slug.
func (c *Client) Product(ctx context.Context, slug string) (ProductSummary, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductSummary{}, ErrProductNotFound
	}

	var product ProductSummary
	if err := c.get(ctx, "/"+url.PathEscape(slug), "", &product); err != nil {
		return ProductSummary{}, fmt.Errorf("get product %s: %w", slug, err)
	}

	return product, nil
}

func (c *Client) get(ctx context.Context, path, rawQuery string, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + c.catalogPath + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
