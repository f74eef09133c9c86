// Package books talks to the external book catalog API and turns its
// semi-structured responses into stable, typed results behind a cache.
package books

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/libris/internal/ratelimit"
	"github.com/lepinkainen/libris/internal/retry"
)

const (
	defaultBaseURL       = "https://www.googleapis.com/books/v1"
	defaultMaxResults    = 20
	defaultRatePerSecond = 4
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues catalog requests through the retry policy and rate
// limiter.
type Client struct {
	baseURL     string
	apiKey      string
	maxResults  int
	httpClient  HTTPDoer
	retryPolicy *retry.Policy
	rateLimiter *ratelimit.Limiter
}

// NewClient creates a catalog API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     defaultBaseURL,
		maxResults:  defaultMaxResults,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		retryPolicy: retry.New(retry.DefaultRetries),
		rateLimiter: ratelimit.New("catalog", defaultRatePerSecond),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the catalog API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithAPIKey adds an API key to every request.
func WithAPIKey(key string) Option {
	return func(client *Client) {
		client.apiKey = key
	}
}

// WithMaxResults caps the number of search hits requested upstream.
func WithMaxResults(n int) Option {
	return func(client *Client) {
		if n > 0 {
			client.maxResults = n
		}
	}
}

// WithRetries sets the number of retry attempts beyond the first.
func WithRetries(n int) Option {
	return func(client *Client) {
		client.retryPolicy = retry.New(n)
	}
}

// WithRetryPolicy replaces the whole retry policy.
func WithRetryPolicy(p *retry.Policy) Option {
	return func(client *Client) {
		if p != nil {
			client.retryPolicy = p
		}
	}
}

// WithRateLimiter sets a custom rate limiter. A nil limiter disables
// rate limiting.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

func (c *Client) searchURL(title string) string {
	endpoint := fmt.Sprintf("%s/volumes?q=intitle:%s&maxResults=%d",
		c.baseURL, url.QueryEscape(title), c.maxResults)
	return c.withKey(endpoint)
}

func (c *Client) detailsURL(workID string) string {
	endpoint := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(workID))
	if c.apiKey == "" {
		return endpoint
	}
	return fmt.Sprintf("%s?key=%s", endpoint, url.QueryEscape(c.apiKey))
}

func (c *Client) withKey(endpoint string) string {
	if c.apiKey == "" {
		return endpoint
	}
	return fmt.Sprintf("%s&key=%s", endpoint, url.QueryEscape(c.apiKey))
}
