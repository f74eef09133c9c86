package books

import (
	"context"
	"net/http"
)

// getSearch fetches the raw search response for a title.
func (c *Client) getSearch(ctx context.Context, title string) (*http.Response, error) {
	return c.get(ctx, c.searchURL(title))
}

// getDetails fetches the raw single-volume document.
func (c *Client) getDetails(ctx context.Context, workID string) (*http.Response, error) {
	return c.get(ctx, c.detailsURL(workID))
}

// get executes one GET through the retry policy. Each attempt waits on
// the rate limiter first so retries cannot stampede the upstream.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	return c.retryPolicy.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		return c.httpClient.Do(req)
	})
}
