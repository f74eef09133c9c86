// Package retry wraps outbound HTTP calls with bounded exponential
// backoff over transient upstream failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultRetries is the number of additional attempts beyond the first.
const DefaultRetries = 3

// Operation performs one outbound HTTP call.
type Operation func(ctx context.Context) (*http.Response, error)

// Policy retries an Operation on HTTP 429, HTTP 5xx, or a transport
// error. Non-retryable responses (404, 400, ...) pass through on the
// first attempt; after the retries are exhausted the last response or
// error is returned unchanged.
type Policy struct {
	// Retries is the number of additional attempts beyond the first.
	Retries int

	// Sleep pauses between attempts. Defaults to a context-aware timer;
	// overridable in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Policy with the given retry count.
func New(retries int) *Policy {
	if retries < 0 {
		retries = 0
	}
	return &Policy{Retries: retries}
}

// Do executes op, retrying transient failures. The backoff before
// attempt n is 2^n seconds. Cancelling ctx aborts both the call and any
// pending backoff sleep.
func (p *Policy) Do(ctx context.Context, op Operation) (*http.Response, error) {
	var (
		lastResp *http.Response
		lastErr  error
	)

	for attempt := 0; ; attempt++ {
		resp, err := op(ctx)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastResp, lastErr = resp, err
		if attempt >= p.Retries {
			return lastResp, lastErr
		}

		// The retried response is never read; drain it so the
		// connection can be reused.
		if resp != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
		}

		delay := backoffDelay(attempt + 1)
		slog.Warn("Retrying upstream request",
			"attempt", attempt+1,
			"delay", delay,
			"cause", causeString(resp, err))

		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func causeString(resp *http.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

// IsTransportError reports whether err came from the transport rather
// than an HTTP response, excluding caller-driven cancellation.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
