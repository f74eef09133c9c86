package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestPassThroughOnSuccess(t *testing.T) {
	p := New(3)
	p.Sleep = noSleep

	calls := 0
	resp, err := p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		calls++
		return response(http.StatusOK), nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestNonRetryableStatusPassesThrough(t *testing.T) {
	p := New(3)
	p.Sleep = noSleep

	calls := 0
	resp, err := p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		calls++
		return response(http.StatusNotFound), nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestRetriesExhaustedOnServerError(t *testing.T) {
	p := New(3)
	p.Sleep = noSleep

	calls := 0
	resp, err := p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		calls++
		return response(http.StatusServiceUnavailable), nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 1+3, calls)
}

func TestRetriesOn429(t *testing.T) {
	p := New(1)
	p.Sleep = noSleep

	calls := 0
	resp, err := p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		calls++
		if calls == 1 {
			return response(http.StatusTooManyRequests), nil
		}
		return response(http.StatusOK), nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestTransportErrorRetriedThenReturned(t *testing.T) {
	p := New(2)
	p.Sleep = noSleep

	transportErr := errors.New("connection refused")
	calls := 0
	resp, err := p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		calls++
		return nil, transportErr
	})
	assert.Nil(t, resp)
	assert.Equal(t, transportErr, err)
	assert.Equal(t, 3, calls)
}

func TestBackoffDoubles(t *testing.T) {
	p := New(2)

	var delays []time.Duration
	p.Sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, _ = p.Do(context.Background(), func(_ context.Context) (*http.Response, error) {
		return response(http.StatusInternalServerError), nil
	})

	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestCancellationAbortsBackoff(t *testing.T) {
	p := New(5)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	resp, err := p.Do(ctx, func(_ context.Context) (*http.Response, error) {
		calls++
		cancel()
		return response(http.StatusInternalServerError), nil
	})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsTransportError(t *testing.T) {
	assert.False(t, IsTransportError(nil))
	assert.False(t, IsTransportError(context.Canceled))
	assert.False(t, IsTransportError(context.DeadlineExceeded))
	assert.True(t, IsTransportError(errors.New("dial tcp: connection refused")))
}
