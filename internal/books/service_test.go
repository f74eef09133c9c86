package books

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/result"
	"github.com/lepinkainen/libris/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	server *httptest.Server
	calls  atomic.Int64
}

func newFakeUpstream(t *testing.T, handler http.HandlerFunc) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) Calls() int64 {
	return f.calls.Load()
}

func newTestService(t *testing.T, upstream *fakeUpstream, retries int) *Service {
	t.Helper()
	policy := retry.New(retries)
	policy.Sleep = func(_ context.Context, _ time.Duration) error { return nil }

	client := NewClient(
		WithBaseURL(upstream.server.URL),
		WithHTTPClient(upstream.server.Client()),
		WithRetryPolicy(policy),
		WithRateLimiter(nil),
		WithMaxResults(20),
	)
	return NewService(client, cache.New(cache.NewMemoryStore()), 30*time.Minute, 24*time.Hour)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestSearchRejectsBlankTitle(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{}`))
	svc := newTestService(t, upstream, 0)

	for _, title := range []string{"", "   ", "\t\n"} {
		res := svc.Search(context.Background(), title)
		assert.False(t, res.IsSuccess)
		assert.Equal(t, 400, res.StatusCode)
		assert.Equal(t, result.CodeTitleRequired, res.ErrorCode)
	}
	assert.Equal(t, int64(0), upstream.Calls())
}

func TestGetDetailsRejectsBlankWorkID(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{}`))
	svc := newTestService(t, upstream, 0)

	for _, id := range []string{"", "   "} {
		res := svc.GetDetails(context.Background(), id)
		assert.False(t, res.IsSuccess)
		assert.Equal(t, 400, res.StatusCode)
		assert.Equal(t, result.CodeWorkIDRequired, res.ErrorCode)
	}
	assert.Equal(t, int64(0), upstream.Calls())
}

func TestSearchMinimalItem(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK,
		`{"items":[{"id":"123","volumeInfo":{"title":"Dune"}}]}`))
	svc := newTestService(t, upstream, 0)

	res := svc.Search(context.Background(), "dune")
	require.True(t, res.IsSuccess)
	assert.Equal(t, 200, res.StatusCode)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Dune", res.Value[0].Title)
	assert.Equal(t, []string{}, res.Value[0].Authors)
	assert.Nil(t, res.Value[0].FirstPublishYear)
	assert.Nil(t, res.Value[0].CoverURL)
}

func TestSearchSecondCallServedFromCache(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK,
		`{"items":[{"id":"1","volumeInfo":{"title":"Dune"}}]}`))
	svc := newTestService(t, upstream, 0)
	ctx := context.Background()

	first := svc.Search(ctx, "Dune")
	second := svc.Search(ctx, "Dune")

	assert.Equal(t, int64(1), upstream.Calls())

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestSearchCacheKeyIsCaseInsensitive(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{"items":[]}`))
	svc := newTestService(t, upstream, 0)
	ctx := context.Background()

	svc.Search(ctx, "DUNE")
	svc.Search(ctx, "dune")
	assert.Equal(t, int64(1), upstream.Calls())
}

func TestSearchEmptyResultSetIsSuccess(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{"totalItems":0}`))
	svc := newTestService(t, upstream, 0)

	res := svc.Search(context.Background(), "nothing")
	require.True(t, res.IsSuccess)
	assert.Equal(t, 200, res.StatusCode)
	assert.Empty(t, res.Value)
}

func TestSearchRetryBound(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusServiceUnavailable, "down"))
	svc := newTestService(t, upstream, 3)

	res := svc.Search(context.Background(), "dune")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 503, res.StatusCode)
	assert.Equal(t, result.CodeExternalAPIError, res.ErrorCode)
	assert.Equal(t, int64(1+3), upstream.Calls())
}

func TestSearchUpstreamClientErrorNotRetried(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusForbidden, "no"))
	svc := newTestService(t, upstream, 3)

	res := svc.Search(context.Background(), "dune")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 403, res.StatusCode)
	assert.Equal(t, result.CodeExternalAPIError, res.ErrorCode)
	assert.Equal(t, int64(1), upstream.Calls())
}

func TestSearchMalformedJSON(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{"items":[`))
	svc := newTestService(t, upstream, 0)

	res := svc.Search(context.Background(), "dune")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 502, res.StatusCode)
	assert.Equal(t, result.CodeInvalidResponse, res.ErrorCode)
}

func TestSearchTransportError(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{}`))
	svc := newTestService(t, upstream, 0)
	upstream.server.Close()

	res := svc.Search(context.Background(), "dune")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 503, res.StatusCode)
	assert.Equal(t, result.CodeNetworkError, res.ErrorCode)
}

func TestGetDetailsHappyPath(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{
		"volumeInfo":{
			"title":"Dune",
			"description":"Sand.",
			"categories":["Fiction"],
			"imageLinks":{"thumbnail":"http://img/t&edge=curl","small":"http://img/s&zoom=1"}
		}}`))
	svc := newTestService(t, upstream, 0)

	res := svc.GetDetails(context.Background(), "abc123")
	require.True(t, res.IsSuccess)
	require.NotNil(t, res.Value)
	assert.Equal(t, "abc123", res.Value.WorkID)
	assert.Equal(t, "Dune", res.Value.Title)
	assert.Equal(t, []string{"https://img/t", "https://img/s"}, res.Value.CoverURLs)
}

func TestGetDetailsNotFound(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusNotFound, `{"error":"missing"}`))
	svc := newTestService(t, upstream, 3)

	res := svc.GetDetails(context.Background(), "missing")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 404, res.StatusCode)
	assert.Equal(t, result.CodeNotFound, res.ErrorCode)
	// 404 is not a transient failure.
	assert.Equal(t, int64(1), upstream.Calls())
}

func TestGetDetailsMissingVolumeInfo(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{"id":"abc"}`))
	svc := newTestService(t, upstream, 0)

	res := svc.GetDetails(context.Background(), "abc")
	assert.False(t, res.IsSuccess)
	assert.Equal(t, 502, res.StatusCode)
	assert.Equal(t, result.CodeInvalidResponse, res.ErrorCode)
}

func TestGetDetailsCached(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusOK, `{"volumeInfo":{"title":"Dune"}}`))
	svc := newTestService(t, upstream, 0)
	ctx := context.Background()

	svc.GetDetails(ctx, "abc")
	res := svc.GetDetails(ctx, "abc")
	assert.Equal(t, int64(1), upstream.Calls())
	require.True(t, res.IsSuccess)
	assert.Equal(t, "Dune", res.Value.Title)
}

func TestFailureEnvelopesAreCachedToo(t *testing.T) {
	upstream := newFakeUpstream(t, jsonHandler(http.StatusNotFound, ``))
	svc := newTestService(t, upstream, 0)
	ctx := context.Background()

	svc.GetDetails(ctx, "gone")
	res := svc.GetDetails(ctx, "gone")

	// The factory returns an envelope either way; the envelope is what
	// gets cached, failures included.
	assert.Equal(t, int64(1), upstream.Calls())
	assert.Equal(t, result.CodeNotFound, res.ErrorCode)
}
