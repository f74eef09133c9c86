package books

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/jsonx"
	"github.com/lepinkainen/libris/internal/result"
	"github.com/lepinkainen/libris/internal/retry"
)

// Service is the lookup orchestrator: it validates input, consults the
// cache, and on a miss fetches and normalizes the upstream response.
// Every call terminates in exactly one result envelope.
type Service struct {
	client     *Client
	cache      *cache.Cache
	searchTTL  time.Duration
	detailsTTL time.Duration
}

// NewService wires the client and cache into a lookup service.
func NewService(client *Client, c *cache.Cache, searchTTL, detailsTTL time.Duration) *Service {
	return &Service{
		client:     client,
		cache:      c,
		searchTTL:  searchTTL,
		detailsTTL: detailsTTL,
	}
}

// Search looks up books by title. Empty result sets are a success with
// an empty list, never an error.
func (s *Service) Search(ctx context.Context, title string) *result.Result[[]SearchResult] {
	if strings.TrimSpace(title) == "" {
		return result.Failure[[]SearchResult]("Title is required", 400, result.CodeTitleRequired)
	}

	key := searchCacheKey(title)
	res := cache.GetOrCreate(ctx, s.cache, key, s.searchTTL,
		func(ctx context.Context) (*result.Result[[]SearchResult], error) {
			return s.fetchSearch(ctx, title), nil
		})

	if res == nil {
		return result.Success([]SearchResult{})
	}
	return res
}

// GetDetails looks up a single volume by its work identifier.
func (s *Service) GetDetails(ctx context.Context, workID string) *result.Result[*BookDetails] {
	if strings.TrimSpace(workID) == "" {
		slog.Warn("Empty work ID provided")
		return result.Failure[*BookDetails]("Work ID is required", 400, result.CodeWorkIDRequired)
	}

	key := detailsCacheKey(workID)
	res := cache.GetOrCreate(ctx, s.cache, key, s.detailsTTL,
		func(ctx context.Context) (*result.Result[*BookDetails], error) {
			return s.fetchDetails(ctx, workID), nil
		})

	if res == nil {
		return result.Failure[*BookDetails]("Book details not found", 404, result.CodeNotFound)
	}
	return res
}

func searchCacheKey(title string) string {
	return fmt.Sprintf("search:%s", strings.ToLower(title))
}

func detailsCacheKey(workID string) string {
	return fmt.Sprintf("details:%s", workID)
}

// fetchSearch performs the upstream search and maps every failure mode
// to an envelope; it never returns an error to the cache layer.
func (s *Service) fetchSearch(ctx context.Context, title string) *result.Result[[]SearchResult] {
	resp, err := s.client.getSearch(ctx, title)
	if err != nil {
		return fetchFailure[[]SearchResult](err, "book search", "Network error occurred while searching",
			"Unexpected error during search")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logUpstreamError("search", resp)
		return result.Failure[[]SearchResult](
			"Failed to fetch results from external service",
			resp.StatusCode, result.CodeExternalAPIError)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Failed to read search response body", "title", title, "error", err)
		return result.Failure[[]SearchResult](
			"Network error occurred while searching", 503, result.CodeNetworkError)
	}

	doc, err := jsonx.Parse(body)
	if err != nil {
		slog.Error("Failed to parse search response", "title", title, "error", err)
		return result.Failure[[]SearchResult](
			"Invalid response from book service", 502, result.CodeInvalidResponse)
	}

	if !doc.Get("items").IsArray() {
		slog.Warn("No items found in search response", "title", title)
	}

	return result.Success(mapSearchResults(doc))
}

// fetchDetails performs the upstream details fetch. A 404 maps to
// NOT_FOUND, distinct from the search path where empty results succeed.
func (s *Service) fetchDetails(ctx context.Context, workID string) *result.Result[*BookDetails] {
	resp, err := s.client.getDetails(ctx, workID)
	if err != nil {
		return fetchFailure[*BookDetails](err, "work details", "Network error occurred while fetching details",
			"Unexpected error fetching details")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		slog.Warn("Book not found", "workId", workID)
		return result.Failure[*BookDetails]("Book not found", 404, result.CodeNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logUpstreamError("details", resp)
		return result.Failure[*BookDetails](
			"Failed to fetch details from external service",
			resp.StatusCode, result.CodeExternalAPIError)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Failed to read details response body", "workId", workID, "error", err)
		return result.Failure[*BookDetails](
			"Network error occurred while fetching details", 503, result.CodeNetworkError)
	}

	doc, err := jsonx.Parse(body)
	if err != nil {
		slog.Error("Failed to parse details response", "workId", workID, "error", err)
		return result.Failure[*BookDetails](
			"Invalid response from book service", 502, result.CodeInvalidResponse)
	}

	details, ok := mapBookDetails(workID, doc)
	if !ok {
		slog.Warn("Malformed details document", "workId", workID)
		return result.Failure[*BookDetails](
			"Invalid response format", 502, result.CodeInvalidResponse)
	}

	return result.Success(details)
}

// fetchFailure classifies a client error: transport failures map to
// NETWORK_ERROR, anything else (including cancellation) is unexpected.
func fetchFailure[T any](err error, op, networkMsg, unexpectedMsg string) *result.Result[T] {
	if retry.IsTransportError(err) {
		slog.Error("HTTP request failed", "op", op, "error", err)
		return result.Failure[T](networkMsg, 503, result.CodeNetworkError)
	}
	slog.Error("Unexpected error during upstream call", "op", op, "error", err)
	return result.Failure[T](unexpectedMsg, 500, result.CodeUnexpectedError)
}

// logUpstreamError reads a bounded slice of the error body for the log;
// the envelope itself only carries a safe summary.
func logUpstreamError(op string, resp *http.Response) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if err != nil || msg == "" {
		msg = resp.Status
	}
	slog.Error("External API error", "op", op, "status", resp.StatusCode, "message", msg)
}
