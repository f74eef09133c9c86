package books

// SearchResult is one book in a title search response.
type SearchResult struct {
	// WorkID is the upstream volume identifier, empty when missing.
	WorkID string `json:"workId"`

	// Title is always non-empty; items without one are skipped.
	Title string `json:"title"`

	// Authors in upstream order, empty when the field is missing.
	Authors []string `json:"authors"`

	// FirstPublishYear parsed from the published date, nil if unparsable.
	FirstPublishYear *int `json:"firstPublishYear"`

	// CoverURL is the normalized thumbnail link, nil when absent.
	CoverURL *string `json:"coverUrl"`

	AverageRating *float64 `json:"averageRating"`
	RatingsCount  *int     `json:"ratingsCount"`
}

// BookDetails is the full record for a single volume.
type BookDetails struct {
	WorkID      string  `json:"workId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`

	// Subjects in upstream order, empty when the field is missing.
	Subjects []string `json:"subjects"`

	// CoverURLs across the known size variants (thumbnail, small,
	// medium, large), normalized, absent sizes omitted.
	CoverURLs []string `json:"coverUrls"`

	AverageRating *float64 `json:"averageRating"`
	RatingsCount  *int     `json:"ratingsCount"`
}
