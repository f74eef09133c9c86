package books

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/lepinkainen/libris/internal/jsonx"
)

// coverSizes is the fixed order of image link variants collected into
// BookDetails.CoverURLs.
var coverSizes = [...]string{"thumbnail", "small", "medium", "large"}

// mapSearchResults converts a raw search document into result records.
// Items without a volumeInfo object or a non-empty title are skipped;
// a malformed item never fails the batch.
func mapSearchResults(doc jsonx.Element) []SearchResult {
	items := doc.Get("items")
	if !items.IsArray() {
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, items.Len())
	for _, item := range items.Array() {
		info := item.Get("volumeInfo")
		if !info.Exists() {
			slog.Warn("Skipping search item without volumeInfo")
			continue
		}

		title, _ := info.Get("title").String()
		if title == "" {
			slog.Warn("Skipping search item without title")
			continue
		}

		record := SearchResult{
			Title:            title,
			Authors:          stringList(info.Get("authors")),
			FirstPublishYear: publishYear(info.Get("publishedDate")),
			CoverURL:         coverLink(info.Get("imageLinks").Get("thumbnail")),
			AverageRating:    floatPtr(info.Get("averageRating")),
			RatingsCount:     intPtr(info.Get("ratingsCount")),
		}
		if id, ok := item.Get("id").String(); ok {
			record.WorkID = id
		}

		results = append(results, record)
	}
	return results
}

// mapBookDetails converts a raw single-volume document. Unlike the
// search case there is only one document, so a missing volumeInfo or
// title invalidates the whole call.
func mapBookDetails(workID string, doc jsonx.Element) (*BookDetails, bool) {
	info := doc.Get("volumeInfo")
	if !info.Exists() {
		return nil, false
	}

	title, _ := info.Get("title").String()
	if title == "" {
		return nil, false
	}

	details := &BookDetails{
		WorkID:        workID,
		Title:         title,
		Subjects:      stringList(info.Get("categories")),
		AverageRating: floatPtr(info.Get("averageRating")),
		RatingsCount:  intPtr(info.Get("ratingsCount")),
	}

	if desc, ok := info.Get("description").String(); ok {
		details.Description = &desc
	}

	details.CoverURLs = []string{}
	images := info.Get("imageLinks")
	for _, size := range coverSizes {
		if link, ok := images.Get(size).String(); ok && link != "" {
			details.CoverURLs = append(details.CoverURLs, normalizeCoverURL(link))
		}
	}

	return details, true
}

// normalizeCoverURL forces https and strips known tracking fragments.
// Total over its input: never fails, order of fragments is irrelevant.
func normalizeCoverURL(link string) string {
	link = strings.Replace(link, "http://", "https://", 1)
	link = strings.ReplaceAll(link, "&edge=curl", "")
	link = strings.ReplaceAll(link, "&zoom=1", "")
	return link
}

// stringList collects the string entries of an array element, dropping
// empty strings. Missing or wrong-kind fields yield an empty list.
func stringList(el jsonx.Element) []string {
	if !el.IsArray() {
		return []string{}
	}
	out := make([]string, 0, el.Len())
	for _, entry := range el.Array() {
		if s, ok := entry.String(); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// publishYear extracts the leading year from a published date such as
// "1965" or "1965-06-01". Returns nil when unparsable.
func publishYear(el jsonx.Element) *int {
	dateStr, ok := el.String()
	if !ok || len(dateStr) < 4 {
		return nil
	}
	year, err := strconv.Atoi(dateStr[:4])
	if err != nil {
		return nil
	}
	return &year
}

func coverLink(el jsonx.Element) *string {
	link, ok := el.String()
	if !ok || link == "" {
		return nil
	}
	normalized := normalizeCoverURL(link)
	return &normalized
}

func floatPtr(el jsonx.Element) *float64 {
	if v, ok := el.Float(); ok {
		return &v
	}
	return nil
}

func intPtr(el jsonx.Element) *int {
	if v, ok := el.Int(); ok {
		return &v
	}
	return nil
}
