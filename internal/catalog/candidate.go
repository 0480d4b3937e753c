package catalog

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Source names the catalog a candidate came from.
type Source string

const (
	SourceTMDB  Source = "tmdb"
	SourceJikan Source = "jikan"
)

// Kind selects the TMDb discover endpoint.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Candidate is a provider-agnostic recommendation record.
type Candidate struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Overview  string          `json:"overview,omitempty"`
	Rating    *float64        `json:"rating,omitempty"`
	PosterURL string          `json:"posterUrl,omitempty"`
	Year      *int            `json:"year,omitempty"`
	Source    Source          `json:"source"`
	DetailURL string          `json:"detailUrl,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Query carries the preference filters for one provider search.
// A zero Decade disables the release-date filter.
type Query struct {
	Likes    []string
	Dislikes []string
	Decade   int
	Language string
}

// decadeBounds returns the inclusive first and last year of decade.
func decadeBounds(decade int) (int, int) {
	return decade, decade + 9
}

// yearFromDate extracts the leading year of an ISO-8601 date such as
// "1999-03-31" or "2009-04-05T00:00:00+00:00".
func yearFromDate(value string) *int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return nil
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
