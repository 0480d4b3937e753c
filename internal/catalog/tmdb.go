package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"wepick/internal/genres"
)

const (
	defaultTMDBURL       = "https://api.themoviedb.org/3"
	defaultTMDBImageURL  = "https://image.tmdb.org/t/p/w500"
	defaultTMDBSiteURL   = "https://www.themoviedb.org"
	defaultTMDBMaxPages  = 3
	defaultTMDBPageDelay = 250 * time.Millisecond
	tmdbMinVoteCount     = 100
)

// TMDB searches The Movie Database discover endpoints.
type TMDB struct {
	source      *source
	baseURL     string
	imageURL    string
	apiKey      string
	accessToken string
	maxPages    int
	pageDelay   time.Duration
	logger      *slog.Logger
}

// TMDBOption configures the TMDB adapter during construction.
type TMDBOption func(*TMDB)

// WithTMDBBaseURL overrides the API base URL, mainly for tests.
func WithTMDBBaseURL(baseURL string) TMDBOption {
	return func(c *TMDB) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTMDBAPIKey sets the v3 API key sent as the api_key query parameter.
func WithTMDBAPIKey(key string) TMDBOption {
	return func(c *TMDB) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithTMDBAccessToken sets a v4 read access token sent as a bearer token.
func WithTMDBAccessToken(token string) TMDBOption {
	return func(c *TMDB) {
		c.accessToken = strings.TrimSpace(token)
	}
}

// WithTMDBPageDelay sets the minimum pause between consecutive requests.
func WithTMDBPageDelay(delay time.Duration) TMDBOption {
	return func(c *TMDB) {
		c.pageDelay = delay
	}
}

// WithTMDBMaxPages caps how many discover pages one search fetches.
func WithTMDBMaxPages(pages int) TMDBOption {
	return func(c *TMDB) {
		if pages > 0 {
			c.maxPages = pages
		}
	}
}

// NewTMDB constructs the general catalog adapter.
func NewTMDB(client *http.Client, logger *slog.Logger, opts ...TMDBOption) *TMDB {
	if logger == nil {
		logger = slog.Default()
	}

	c := &TMDB{
		baseURL:   defaultTMDBURL,
		imageURL:  defaultTMDBImageURL,
		maxPages:  defaultTMDBMaxPages,
		pageDelay: defaultTMDBPageDelay,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.source = newSource(string(SourceTMDB), client, c.pageDelay, logger)
	return c
}

type tmdbPage struct {
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Results    []json.RawMessage `json:"results"`
}

type tmdbItem struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Name          string   `json:"name"`
	OriginalTitle string   `json:"original_title"`
	OriginalName  string   `json:"original_name"`
	Overview      string   `json:"overview"`
	VoteAverage   *float64 `json:"vote_average"`
	PosterPath    string   `json:"poster_path"`
	ReleaseDate   string   `json:"release_date"`
	FirstAirDate  string   `json:"first_air_date"`
}

// Search runs a discover query for kind and returns up to maxPages pages of
// normalized candidates sorted by provider popularity. Provider failures are
// logged and end pagination; whatever was fetched before the failure is kept.
func (c *TMDB) Search(ctx context.Context, kind Kind, q Query) []Candidate {
	endpoint, dateField, op := c.discoverTarget(kind)
	values := c.discoverValues(dateField, q)

	var header http.Header
	if c.accessToken != "" {
		header = http.Header{"Authorization": []string{"Bearer " + c.accessToken}}
	}

	candidates := make([]Candidate, 0, c.maxPages*20)
	for page := 1; page <= c.maxPages; page++ {
		values.Set("page", strconv.Itoa(page))

		var payload tmdbPage
		if err := c.source.getJSON(ctx, op, endpoint, values, header, &payload); err != nil {
			c.logger.Warn("tmdb discover failed", "kind", kind, "page", page, "error", err)
			break
		}
		if len(payload.Results) == 0 {
			break
		}

		for _, raw := range payload.Results {
			candidate, err := c.normalize(kind, raw)
			if err != nil {
				c.logger.Debug("skipping malformed tmdb item", "error", err)
				continue
			}
			candidates = append(candidates, candidate)
		}

		if payload.TotalPages > 0 && page >= payload.TotalPages {
			break
		}
	}

	return candidates
}

func (c *TMDB) discoverTarget(kind Kind) (endpoint, dateField, op string) {
	if kind == KindSeries {
		return c.baseURL + "/discover/tv", "first_air_date", "discover tv"
	}
	return c.baseURL + "/discover/movie", "primary_release_date", "discover movie"
}

func (c *TMDB) discoverValues(dateField string, q Query) url.Values {
	values := url.Values{}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	values.Set("sort_by", "popularity.desc")
	values.Set("vote_count.gte", strconv.Itoa(tmdbMinVoteCount))
	if q.Language != "" {
		values.Set("language", q.Language)
	}

	if ids := genres.ProviderIDs(genres.ProviderTMDB, q.Likes); len(ids) > 0 {
		values.Set("with_genres", joinIDs(ids))
	}
	if ids := genres.ProviderIDs(genres.ProviderTMDB, q.Dislikes); len(ids) > 0 {
		values.Set("without_genres", joinIDs(ids))
	}

	if q.Decade > 0 {
		first, last := decadeBounds(q.Decade)
		values.Set(dateField+".gte", fmt.Sprintf("%04d-01-01", first))
		values.Set(dateField+".lte", fmt.Sprintf("%04d-12-31", last))
	}

	return values
}

func (c *TMDB) normalize(kind Kind, raw json.RawMessage) (Candidate, error) {
	var item tmdbItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return Candidate{}, err
	}

	candidate := Candidate{
		ID:       strconv.FormatInt(item.ID, 10),
		Title:    firstNonEmpty(item.Title, item.Name, item.OriginalTitle, item.OriginalName),
		Overview: strings.TrimSpace(item.Overview),
		Rating:   item.VoteAverage,
		Year:     yearFromDate(firstNonEmpty(item.ReleaseDate, item.FirstAirDate)),
		Source:   SourceTMDB,
		Raw:      raw,
	}
	if item.PosterPath != "" {
		candidate.PosterURL = c.imageURL + item.PosterPath
	}

	mediaType := "movie"
	if kind == KindSeries {
		mediaType = "tv"
	}
	candidate.DetailURL = fmt.Sprintf("%s/%s/%d", defaultTMDBSiteURL, mediaType, item.ID)

	return candidate, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
