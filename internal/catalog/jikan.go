package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"wepick/internal/genres"
)

const (
	defaultJikanURL       = "https://api.jikan.moe/v4"
	defaultJikanLimit     = 60
	defaultJikanMaxGenres = 5
	// Jikan allows 3 requests per second.
	defaultJikanDelay = 350 * time.Millisecond
	// Jikan rejects page sizes above 25.
	jikanMaxPageSize = 25
)

// Jikan searches the Jikan (MyAnimeList) anime endpoint.
type Jikan struct {
	source    *source
	baseURL   string
	limit     int
	maxGenres int
	delay     time.Duration
	logger    *slog.Logger
}

// JikanOption configures the Jikan adapter during construction.
type JikanOption func(*Jikan)

// WithJikanBaseURL overrides the API base URL, mainly for tests.
func WithJikanBaseURL(baseURL string) JikanOption {
	return func(c *Jikan) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithJikanDelay sets the minimum pause between consecutive requests.
func WithJikanDelay(delay time.Duration) JikanOption {
	return func(c *Jikan) {
		c.delay = delay
	}
}

// WithJikanLimit sets the overall number of items requested per search.
func WithJikanLimit(limit int) JikanOption {
	return func(c *Jikan) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// NewJikan constructs the anime catalog adapter.
func NewJikan(client *http.Client, logger *slog.Logger, opts ...JikanOption) *Jikan {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Jikan{
		baseURL:   defaultJikanURL,
		limit:     defaultJikanLimit,
		maxGenres: defaultJikanMaxGenres,
		delay:     defaultJikanDelay,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.source = newSource(string(SourceJikan), client, c.delay, logger)
	return c
}

type jikanResponse struct {
	Data []json.RawMessage `json:"data"`
}

type jikanGenre struct {
	MalID int `json:"mal_id"`
}

type jikanImage struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type jikanAnime struct {
	MalID        int      `json:"mal_id"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	TitleEnglish string   `json:"title_english"`
	Synopsis     string   `json:"synopsis"`
	Score        *float64 `json:"score"`
	Year         *int     `json:"year"`
	Type         string   `json:"type"`
	Episodes     *int     `json:"episodes"`
	Aired        struct {
		From string `json:"from"`
	} `json:"aired"`
	Images struct {
		JPG  jikanImage `json:"jpg"`
		WebP jikanImage `json:"webp"`
	} `json:"images"`
	Genres         []jikanGenre `json:"genres"`
	ExplicitGenres []jikanGenre `json:"explicit_genres"`
	Themes         []jikanGenre `json:"themes"`
	Demographics   []jikanGenre `json:"demographics"`
}

type jikanEntry struct {
	anime jikanAnime
	raw   json.RawMessage
}

// Search queries Jikan once per liked genre, sequentially, and merges the
// responses. Jikan has no server-side genre exclusion, so disliked genres and
// the decade are applied to the merged set. With no mappable liked genre the
// search returns nothing rather than an unfiltered dump of the catalog.
func (c *Jikan) Search(ctx context.Context, q Query) []Candidate {
	likeIDs := genres.ProviderIDs(genres.ProviderJikan, q.Likes)
	if len(likeIDs) == 0 {
		c.logger.Debug("jikan search skipped: no mappable genres", "likes", q.Likes)
		return nil
	}
	if len(likeIDs) > c.maxGenres {
		likeIDs = likeIDs[:c.maxGenres]
	}

	perGenre := min(ceilDiv(c.limit, len(likeIDs)), jikanMaxPageSize)

	var responses [][]jikanEntry
	for _, id := range likeIDs {
		entries, err := c.fetchGenre(ctx, id, perGenre)
		if err != nil {
			c.logger.Warn("jikan genre request failed", "genre_id", id, "error", err)
			continue
		}
		responses = append(responses, entries)
	}

	merged := mergeByID(responses)
	merged = excludeGenres(merged, dislikedIDs(q.Dislikes, likeIDs))
	if q.Decade > 0 {
		merged = withinDecade(merged, q.Decade)
	}

	candidates := make([]Candidate, 0, len(merged))
	for _, entry := range merged {
		candidates = append(candidates, normalizeAnime(entry))
	}
	return candidates
}

func (c *Jikan) fetchGenre(ctx context.Context, genreID, limit int) ([]jikanEntry, error) {
	values := url.Values{}
	values.Set("genres", strconv.Itoa(genreID))
	values.Set("order_by", "score")
	values.Set("sort", "desc")
	values.Set("limit", strconv.Itoa(limit))

	var payload jikanResponse
	if err := c.source.getJSON(ctx, "anime by genre", c.baseURL+"/anime", values, nil, &payload); err != nil {
		return nil, err
	}

	entries := make([]jikanEntry, 0, len(payload.Data))
	for _, raw := range payload.Data {
		var anime jikanAnime
		if err := json.Unmarshal(raw, &anime); err != nil {
			c.logger.Debug("skipping malformed jikan item", "error", err)
			continue
		}
		entries = append(entries, jikanEntry{anime: anime, raw: raw})
	}
	return entries, nil
}

// mergeByID flattens per-genre responses into one list with each MAL id once.
// A later occurrence replaces the earlier record but keeps its position.
func mergeByID(responses [][]jikanEntry) []jikanEntry {
	index := make(map[int]int)
	var merged []jikanEntry
	for _, entries := range responses {
		for _, entry := range entries {
			if pos, ok := index[entry.anime.MalID]; ok {
				merged[pos] = entry
				continue
			}
			index[entry.anime.MalID] = len(merged)
			merged = append(merged, entry)
		}
	}
	return merged
}

// dislikedIDs maps disliked names to Jikan ids, ignoring ids that are also
// liked so overlapping preferences do not wipe out every result.
func dislikedIDs(dislikes []string, likeIDs []int) []int {
	ids := genres.ProviderIDs(genres.ProviderJikan, dislikes)
	return slices.DeleteFunc(ids, func(id int) bool {
		return slices.Contains(likeIDs, id)
	})
}

func excludeGenres(entries []jikanEntry, excluded []int) []jikanEntry {
	if len(excluded) == 0 {
		return entries
	}
	return slices.DeleteFunc(entries, func(entry jikanEntry) bool {
		for _, group := range [][]jikanGenre{entry.anime.Genres, entry.anime.ExplicitGenres, entry.anime.Themes, entry.anime.Demographics} {
			for _, g := range group {
				if slices.Contains(excluded, g.MalID) {
					return true
				}
			}
		}
		return false
	})
}

func withinDecade(entries []jikanEntry, decade int) []jikanEntry {
	first, last := decadeBounds(decade)
	return slices.DeleteFunc(entries, func(entry jikanEntry) bool {
		year := animeYear(entry.anime)
		return year == nil || *year < first || *year > last
	})
}

// animeYear prefers the explicit year and falls back to the aired-from date.
func animeYear(anime jikanAnime) *int {
	if anime.Year != nil && *anime.Year > 0 {
		return anime.Year
	}
	return yearFromDate(anime.Aired.From)
}

func normalizeAnime(entry jikanEntry) Candidate {
	anime := entry.anime
	return Candidate{
		ID:        strconv.Itoa(anime.MalID),
		Title:     firstNonEmpty(anime.TitleEnglish, anime.Title),
		Overview:  strings.TrimSpace(anime.Synopsis),
		Rating:    anime.Score,
		PosterURL: firstNonEmpty(anime.Images.WebP.LargeImageURL, anime.Images.JPG.LargeImageURL, anime.Images.WebP.ImageURL, anime.Images.JPG.ImageURL),
		Year:      animeYear(anime),
		Source:    SourceJikan,
		DetailURL: anime.URL,
		Raw:       entry.raw,
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
