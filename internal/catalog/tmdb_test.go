package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type tmdbFixture struct {
	mu       sync.Mutex
	requests []url.Values
	paths    []string
	arrivals []time.Time
}

func (f *tmdbFixture) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.Query())
	f.paths = append(f.paths, r.URL.Path)
	f.arrivals = append(f.arrivals, time.Now())
}

// pacingTolerance absorbs scheduler jitter between the limiter releasing a
// request and the test server observing it.
const pacingTolerance = 15 * time.Millisecond

func assertPaced(t *testing.T, arrivals []time.Time, delay time.Duration) {
	t.Helper()
	sorted := slices.Clone(arrivals)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i].Sub(sorted[i-1]); gap < delay-pacingTolerance {
			t.Fatalf("requests %d and %d were %s apart, want at least %s", i-1, i, gap, delay)
		}
	}
}

func tmdbPagePayload(page, totalPages int, ids ...int) map[string]any {
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]any{
			"id":             id,
			"title":          "Movie " + strconv.Itoa(id),
			"overview":       "Overview",
			"vote_average":   7.5,
			"poster_path":    "/poster.jpg",
			"release_date":   "1994-09-23",
			"first_air_date": "",
		})
	}
	return map[string]any{"page": page, "total_pages": totalPages, "results": results}
}

func newTestTMDB(serverURL string, client *http.Client) *TMDB {
	return NewTMDB(client, discardLogger(),
		WithTMDBBaseURL(serverURL),
		WithTMDBAPIKey("secret"),
		WithTMDBPageDelay(time.Millisecond),
	)
}

func TestTMDBSearchBuildsDiscoverQuery(t *testing.T) {
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(1, 1, 1))
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	client.Search(context.Background(), KindMovie, Query{
		Likes:    []string{"Action", "Комедія", "Cyberpunk"},
		Dislikes: []string{"Horror"},
		Decade:   1990,
		Language: "uk-UA",
	})

	if len(fixture.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(fixture.requests))
	}
	if fixture.paths[0] != "/discover/movie" {
		t.Fatalf("expected movie discover path, got %s", fixture.paths[0])
	}

	got := fixture.requests[0]
	want := map[string]string{
		"api_key":                  "secret",
		"with_genres":              "28,35",
		"without_genres":           "27",
		"primary_release_date.gte": "1990-01-01",
		"primary_release_date.lte": "1999-12-31",
		"vote_count.gte":           "100",
		"sort_by":                  "popularity.desc",
		"language":                 "uk-UA",
		"page":                     "1",
	}
	for key, value := range want {
		if got.Get(key) != value {
			t.Fatalf("expected %s=%q, got %q", key, value, got.Get(key))
		}
	}
}

func TestTMDBSearchSeriesUsesAirDate(t *testing.T) {
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page":        1,
			"total_pages": 1,
			"results": []map[string]any{
				{"id": 1399, "name": "Show", "first_air_date": "2011-04-17", "poster_path": "/show.jpg"},
			},
		})
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	results := client.Search(context.Background(), KindSeries, Query{Decade: 2010})

	if fixture.paths[0] != "/discover/tv" {
		t.Fatalf("expected tv discover path, got %s", fixture.paths[0])
	}
	query := fixture.requests[0]
	if query.Get("first_air_date.gte") != "2010-01-01" || query.Get("first_air_date.lte") != "2019-12-31" {
		t.Fatalf("expected first_air_date bounds, got %v", query)
	}
	if query.Has("primary_release_date.gte") {
		t.Fatal("did not expect movie release date filter for series")
	}
	if query.Has("with_genres") || query.Has("without_genres") {
		t.Fatalf("expected no genre filters for empty preferences, got %v", query)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	show := results[0]
	if show.Title != "Show" || show.ID != "1399" || show.Source != SourceTMDB {
		t.Fatalf("unexpected candidate: %+v", show)
	}
	if show.Year == nil || *show.Year != 2011 {
		t.Fatalf("expected year 2011, got %v", show.Year)
	}
	if show.DetailURL != "https://www.themoviedb.org/tv/1399" {
		t.Fatalf("unexpected detail url %q", show.DetailURL)
	}
	if show.PosterURL != defaultTMDBImageURL+"/show.jpg" {
		t.Fatalf("unexpected poster url %q", show.PosterURL)
	}
	if show.Rating != nil {
		t.Fatalf("expected absent rating, got %v", *show.Rating)
	}
	if len(show.Raw) == 0 {
		t.Fatal("expected raw provider record to be retained")
	}
}

func TestTMDBSearchAggregatesPages(t *testing.T) {
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(page, 10, page*10+1, page*10+2))
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	results := client.Search(context.Background(), KindMovie, Query{Likes: []string{"Drama"}})

	if len(fixture.requests) != defaultTMDBMaxPages {
		t.Fatalf("expected %d page requests, got %d", defaultTMDBMaxPages, len(fixture.requests))
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(results))
	}
	for i, query := range fixture.requests {
		if query.Get("page") != strconv.Itoa(i+1) {
			t.Fatalf("expected pages in order, request %d asked for page %s", i, query.Get("page"))
		}
	}
}

func TestTMDBSearchStopsOnEmptyPage(t *testing.T) {
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		if r.URL.Query().Get("page") == "1" {
			_ = json.NewEncoder(w).Encode(tmdbPagePayload(1, 10, 1, 2, 3))
			return
		}
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(2, 10))
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	results := client.Search(context.Background(), KindMovie, Query{})

	if len(fixture.requests) != 2 {
		t.Fatalf("expected pagination to stop after the empty page, got %d requests", len(fixture.requests))
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(results))
	}
}

func TestTMDBSearchKeepsResultsFetchedBeforeError(t *testing.T) {
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		if r.URL.Query().Get("page") == "1" {
			_ = json.NewEncoder(w).Encode(tmdbPagePayload(1, 10, 1, 2))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	results := client.Search(context.Background(), KindMovie, Query{})

	if len(fixture.requests) != 2 {
		t.Fatalf("expected pagination to stop after the failing page, got %d requests", len(fixture.requests))
	}
	if len(results) != 2 {
		t.Fatalf("expected page 1 candidates to survive, got %d", len(results))
	}
}

func TestTMDBSearchTreatsOutageAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestTMDB(server.URL, server.Client())
	if results := client.Search(context.Background(), KindMovie, Query{}); len(results) != 0 {
		t.Fatalf("expected no candidates, got %d", len(results))
	}
}

func TestTMDBSearchSendsBearerToken(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(1, 1))
	}))
	defer server.Close()

	client := NewTMDB(server.Client(), discardLogger(),
		WithTMDBBaseURL(server.URL),
		WithTMDBAccessToken("token"),
		WithTMDBPageDelay(0),
	)
	client.Search(context.Background(), KindMovie, Query{})

	if authHeader != "Bearer token" {
		t.Fatalf("expected bearer token header, got %q", authHeader)
	}
}

func TestTMDBSearchPacesPageRequests(t *testing.T) {
	const delay = 80 * time.Millisecond
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(page, 5, page))
	}))
	defer server.Close()

	client := NewTMDB(server.Client(), discardLogger(),
		WithTMDBBaseURL(server.URL),
		WithTMDBAPIKey("secret"),
		WithTMDBPageDelay(delay),
	)
	results := client.Search(context.Background(), KindMovie, Query{Likes: []string{"Drama"}})

	if len(results) != 3 || len(fixture.arrivals) != 3 {
		t.Fatalf("expected 3 pages, got %d results from %d requests", len(results), len(fixture.arrivals))
	}
	assertPaced(t, fixture.arrivals, delay)
}

func TestTMDBPacingIsSharedAcrossConcurrentSearches(t *testing.T) {
	const delay = 60 * time.Millisecond
	fixture := &tmdbFixture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.record(r)
		_ = json.NewEncoder(w).Encode(tmdbPagePayload(1, 1, 1))
	}))
	defer server.Close()

	client := NewTMDB(server.Client(), discardLogger(),
		WithTMDBBaseURL(server.URL),
		WithTMDBAPIKey("secret"),
		WithTMDBPageDelay(delay),
	)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Search(context.Background(), KindSeries, Query{})
		}()
	}
	wg.Wait()

	fixture.mu.Lock()
	arrivals := slices.Clone(fixture.arrivals)
	fixture.mu.Unlock()
	if len(arrivals) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(arrivals))
	}
	assertPaced(t, arrivals, delay)
}
