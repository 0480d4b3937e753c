package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"wepick/internal/catalog"
	"wepick/internal/genres"
	"wepick/internal/metrics"
)

// MaxResults caps how many candidates one resolution returns.
const MaxResults = 20

const (
	routeGeneral = "general"
	routeAnime   = "anime"
)

// GeneralSearcher finds movies and series.
type GeneralSearcher interface {
	Search(ctx context.Context, kind catalog.Kind, q catalog.Query) []catalog.Candidate
}

// AnimeSearcher finds anime titles.
type AnimeSearcher interface {
	Search(ctx context.Context, q catalog.Query) []catalog.Candidate
}

// Result is the outcome of one resolution.
type Result struct {
	Results []catalog.Candidate `json:"results"`
	// Weakened is set when the strict search found nothing and the generated
	// participant's preferences were dropped for a second attempt.
	Weakened                 bool   `json:"weakened"`
	GeneratedParticipantName string `json:"generatedParticipantName,omitempty"`
}

// Resolver turns a group's preferences into a shuffled candidate list.
type Resolver struct {
	general GeneralSearcher
	anime   AnimeSearcher
	logger  *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRand makes shuffling reproducible. The source is guarded by the
// resolver, so one resolver may serve concurrent requests.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Resolver) {
		r.rnd = rnd
	}
}

// WithLogger sets the logger used for outcome logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver wires the resolver with its two catalog adapters.
func NewResolver(general GeneralSearcher, anime AnimeSearcher, opts ...Option) *Resolver {
	r := &Resolver{
		general: general,
		anime:   anime,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve searches for titles matching the group's preferences.
//
// Anime requests, and requests whose likes name anime itself, go to the anime
// catalog and are never weakened. Movie and series requests run a strict
// search with everyone's preferences first; if that finds nothing and a
// generated participant is present, one retry uses only the human's
// preferences, or none at all when every participant is generated.
// language is the catalog locale (for example "uk-UA") and also picks the
// vocabulary genres are normalized into.
func (r *Resolver) Resolve(ctx context.Context, participants []Participant, contentType ContentType, language string) (Result, error) {
	if !contentType.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}

	lang, ok := genres.ParseLang(language)
	if !ok {
		lang = genres.English
	}
	locale := language
	if ok {
		locale = lang.Locale()
	}

	human, generated := splitParticipants(participants)
	prefs := AggregateIn(participants, lang)

	var (
		result Result
		found  []catalog.Candidate
		route  = routeGeneral
	)
	if generated != nil {
		result.GeneratedParticipantName = generated.Name
	}

	if contentType == ContentAnime || genres.ContainsAnimeSynonym(prefs.Likes) {
		route = routeAnime
		found = r.anime.Search(ctx, queryFor(prefs, locale))
	} else {
		kind := catalog.KindMovie
		if contentType == ContentSeries {
			kind = catalog.KindSeries
		}

		found = r.general.Search(ctx, kind, queryFor(prefs, locale))
		if len(found) == 0 && generated != nil {
			// Without a human the retry is an unfiltered popularity query.
			var humans []Participant
			if human != nil {
				humans = []Participant{*human}
			}
			weak := AggregateIn(humans, lang)
			weak.Decade = prefs.Decade
			r.logger.Info("strict search empty, retrying without generated participant",
				"content_type", contentType,
				"generated", generated.Name,
			)
			found = r.general.Search(ctx, kind, queryFor(weak, locale))
			result.Weakened = true
		}
	}

	result.Results = r.shuffleAndCap(found)

	outcome := "strict"
	switch {
	case len(result.Results) == 0:
		outcome = "empty"
	case result.Weakened:
		outcome = "weakened"
	}
	metrics.Resolutions.WithLabelValues(route, outcome).Inc()
	r.logger.Info("recommendation resolved",
		"route", route,
		"content_type", contentType,
		"participants", len(participants),
		"weakened", result.Weakened,
		"count", len(result.Results),
	)

	return result, nil
}

func queryFor(prefs Preferences, locale string) catalog.Query {
	return catalog.Query{
		Likes:    prefs.Likes,
		Dislikes: prefs.Dislikes,
		Decade:   prefs.Decade,
		Language: locale,
	}
}

// shuffleAndCap returns a uniformly shuffled copy of candidates truncated to
// MaxResults. The input slice is left untouched.
func (r *Resolver) shuffleAndCap(candidates []catalog.Candidate) []catalog.Candidate {
	out := make([]catalog.Candidate, len(candidates))
	copy(out, candidates)

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if r.rnd != nil {
		r.mu.Lock()
		r.rnd.Shuffle(len(out), swap)
		r.mu.Unlock()
	} else {
		rand.Shuffle(len(out), swap)
	}

	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}
