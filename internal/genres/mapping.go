package genres

// Provider identifies an external catalog with its own genre ID space.
type Provider string

const (
	// ProviderTMDB is The Movie Database (movies and TV).
	ProviderTMDB Provider = "tmdb"
	// ProviderJikan is the Jikan mirror of MyAnimeList.
	ProviderJikan Provider = "jikan"
)

// tmdbGenreIDs maps canonical (English) genre names to TMDb genre IDs.
// Coverage is partial: anime-leaning and mood genres have no TMDb counterpart.
var tmdbGenreIDs = map[string]int{
	"Action":      28,
	"Adventure":   12,
	"Comedy":      35,
	"Drama":       18,
	"Romance":     10749,
	"Fantasy":     14,
	"Sci-Fi":      878,
	"Mystery":     9648,
	"Horror":      27,
	"Thriller":    53,
	"Crime":       80,
	"Family":      10751,
	"Musical":     10402,
	"Documentary": 99,
	"Western":     37,
	"War":         10752,
	"Historical":  36,
}

// jikanGenreIDs maps canonical genre names to MyAnimeList genre IDs.
// Several names collapse onto the same ID (Dark Fantasy is Fantasy, Rom-Com is Comedy).
var jikanGenreIDs = map[string]int{
	"Action":         1,
	"Adventure":      2,
	"Comedy":         4,
	"Drama":          8,
	"Romance":        22,
	"Fantasy":        10,
	"Sci-Fi":         24,
	"Mystery":        7,
	"Horror":         14,
	"Thriller":       41,
	"Sports":         30,
	"Supernatural":   37,
	"Psychological":  40,
	"Superhero":      31,
	"Slice of Life":  36,
	"School":         23,
	"Mecha / Robots": 18,
	"Vampire":        32,
	"Dark Fantasy":   10,
	"Rom-Com":        4,
}

func tableFor(provider Provider) map[string]int {
	switch provider {
	case ProviderTMDB:
		return tmdbGenreIDs
	case ProviderJikan:
		return jikanGenreIDs
	default:
		return nil
	}
}

// ProviderID returns the provider's genre ID for a genre name recorded in
// any supported language.
func ProviderID(provider Provider, genre string) (int, bool) {
	id, ok := tableFor(provider)[canonical(genre)]
	return id, ok
}

// ProviderIDs maps names to provider genre IDs. Unmapped names are dropped and
// duplicate IDs are collapsed, keeping first-seen order.
func ProviderIDs(provider Provider, names []string) []int {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(names))
	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := ProviderID(provider, name)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
