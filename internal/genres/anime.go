package genres

import (
	"strings"

	"golang.org/x/text/cases"
)

// animeSynonyms holds the case-folded spellings of "anime" that route a
// search to the anime catalog. "анiме" mixes a Latin i into Cyrillic and is
// kept because it shows up in hand-typed preferences.
var animeSynonyms = foldAll("anime", "аниме", "аніме", "анiме", "японское", "manga")

func foldAll(values ...string) map[string]struct{} {
	caser := cases.Fold()
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[caser.String(v)] = struct{}{}
	}
	return set
}

// IsAnimeSynonym reports whether name is one of the recognized words for
// anime in any supported language. Matching is exact after case folding.
func IsAnimeSynonym(name string) bool {
	folded := cases.Fold().String(strings.TrimSpace(name))
	_, ok := animeSynonyms[folded]
	return ok
}

// ContainsAnimeSynonym reports whether any entry of names is an anime synonym.
func ContainsAnimeSynonym(names []string) bool {
	for _, name := range names {
		if IsAnimeSynonym(name) {
			return true
		}
	}
	return false
}
