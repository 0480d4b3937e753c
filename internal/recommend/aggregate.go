package recommend

import (
	"strings"

	"wepick/internal/genres"
)

// Preferences is the combined filter set of a group.
type Preferences struct {
	Likes    []string `json:"likes"`
	Dislikes []string `json:"dislikes"`
	Decade   int      `json:"decade"`
}

// Aggregate merges the participants' preferences. Likes and dislikes are
// deduplicated unions in first-seen order. The decade is always taken from the
// first participant, the host; decades are not reconciled across the group.
func Aggregate(participants []Participant) Preferences {
	return aggregate(participants, func(names []string) []string { return names })
}

// AggregateIn is Aggregate with every genre first translated into lang, so the
// same genre recorded in two languages collapses into one entry.
func AggregateIn(participants []Participant, lang genres.Lang) Preferences {
	return aggregate(participants, func(names []string) []string {
		return genres.NormalizeAll(names, lang)
	})
}

func aggregate(participants []Participant, normalize func([]string) []string) Preferences {
	var prefs Preferences
	if len(participants) == 0 {
		return prefs
	}

	likes := newUnion()
	dislikes := newUnion()
	for _, p := range participants {
		for _, name := range normalize(p.LikedGenres) {
			likes.add(name)
		}
		for _, name := range normalize(p.DislikedGenres) {
			dislikes.add(name)
		}
	}

	prefs.Likes = likes.items
	prefs.Dislikes = dislikes.items
	prefs.Decade = participants[0].Decade
	return prefs
}

type union struct {
	seen  map[string]struct{}
	items []string
}

func newUnion() *union {
	return &union{seen: make(map[string]struct{})}
}

func (u *union) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if _, ok := u.seen[name]; ok {
		return
	}
	u.seen[name] = struct{}{}
	u.items = append(u.items, name)
}
