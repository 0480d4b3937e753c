package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidContentType is returned when a resolution is requested for a
// content type the resolver does not know how to route.
var ErrInvalidContentType = errors.New("invalid content type")

// ContentType selects what kind of title the group is looking for.
type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
	ContentAnime  ContentType = "anime"
)

// Valid reports whether c is one of the supported content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentMovie, ContentSeries, ContentAnime:
		return true
	default:
		return false
	}
}

// ParseContentType normalizes value and returns the matching content type.
func ParseContentType(value string) (ContentType, error) {
	c := ContentType(strings.ToLower(strings.TrimSpace(value)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, value)
	}
	return c, nil
}

// Participant is one person in the group, or a generated character standing
// in for a second person.
type Participant struct {
	Name           string   `json:"name"`
	LikedGenres    []string `json:"likedGenres"`
	DislikedGenres []string `json:"dislikedGenres"`
	// Decade is the first year of the preferred decade. Zero disables the
	// release-date filter.
	Decade      int  `json:"decade"`
	IsGenerated bool `json:"isGenerated"`
}

// Clone returns a copy of p that shares no slices with the original.
func (p Participant) Clone() Participant {
	clone := p
	clone.LikedGenres = append([]string(nil), p.LikedGenres...)
	clone.DislikedGenres = append([]string(nil), p.DislikedGenres...)
	return clone
}

func splitParticipants(participants []Participant) (human, generated *Participant) {
	for i := range participants {
		p := &participants[i]
		if p.IsGenerated {
			if generated == nil {
				generated = p
			}
			continue
		}
		if human == nil {
			human = p
		}
	}
	return human, generated
}
