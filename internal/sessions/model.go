package sessions

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"wepick/internal/genres"
	"wepick/internal/recommend"
)

// ErrNotFound is returned when a session cannot be located.
var ErrNotFound = errors.New("session not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Partner describes who the host is choosing with.
type Partner string

const (
	PartnerNone      Partner = "none"
	PartnerFriend    Partner = "friend"
	PartnerCharacter Partner = "character"
)

const (
	// DefaultDecade is the decade every human participant starts with.
	DefaultDecade = 2000
	// FirstDecade and LastDecade bound the decades a participant may pick.
	FirstDecade = 1920
	LastDecade  = 2020

	// Generated participants get as many genres as a human may pick.
	likedCount    = 3
	dislikedLimit = 3
)

// Decades lists the selectable decades in ascending order.
func Decades() []int {
	decades := make([]int, 0, (LastDecade-FirstDecade)/10+1)
	for d := FirstDecade; d <= LastDecade; d += 10 {
		decades = append(decades, d)
	}
	return decades
}

// Session is the server-side state of one run through the wizard.
type Session struct {
	ID          uuid.UUID             `json:"id" db:"id"`
	Language    genres.Lang           `json:"language" db:"language"`
	ContentType recommend.ContentType `json:"contentType,omitempty" db:"content_type"`
	Partner     Partner               `json:"partner" db:"partner"`
	CharacterID string                `json:"characterId,omitempty" db:"character_id"`
	// Participants always holds the host at index 0.
	Participants Participants `json:"participants" db:"participants"`
	ViewerID     *uuid.UUID   `json:"viewerId,omitempty" db:"viewer_id"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// Generated returns the generated participant, if any.
func (s Session) Generated() (recommend.Participant, bool) {
	for _, p := range s.Participants {
		if p.IsGenerated {
			return p, true
		}
	}
	return recommend.Participant{}, false
}

// Participants is stored as a JSON document.
type Participants []recommend.Participant

// Clone returns a deep copy.
func (p Participants) Clone() Participants {
	if p == nil {
		return nil
	}
	out := make(Participants, len(p))
	for i, participant := range p {
		out[i] = participant.Clone()
	}
	return out
}

// Value implements driver.Valuer. The document is sent as text so lib/pq
// does not encode it as bytea.
func (p Participants) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (p *Participants) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan participants: unsupported type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// CreateInput captures the fields needed to start a session.
type CreateInput struct {
	Language string     `json:"language"`
	HostName string     `json:"hostName" validate:"omitempty,max=40"`
	ViewerID *uuid.UUID `json:"-"`
}

// PreferencesInput is one participant's answers to the preference steps.
type PreferencesInput struct {
	LikedGenres    []string `json:"likedGenres" validate:"len=3,unique,dive,required,genre"`
	DislikedGenres []string `json:"dislikedGenres" validate:"max=3,unique,dive,required,genre"`
	Decade         int      `json:"decade" validate:"decade"`
}

type friendInput struct {
	Name string `json:"name" validate:"required,max=40"`
}

// Repository describes persistence operations for sessions.
type Repository interface {
	Create(ctx context.Context, session Session) (Session, error)
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Update(ctx context.Context, session Session) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
