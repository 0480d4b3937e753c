package sessions

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wepick/internal/genres"
	"wepick/internal/recommend"
)

// Recommender resolves a group's preferences into candidates.
type Recommender interface {
	Resolve(ctx context.Context, participants []recommend.Participant, contentType recommend.ContentType, language string) (recommend.Result, error)
}

// Service orchestrates validation and persistence for wizard sessions.
type Service struct {
	repo     Repository
	resolver Recommender
	now      func() time.Time

	// locks serializes read-modify-write cycles per session id.
	locks sync.Map

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithRand makes character sampling reproducible.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a Service with the provided repository and resolver.
func NewService(repo Repository, resolver Recommender, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session with the host as its only participant.
func (s *Service) Create(ctx context.Context, input CreateInput) (Session, error) {
	lang := genres.Ukrainian
	if strings.TrimSpace(input.Language) != "" {
		parsed, ok := genres.ParseLang(input.Language)
		if !ok {
			return Session{}, &ValidationError{Message: fmt.Sprintf("unsupported language %q", input.Language)}
		}
		lang = parsed
	}

	input.HostName = strings.TrimSpace(input.HostName)
	if err := validateStruct(input); err != nil {
		return Session{}, err
	}

	now := s.now()
	session := Session{
		ID:       uuid.New(),
		Language: lang,
		Partner:  PartnerNone,
		Participants: Participants{{
			Name:   input.HostName,
			Decade: DefaultDecade,
		}},
		ViewerID:  input.ViewerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.repo.Create(ctx, session)
}

// Get returns the session with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}

// SetLanguage switches the session language. A generated participant's genres
// are drawn again from the new vocabulary; human picks keep the language they
// were recorded in and are normalized when a search runs.
func (s *Service) SetLanguage(ctx context.Context, id uuid.UUID, language string) (Session, error) {
	lang, ok := genres.ParseLang(language)
	if !ok {
		return Session{}, &ValidationError{Message: fmt.Sprintf("unsupported language %q", language)}
	}

	return s.update(ctx, id, func(session *Session) error {
		if session.Language == lang {
			return nil
		}
		session.Language = lang
		if _, ok := session.Generated(); !ok {
			return nil
		}
		for i := range session.Participants {
			p := &session.Participants[i]
			if p.IsGenerated {
				p.LikedGenres, p.DislikedGenres = s.sampleGenres(lang)
			}
		}
		return nil
	})
}

// SetContentType records what the group wants to watch.
func (s *Service) SetContentType(ctx context.Context, id uuid.UUID, value string) (Session, error) {
	contentType, err := recommend.ParseContentType(value)
	if err != nil {
		return Session{}, &ValidationError{Message: err.Error()}
	}

	return s.update(ctx, id, func(session *Session) error {
		session.ContentType = contentType
		return nil
	})
}

// InviteFriend makes the second participant a named human, replacing a
// previously chosen character.
func (s *Service) InviteFriend(ctx context.Context, id uuid.UUID, name string) (Session, error) {
	input := friendInput{Name: strings.TrimSpace(name)}
	if err := validateStruct(input); err != nil {
		return Session{}, err
	}

	return s.update(ctx, id, func(session *Session) error {
		friend := recommend.Participant{Name: input.Name, Decade: DefaultDecade}
		if len(session.Participants) > 1 && !session.Participants[1].IsGenerated {
			friend = session.Participants[1]
			friend.Name = input.Name
		}
		setSecond(session, friend)
		session.Partner = PartnerFriend
		session.CharacterID = ""
		return nil
	})
}

// ChooseCharacter makes the second participant a generated stand-in for the
// chosen character, with random likes, dislikes and decade drawn in the
// session language.
func (s *Service) ChooseCharacter(ctx context.Context, id uuid.UUID, characterID string) (Session, error) {
	character, ok := FindCharacter(strings.TrimSpace(characterID))
	if !ok {
		return Session{}, &ValidationError{Message: fmt.Sprintf("unknown character %q", characterID)}
	}

	return s.update(ctx, id, func(session *Session) error {
		likes, dislikes := s.sampleGenres(session.Language)
		setSecond(session, recommend.Participant{
			Name:           character.Name,
			LikedGenres:    likes,
			DislikedGenres: dislikes,
			Decade:         s.sampleDecade(),
			IsGenerated:    true,
		})
		session.Partner = PartnerCharacter
		session.CharacterID = character.ID
		return nil
	})
}

// SavePreferences stores one human participant's answers. Likes and dislikes
// must be disjoint, and generated participants cannot be edited.
func (s *Service) SavePreferences(ctx context.Context, id uuid.UUID, index int, input PreferencesInput) (Session, error) {
	input.LikedGenres = trimAll(input.LikedGenres)
	input.DislikedGenres = trimAll(input.DislikedGenres)
	if err := validateStruct(input); err != nil {
		return Session{}, err
	}
	for _, liked := range input.LikedGenres {
		if slices.Contains(input.DislikedGenres, liked) {
			return Session{}, &ValidationError{Message: fmt.Sprintf("%q cannot be both liked and disliked", liked)}
		}
	}

	return s.update(ctx, id, func(session *Session) error {
		if index < 0 || index >= len(session.Participants) {
			return &ValidationError{Message: fmt.Sprintf("participant %d does not exist", index)}
		}
		p := &session.Participants[index]
		if p.IsGenerated {
			return &ValidationError{Message: "generated participants cannot be edited"}
		}
		p.LikedGenres = input.LikedGenres
		p.DislikedGenres = input.DislikedGenres
		p.Decade = input.Decade
		return nil
	})
}

// Reset clears the human participants' answers. With keepGenerated the
// partner and any generated participant survive, which is what "back from
// results" does; otherwise the session returns to just the host.
func (s *Service) Reset(ctx context.Context, id uuid.UUID, keepGenerated bool) (Session, error) {
	return s.update(ctx, id, func(session *Session) error {
		if !keepGenerated {
			session.Participants = session.Participants[:min(1, len(session.Participants))]
			session.Partner = PartnerNone
			session.CharacterID = ""
			session.ContentType = ""
		}
		for i := range session.Participants {
			p := &session.Participants[i]
			if p.IsGenerated {
				continue
			}
			p.LikedGenres = nil
			p.DislikedGenres = nil
			p.Decade = DefaultDecade
		}
		return nil
	})
}

// Recommend resolves the session's current preferences. Calling it again
// with unchanged preferences yields a fresh shuffle.
func (s *Service) Recommend(ctx context.Context, id uuid.UUID) (recommend.Result, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return recommend.Result{}, err
	}
	if session.ContentType == "" {
		return recommend.Result{}, &ValidationError{Message: "content type must be chosen before searching"}
	}

	return s.resolver.Resolve(ctx, session.Participants.Clone(), session.ContentType, session.Language.Locale())
}

func (s *Service) update(ctx context.Context, id uuid.UUID, mutate func(*Session) error) (Session, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if err := mutate(&session); err != nil {
		return Session{}, err
	}
	session.UpdatedAt = s.now()
	return s.repo.Update(ctx, session)
}

func (s *Service) lock(id uuid.UUID) func() {
	value, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// sampleGenres draws likes and dislikes from one pool so a generated
// participant never likes and dislikes the same genre.
func (s *Service) sampleGenres(lang genres.Lang) (likes, dislikes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	picked := genres.Sample(genres.Combined(lang), likedCount+dislikedLimit, s.rnd)
	split := min(likedCount, len(picked))
	return picked[:split:split], picked[split:]
}

func (s *Service) sampleDecade() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return genres.Pick(Decades(), s.rnd)
}

func setSecond(session *Session, participant recommend.Participant) {
	if len(session.Participants) == 0 {
		session.Participants = Participants{{Decade: DefaultDecade}}
	}
	if len(session.Participants) < 2 {
		session.Participants = append(session.Participants, participant)
		return
	}
	session.Participants[1] = participant
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
