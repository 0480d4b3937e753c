package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores sessions in an in-process map, ideal for local development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]Session
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[uuid.UUID]Session)}
}

// Create stores a new session.
func (r *InMemoryRepository) Create(_ context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[session.ID] = detach(session)
	return detach(session), nil
}

// Get returns a session by ID.
func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return detach(session), nil
}

// Update replaces an existing session.
func (r *InMemoryRepository) Update(_ context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[session.ID]; !ok {
		return Session{}, ErrNotFound
	}
	r.data[session.ID] = detach(session)
	return detach(session), nil
}

// Delete removes a session by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// detach copies the participant slices so callers cannot mutate stored state.
func detach(session Session) Session {
	session.Participants = session.Participants.Clone()
	if session.ViewerID != nil {
		viewerID := *session.ViewerID
		session.ViewerID = &viewerID
	}
	return session
}
