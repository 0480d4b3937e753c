package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps viewers and logins in process memory. Logins are
// lost on restart, which only signs everyone out.
type InMemoryRepository struct {
	mu      sync.RWMutex
	viewers map[uuid.UUID]Viewer
	logins  map[string]Login
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		viewers: make(map[uuid.UUID]Viewer),
		logins:  make(map[string]Login),
	}
}

func (r *InMemoryRepository) FindViewerByOAuth(_ context.Context, provider, providerID string) (*Viewer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.viewers {
		if v.OAuthProvider == provider && v.OAuthProviderID == providerID {
			viewer := v
			return &viewer, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) CreateViewer(_ context.Context, viewer Viewer) (Viewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.viewers[viewer.ID] = viewer
	return viewer, nil
}

func (r *InMemoryRepository) UpdateViewerProfile(_ context.Context, id uuid.UUID, name, avatarURL string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	viewer, ok := r.viewers[id]
	if !ok {
		return nil
	}
	viewer.Name = name
	viewer.AvatarURL = avatarURL
	viewer.UpdatedAt = at
	viewer.LastLoginAt = at
	r.viewers[id] = viewer
	return nil
}

func (r *InMemoryRepository) CreateLogin(_ context.Context, login Login) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logins[login.TokenHash] = login
	return nil
}

func (r *InMemoryRepository) FindLoginByTokenHash(_ context.Context, tokenHash string) (*Login, *Viewer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	login, ok := r.logins[tokenHash]
	if !ok {
		return nil, nil, nil
	}
	viewer, ok := r.viewers[login.ViewerID]
	if !ok {
		return nil, nil, nil
	}
	return &login, &viewer, nil
}

func (r *InMemoryRepository) DeleteLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, login := range r.logins {
		if login.ID == id {
			delete(r.logins, hash)
			break
		}
	}
	return nil
}

func (r *InMemoryRepository) DeleteExpiredLogins(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, login := range r.logins {
		if login.ExpiresAt.Before(before) {
			delete(r.logins, hash)
			removed++
		}
	}
	return removed, nil
}
