package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmailNotVerified is returned when Google reports an unverified address.
var ErrEmailNotVerified = errors.New("email address is not verified")

// ProviderGoogle is the only identity provider viewers sign in with.
const ProviderGoogle = "google"

// Viewer is a signed-in person. Signing in is optional; a viewer's name is
// used to pre-fill the host participant of new wizard sessions.
type Viewer struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	AvatarURL       string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	OAuthProvider   string    `json:"-" db:"oauth_provider"`
	OAuthProviderID string    `json:"-" db:"oauth_provider_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	LastLoginAt     time.Time `json:"lastLoginAt" db:"last_login_at"`
}

// Login is a cookie-backed sign-in. Only the SHA-256 of its token is stored.
type Login struct {
	ID        uuid.UUID `db:"id"`
	ViewerID  uuid.UUID `db:"viewer_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
}

// GoogleClaims contains the relevant claims from a Google ID token.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Repository defines persistence for viewers and their logins. Lookups
// return nil without error when nothing matches.
type Repository interface {
	FindViewerByOAuth(ctx context.Context, provider, providerID string) (*Viewer, error)
	CreateViewer(ctx context.Context, viewer Viewer) (Viewer, error)
	UpdateViewerProfile(ctx context.Context, id uuid.UUID, name, avatarURL string, at time.Time) error

	CreateLogin(ctx context.Context, login Login) error
	FindLoginByTokenHash(ctx context.Context, tokenHash string) (*Login, *Viewer, error)
	DeleteLogin(ctx context.Context, id uuid.UUID) error
	DeleteExpiredLogins(ctx context.Context, before time.Time) (int64, error)
}
