package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultLoginTTL = 30 * 24 * time.Hour

// Service provides sign-in business logic.
type Service struct {
	repo     Repository
	loginTTL time.Duration
	now      func() time.Time
}

// NewService creates a new auth Service. A zero ttl falls back to 30 days.
func NewService(repo Repository, loginTTL time.Duration) *Service {
	if loginTTL <= 0 {
		loginTTL = defaultLoginTTL
	}
	return &Service{
		repo:     repo,
		loginTTL: loginTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LoginTTL reports how long a new login stays valid.
func (s *Service) LoginTTL() time.Duration {
	return s.loginTTL
}

// SignIn finds the viewer behind the Google claims, refreshing their profile,
// or registers them on first sign-in.
func (s *Service) SignIn(ctx context.Context, claims *GoogleClaims) (*Viewer, error) {
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	name := strings.TrimSpace(claims.Name)
	now := s.now()

	existing, err := s.repo.FindViewerByOAuth(ctx, ProviderGoogle, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}

	if existing != nil {
		if err := s.repo.UpdateViewerProfile(ctx, existing.ID, name, claims.Picture, now); err != nil {
			return nil, fmt.Errorf("update viewer profile: %w", err)
		}
		existing.Name = name
		existing.AvatarURL = claims.Picture
		existing.UpdatedAt = now
		existing.LastLoginAt = now
		return existing, nil
	}

	created, err := s.repo.CreateViewer(ctx, Viewer{
		ID:              uuid.New(),
		Email:           strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:            name,
		AvatarURL:       claims.Picture,
		OAuthProvider:   ProviderGoogle,
		OAuthProviderID: claims.Sub,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("create viewer: %w", err)
	}

	return &created, nil
}

// StartLogin opens a login for the viewer and returns the cookie token.
func (s *Service) StartLogin(ctx context.Context, viewerID uuid.UUID, userAgent, ipAddress string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate login token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)

	now := s.now()
	login := Login{
		ID:        uuid.New(),
		ViewerID:  viewerID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.loginTTL),
		CreatedAt: now,
		UserAgent: truncate(userAgent, 512),
		IPAddress: truncate(ipAddress, 45),
	}

	if err := s.repo.CreateLogin(ctx, login); err != nil {
		return "", fmt.Errorf("create login: %w", err)
	}

	return token, nil
}

// Authenticate returns the viewer behind token, or nil when the token is
// empty, unknown or expired. Expired logins are removed on sight.
func (s *Service) Authenticate(ctx context.Context, token string) (*Viewer, error) {
	if token == "" {
		return nil, nil
	}

	login, viewer, err := s.repo.FindLoginByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("find login: %w", err)
	}
	if login == nil || viewer == nil {
		return nil, nil
	}

	if !s.now().Before(login.ExpiresAt) {
		_ = s.repo.DeleteLogin(ctx, login.ID)
		return nil, nil
	}

	return viewer, nil
}

// EndLogin removes the login associated with token. Unknown tokens are ignored.
func (s *Service) EndLogin(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	login, _, err := s.repo.FindLoginByTokenHash(ctx, hashToken(token))
	if err != nil {
		return fmt.Errorf("find login: %w", err)
	}
	if login == nil {
		return nil
	}

	return s.repo.DeleteLogin(ctx, login.ID)
}

// PurgeExpired deletes every expired login.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredLogins(ctx, s.now())
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
