package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

// GoogleConfig holds the OAuth client registration and sign-in allowlists.
type GoogleConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	AllowedDomains []string
	AllowedEmails  []string
}

// GoogleAuthenticator handles Google OAuth 2.0 / OIDC sign-in.
type GoogleAuthenticator struct {
	config         *oauth2.Config
	verifier       *oidc.IDTokenVerifier
	allowedDomains map[string]struct{}
	allowedEmails  map[string]struct{}
}

// NewGoogleAuthenticator discovers Google's OIDC configuration and builds
// the authenticator.
func NewGoogleAuthenticator(ctx context.Context, cfg GoogleConfig) (*GoogleAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &GoogleAuthenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier:       provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		allowedDomains: lowerSet(cfg.AllowedDomains),
		allowedEmails:  lowerSet(cfg.AllowedEmails),
	}, nil
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// AuthURL returns the Google consent URL carrying state.
func (g *GoogleAuthenticator) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the authorization code for tokens and returns the verified
// ID token claims.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code string) (*GoogleClaims, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in response")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims GoogleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// IsEmailAllowed checks email against the allowlists. With no allowlist
// configured every address is accepted.
func (g *GoogleAuthenticator) IsEmailAllowed(email string) bool {
	if !g.HasAllowlist() {
		return true
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := g.allowedEmails[email]; ok {
		return true
	}

	if _, domain, found := strings.Cut(email, "@"); found {
		_, ok := g.allowedDomains[domain]
		return ok
	}
	return false
}

// HasAllowlist reports whether any allowlist restriction is configured.
func (g *GoogleAuthenticator) HasAllowlist() bool {
	return len(g.allowedDomains) > 0 || len(g.allowedEmails) > 0
}

// GenerateState returns a random value for the OAuth state parameter.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
