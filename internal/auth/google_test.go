package auth

import (
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func TestIsEmailAllowed(t *testing.T) {
	tests := []struct {
		name    string
		domains []string
		emails  []string
		email   string
		want    bool
	}{
		{name: "explicit email", emails: []string{"olena@example.com"}, email: "Olena@Example.com", want: true},
		{name: "allowed domain", domains: []string{"example.com"}, email: "taras@example.com", want: true},
		{name: "unknown domain", domains: []string{"example.com"}, email: "taras@other.com", want: false},
		{name: "malformed address", domains: []string{"example.com"}, email: "example.com", want: false},
		{name: "no allowlist", email: "anyone@anywhere.org", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := &GoogleAuthenticator{
				allowedDomains: lowerSet(tt.domains),
				allowedEmails:  lowerSet(tt.emails),
			}
			if got := authenticator.IsEmailAllowed(tt.email); got != tt.want {
				t.Fatalf("IsEmailAllowed(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestHasAllowlist(t *testing.T) {
	authenticator := &GoogleAuthenticator{
		allowedDomains: lowerSet(nil),
		allowedEmails:  lowerSet([]string{" ", ""}),
	}
	if authenticator.HasAllowlist() {
		t.Fatal("expected blank entries to be ignored")
	}

	authenticator.allowedDomains["example.com"] = struct{}{}
	if !authenticator.HasAllowlist() {
		t.Fatal("expected HasAllowlist to be true")
	}
}

func TestGenerateStateIsUnique(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}
	second, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("expected distinct non-empty states, got %q and %q", first, second)
	}
}

func TestAuthURLCarriesStateAndPrompt(t *testing.T) {
	authenticator := &GoogleAuthenticator{
		config: &oauth2.Config{
			ClientID:    "client-id",
			RedirectURL: "http://localhost/api/auth/google/callback",
			Endpoint:    oauth2.Endpoint{AuthURL: "https://auth.test/oauth"},
			Scopes:      []string{"openid"},
		},
	}

	parsed, err := url.Parse(authenticator.AuthURL("state123"))
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}

	query := parsed.Query()
	if query.Get("state") != "state123" {
		t.Fatalf("expected state to round-trip, got %q", query.Get("state"))
	}
	if query.Get("prompt") != "select_account" {
		t.Fatalf("expected prompt=select_account, got %q", query.Get("prompt"))
	}
}
