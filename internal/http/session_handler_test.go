package http

import (
	"net/http"
	"strings"
	"testing"

	"wepick/internal/recommend"
	"wepick/internal/sessions"
)

func createSession(t *testing.T, router http.Handler, body map[string]any) sessions.Session {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeResponse[sessions.Session](t, rec)
}

func TestSessionWizardFlow(t *testing.T) {
	resolver := &stubResolver{result: sampleResult()}
	router := newTestRouter(t, testConfig(), resolver)

	session := createSession(t, router, map[string]any{"language": "en", "hostName": "Olena"})
	if session.Language != "en" || len(session.Participants) != 1 || session.Participants[0].Name != "Olena" {
		t.Fatalf("unexpected session %+v", session)
	}
	base := "/api/sessions/" + session.ID.String()

	rec := doJSON(t, router, http.MethodPost, base+"/character", map[string]any{"characterId": "sherlock"})
	if rec.Code != http.StatusOK {
		t.Fatalf("choose character: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	withCharacter := decodeResponse[sessions.Session](t, rec)
	if len(withCharacter.Participants) != 2 || !withCharacter.Participants[1].IsGenerated {
		t.Fatalf("expected generated second participant, got %+v", withCharacter.Participants)
	}

	rec = doJSON(t, router, http.MethodPut, base+"/participants/0/preferences", map[string]any{
		"likedGenres":    []string{"Action", "Comedy", "Drama"},
		"dislikedGenres": []string{"Horror"},
		"decade":         1990,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save preferences: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, base+"/content-type", map[string]any{"contentType": "movie"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set content type: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, base+"/recommendations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recommend: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeResponse[recommend.Result](t, rec)
	if len(result.Results) != 1 || result.Results[0].Title != "The Matrix" {
		t.Fatalf("unexpected result %+v", result)
	}

	call := resolver.lastCall(t)
	if call.contentType != recommend.ContentMovie || call.language != "en-US" {
		t.Fatalf("unexpected resolver call %+v", call)
	}
	if len(call.participants) != 2 || call.participants[0].Decade != 1990 {
		t.Fatalf("expected both participants with host decade, got %+v", call.participants)
	}
}

func TestSessionRecommendRequiresContentType(t *testing.T) {
	router := newTestRouter(t, testConfig(), &stubResolver{})
	session := createSession(t, router, map[string]any{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+session.ID.String()+"/recommendations", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSessionCreateDefaultsToUkrainian(t *testing.T) {
	router := newTestRouter(t, testConfig(), &stubResolver{})
	session := createSession(t, router, map[string]any{})

	if session.Language != "ua" {
		t.Fatalf("expected ua default, got %q", session.Language)
	}
	if session.Participants[0].Decade != sessions.DefaultDecade {
		t.Fatalf("expected default decade, got %d", session.Participants[0].Decade)
	}
}

func TestSessionHandlerErrors(t *testing.T) {
	router := newTestRouter(t, testConfig(), &stubResolver{})
	session := createSession(t, router, map[string]any{})
	base := "/api/sessions/" + session.ID.String()

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
		want   string
	}{
		{name: "invalid id", method: http.MethodGet, target: "/api/sessions/not-a-uuid", status: http.StatusBadRequest, want: "invalid id"},
		{name: "unknown session", method: http.MethodGet, target: "/api/sessions/7d3f1b7e-0000-4000-8000-000000000000", status: http.StatusNotFound, want: "session not found"},
		{name: "unsupported language", method: http.MethodPut, target: base + "/language", body: map[string]any{"language": "de"}, status: http.StatusBadRequest, want: "unsupported language"},
		{name: "unknown field", method: http.MethodPut, target: base + "/language", body: map[string]any{"lang": "en"}, status: http.StatusBadRequest, want: "invalid request body"},
		{name: "invalid content type", method: http.MethodPut, target: base + "/content-type", body: map[string]any{"contentType": "cartoon"}, status: http.StatusBadRequest},
		{name: "unknown character", method: http.MethodPost, target: base + "/character", body: map[string]any{"characterId": "nobody"}, status: http.StatusBadRequest},
		{name: "friend without name", method: http.MethodPost, target: base + "/friend", body: map[string]any{"name": " "}, status: http.StatusBadRequest},
		{name: "bad index", method: http.MethodPut, target: base + "/participants/x/preferences", body: map[string]any{}, status: http.StatusBadRequest, want: "invalid participant index"},
		{name: "missing participant", method: http.MethodPut, target: base + "/participants/1/preferences", body: map[string]any{"likedGenres": []string{"Action", "Comedy", "Drama"}, "decade": 2000}, status: http.StatusBadRequest, want: "participant 1 does not exist"},
		{name: "too few likes", method: http.MethodPut, target: base + "/participants/0/preferences", body: map[string]any{"likedGenres": []string{"Action"}, "decade": 2000}, status: http.StatusBadRequest, want: "exactly 3"},
		{name: "bad keepGenerated", method: http.MethodPost, target: base + "/reset?keepGenerated=maybe", status: http.StatusBadRequest, want: "keepGenerated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("expected body to contain %q, got %s", tt.want, rec.Body.String())
			}
		})
	}
}

func TestSessionFriendAndReset(t *testing.T) {
	router := newTestRouter(t, testConfig(), &stubResolver{})
	session := createSession(t, router, map[string]any{"language": "en"})
	base := "/api/sessions/" + session.ID.String()

	rec := doJSON(t, router, http.MethodPost, base+"/friend", map[string]any{"name": "Taras"})
	if rec.Code != http.StatusOK {
		t.Fatalf("invite friend: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	withFriend := decodeResponse[sessions.Session](t, rec)
	if withFriend.Partner != sessions.PartnerFriend || withFriend.Participants[1].Name != "Taras" {
		t.Fatalf("unexpected session %+v", withFriend)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/reset?keepGenerated=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	if kept := decodeResponse[sessions.Session](t, rec); len(kept.Participants) != 2 {
		t.Fatalf("expected partner to survive keepGenerated reset, got %+v", kept.Participants)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	cleared := decodeResponse[sessions.Session](t, rec)
	if len(cleared.Participants) != 1 || cleared.Partner != sessions.PartnerNone {
		t.Fatalf("expected host-only session, got %+v", cleared)
	}
}

func TestSessionDelete(t *testing.T) {
	router := newTestRouter(t, testConfig(), &stubResolver{})
	session := createSession(t, router, map[string]any{})
	target := "/api/sessions/" + session.ID.String()

	if rec := doJSON(t, router, http.MethodDelete, target, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, target, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
}
