package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"wepick/internal/catalog"
	"wepick/internal/config"
	"wepick/internal/recommend"
	"wepick/internal/sessions"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type resolveCall struct {
	participants []recommend.Participant
	contentType  recommend.ContentType
	language     string
}

type stubResolver struct {
	mu     sync.Mutex
	calls  []resolveCall
	result recommend.Result
	err    error
}

func (s *stubResolver) Resolve(_ context.Context, participants []recommend.Participant, contentType recommend.ContentType, language string) (recommend.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, resolveCall{participants: participants, contentType: contentType, language: language})
	if s.err != nil {
		return recommend.Result{}, s.err
	}
	return s.result, nil
}

func (s *stubResolver) lastCall(t *testing.T) resolveCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		t.Fatal("expected resolver to be called")
	}
	return s.calls[len(s.calls)-1]
}

func sampleResult() recommend.Result {
	return recommend.Result{
		Results: []catalog.Candidate{{
			ID:     "603",
			Title:  "The Matrix",
			Source: catalog.SourceTMDB,
		}},
	}
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "development",
		AllowedOrigins:     []string{"http://localhost:5173"},
		FrontendURL:        "http://frontend.test",
		RecommendRateLimit: 100,
	}
}

func newTestRouter(t *testing.T, cfg config.Config, resolver *stubResolver) http.Handler {
	t.Helper()
	sessionSvc := sessions.NewService(sessions.NewInMemoryRepository(), resolver)
	return NewRouter(cfg, Services{Sessions: sessionSvc, Resolver: resolver}, discardLogger())
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
