package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProviderRequest(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequests.WithLabelValues("test-provider", "ok"))

	ObserveProviderRequest("test-provider", "ok", 120*time.Millisecond)
	ObserveProviderRequest("test-provider", "error", time.Second)

	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("test-provider", "ok")); got != before+1 {
		t.Fatalf("expected ok counter to grow by one, got %v -> %v", before, got)
	}
	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("test-provider", "error")); got < 1 {
		t.Fatalf("expected error counter to be recorded, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/api/genres", http.StatusOK, 5*time.Millisecond)
	Resolutions.WithLabelValues("general", "strict").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"wepick_http_request_duration_seconds",
		"wepick_resolutions_total",
		"wepick_provider_requests_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
	if !strings.Contains(body, `route="/api/genres"`) {
		t.Error("expected route label in metrics output")
	}
}
