package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"wepick/internal/metrics"
)

const (
	defaultTimeout   = 12 * time.Second
	maxResponseBytes = 4 << 20
	userAgent        = "WePick/1.0"
)

// source performs paced, circuit-broken GET requests against one provider.
// Requests through the same source never run closer together than the
// configured delay, which keeps sequential pagination and fan-out under the
// provider's rate limit.
type source struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func newSource(name string, client *http.Client, delay time.Duration, logger *slog.Logger) *source {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	s := &source{
		name:    name,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return s
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// getJSON waits for the pacing limiter, performs the request and decodes the
// JSON body into dst.
func (s *source) getJSON(ctx context.Context, op, endpoint string, values url.Values, header http.Header, dst any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &Error{Provider: s.name, Op: op, Err: fmt.Errorf("pace: %w", err)}
	}

	start := time.Now()
	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.do(ctx, endpoint, values, header)
	})
	metrics.ObserveProviderRequest(s.name, outcomeLabel(err), time.Since(start))
	if err != nil {
		return &Error{Provider: s.name, Op: op, Err: err}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &Error{Provider: s.name, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}

func (s *source) do(ctx context.Context, endpoint string, values url.Values, header http.Header) ([]byte, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	target.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, vals := range header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("provider request", "provider", s.name, "path", target.Path, "page", values.Get("page"), "genres", values.Get("genres"))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrBadStatus, resp.StatusCode)
	}
}
