package fitter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/resilience"
	"github.com/riskibarqy/kz-leaderboard/internal/usecase"
)

var sortedTimes = []float64{30, 31.5, 33, 36, 40, 45, 52, 60, 75, 90}

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClientFit_Success(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != fitPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"times":[`) {
			t.Errorf("unexpected body %s", raw)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":2.5,"b":1.2,"loc":35,"scale":10}`))
	}, resilience.CircuitBreakerConfig{})

	dist, err := client.Fit(context.Background(), sortedTimes)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	if dist.A != 2.5 || dist.B != 1.2 || dist.Loc != 35 || dist.Scale != 10 {
		t.Fatalf("unexpected params: %+v", dist)
	}
	if dist.TopTime != 30 || dist.SampleSize != len(sortedTimes) || dist.TopScale <= 0 {
		t.Fatalf("distribution not anchored to sample: %+v", dist)
	}
}

func TestClientFit_UnprocessableMapsToFitUnavailable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"did not converge"}`))
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})

	_, err := client.Fit(context.Background(), sortedTimes)
	if !errors.Is(err, points.ErrFitUnavailable) {
		t.Fatalf("expected ErrFitUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("422 must not be retried, got %d calls", calls.Load())
	}
	if state := client.breaker.State(); state != resilience.CircuitStateClosed {
		t.Fatalf("422 must not trip the breaker, got %s", state)
	}
}

func TestClientFit_ServerErrorOpensCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	_, err := client.Fit(context.Background(), sortedTimes)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	_, err = client.Fit(context.Background(), sortedTimes)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable while open, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("open circuit should short-circuit, got %d calls", calls.Load())
	}
}

func TestClientFit_InvalidParamsFromServer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"a":1,"b":3,"loc":0,"scale":1}`))
	}, resilience.CircuitBreakerConfig{})

	_, err := client.Fit(context.Background(), sortedTimes)
	if !errors.Is(err, points.ErrFitUnavailable) {
		t.Fatalf("expected ErrFitUnavailable for |b| >= a, got %v", err)
	}
}

func TestClientFit_EmptySample(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Fit(context.Background(), nil); !errors.Is(err, points.ErrFitUnavailable) {
		t.Fatalf("expected ErrFitUnavailable, got %v", err)
	}
}
