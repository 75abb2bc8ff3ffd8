package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/k1networth/itdesk/internal/shared/httpx"
)

func testLogger() *slog.Logger {
	h := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h).With(
		slog.String("app", "test"),
		slog.String("env", "test"),
	)
}

type fakeRoutes struct{}

func (fakeRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func newRouterForTest(opts httpx.Options) http.Handler {
	return httpx.NewRouter(testLogger(), opts, fakeRoutes{})
}

func TestHealthzReturns200AndBodyOK(t *testing.T) {
	srv := httptest.NewServer(newRouterForTest(httpx.Options{}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", string(b))
	}
}

func TestRequestIDGeneratedIfMissing(t *testing.T) {
	srv := httptest.NewServer(newRouterForTest(httpx.Options{}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	got := resp.Header.Get("X-Request-Id")
	re := regexp.MustCompile(`^[0-9a-f]{32}$`)
	if !re.MatchString(got) {
		t.Fatalf("expected 32-char hex request id, got %q", got)
	}
}

func TestRequestIDPreservedIfProvided(t *testing.T) {
	srv := httptest.NewServer(newRouterForTest(httpx.Options{}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/missing", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Request-Id", "test123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("X-Request-Id"); got != "test123" {
		t.Fatalf("expected X-Request-Id %q, got %q", "test123", got)
	}

	var er httpx.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || er.Error.Code != "not_found" {
		t.Fatalf("expected not_found 404, got %d %+v", resp.StatusCode, er)
	}
	if er.Error.RequestID != "test123" {
		t.Fatalf("expected request id echoed in error body, got %q", er.Error.RequestID)
	}
}

func TestReadyzReflectsReadiness(t *testing.T) {
	ready := errors.New("db down")
	srv := httptest.NewServer(newRouterForTest(httpx.Options{
		Ready: func(context.Context) error { return ready },
	}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}

	ready = nil
	resp, err = http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestPanicIsRecoveredAs500(t *testing.T) {
	srv := httptest.NewServer(newRouterForTest(httpx.Options{}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/boom")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	srv := httptest.NewServer(newRouterForTest(httpx.Options{}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/items/1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://helpdesk.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://helpdesk.example.org" {
		t.Fatalf("expected origin to be echoed, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Fatalf("expected PATCH to be allowed, got %q", got)
	}
}

func TestMetricsLabelledByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(newRouterForTest(httpx.Options{Registry: reg}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/items/42")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, _ := io.ReadAll(resp.Body)
	want := `http_requests_total{method="GET",route="/items/{id}",status="200"} 1`
	if !strings.Contains(string(b), want) {
		t.Fatalf("expected metrics to contain %q, got:\n%s", want, string(b))
	}
}
