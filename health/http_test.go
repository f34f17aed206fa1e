package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newServer(t *testing.T, checkers ...Checker) *httptest.Server {
	t.Helper()
	agg := NewAggregator()
	for _, c := range checkers {
		agg.Register(c)
	}
	r := chi.NewRouter()
	Mount(r, agg)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestLiveness(t *testing.T) {
	srv := newServer(t, staticChecker("redis", Unhealthy("down", errors.New("refused"))))
	if resp := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   int
	}{
		{"healthy", Healthy("ok"), http.StatusOK},
		{"degraded stays in rotation", Degraded("registry unreachable"), http.StatusOK},
		{"unhealthy", Unhealthy("down", nil), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, staticChecker("dep", tt.result))
			if resp := get(t, srv.URL+"/readyz"); resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestDetailed(t *testing.T) {
	srv := newServer(t,
		staticChecker("redis", Healthy("reachable")),
		staticChecker("registry", Degraded("unreachable").WithDetails(map[string]any{"endpoint": "http://x"})),
	)

	resp := get(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", body.Status)
	}
	if got := body.Checks["registry"].Details["endpoint"]; got != "http://x" {
		t.Errorf("registry endpoint = %v, want http://x", got)
	}
	if body.Checks["redis"].Status != "healthy" {
		t.Errorf("redis Status = %q, want healthy", body.Checks["redis"].Status)
	}
}

func TestSingleCheck(t *testing.T) {
	srv := newServer(t, staticChecker("redis", Unhealthy("down", errors.New("refused"))))

	resp := get(t, srv.URL+"/health/redis")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	var body CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "refused" {
		t.Errorf("Error = %q, want refused", body.Error)
	}

	if resp := get(t, srv.URL+"/health/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", resp.StatusCode)
	}
}
