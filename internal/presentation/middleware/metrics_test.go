package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNormalizePath_UsesRoutePattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/api/crypto/{id}/price", func(w http.ResponseWriter, req *http.Request) {
		got = normalizePath(req)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/crypto/6f1c1b9e-1a5d-4b43-9d1e-0c8a3a2f7d11/price", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/api/crypto/{id}/price" {
		t.Errorf("expected route pattern, got %q", got)
	}
}

func TestNormalizePath_Unrouted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	if got := normalizePath(req); got != "unmatched" {
		t.Errorf("expected unmatched, got %q", got)
	}
}

func TestMetrics_PassesThrough(t *testing.T) {
	handler := Metrics()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}
