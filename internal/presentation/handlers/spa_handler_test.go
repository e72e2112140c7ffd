package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestSPAHandler(t *testing.T) {
	files := fstest.MapFS{
		"index.html":        {Data: []byte("<html>app</html>")},
		"static/js/main.js": {Data: []byte("console.log(1)")},
		"favicon.ico":       {Data: []byte("ico")},
	}
	handler := NewSPAHandlerFS(files)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"root serves index", "/", http.StatusOK, "<html>app</html>"},
		{"existing asset", "/static/js/main.js", http.StatusOK, "console.log(1)"},
		{"top-level file", "/favicon.ico", http.StatusOK, "ico"},
		{"client route falls back", "/portfolio/history", http.StatusOK, "<html>app</html>"},
		{"directory falls back", "/static", http.StatusOK, "<html>app</html>"},
		{"unknown api path", "/api/unknown", http.StatusNotFound, `"error":"Not found"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestSPAHandler_NoBuild(t *testing.T) {
	handler := NewSPAHandlerFS(fstest.MapFS{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
