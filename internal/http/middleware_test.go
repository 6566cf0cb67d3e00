package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"klyra-ai/internal/contextutil"
)

func TestLoggerMiddleware(t *testing.T) {
	var gotLogger *slog.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLogger = contextutil.LoggerFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	LoggerMiddleware(inner).ServeHTTP(rec, req)

	if gotLogger == nil {
		t.Fatal("no logger in request context")
	}
	if gotLogger == slog.Default() {
		t.Error("logger was not enriched with request attributes")
	}
}

func TestCORS_Headers(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	CORS(inner).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	CORS(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if called {
		t.Error("preflight request reached the inner handler")
	}
}
