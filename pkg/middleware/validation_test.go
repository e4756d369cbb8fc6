package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-tracker-backend/pkg/config"
)

func TestContentTypeJSON(t *testing.T) {
	t.Parallel()

	ok := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	samples := [...]struct {
		name, method, contentType, body string
		status                          int
	}{
		{"json", http.MethodPost, "application/json", "{}", http.StatusNoContent},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", "{}", http.StatusNoContent},
		{"uppercase", http.MethodPost, "Application/JSON", "{}", http.StatusNoContent},
		{"missing", http.MethodPost, "", "{}", http.StatusBadRequest},
		{"text", http.MethodPost, "text/plain", "{}", http.StatusUnsupportedMediaType},
		{"json prefix", http.MethodPut, "application/jsonp", "{}", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "", "", http.StatusNoContent},
		{"delete", http.MethodDelete, "text/plain", "x", http.StatusNoContent},
		{"get", http.MethodGet, "", "", http.StatusNoContent},
	}

	for i := range samples {
		s := samples[i]
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(s.method, "/api/boards", strings.NewReader(s.body))
			if s.contentType != "" {
				req.Header.Set("Content-Type", s.contentType)
			}
			rec := httptest.NewRecorder()
			ok.ServeHTTP(rec, req)
			if rec.Code != s.status {
				t.Fatalf("expected %d, got %d", s.status, rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	handler := CORS(&config.Config{AllowedOrigins: []string{"https://app.example.com"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	samples := [...]struct {
		method, headers string
		allowed         bool
	}{
		{http.MethodPut, "Authorization, Content-Type", true},
		{http.MethodDelete, "Authorization", true},
		{http.MethodPatch, "Authorization", false},
		{http.MethodPost, "X-Custom", false},
	}

	for _, s := range samples {
		req := httptest.NewRequest(http.MethodOptions, "/api/boards/1", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", s.method)
		req.Header.Set("Access-Control-Request-Headers", s.headers)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if s.allowed && got != "https://app.example.com" {
			t.Errorf("%s %s: expected origin to be allowed, got %q", s.method, s.headers, got)
		}
		if !s.allowed && got != "" {
			t.Errorf("%s %s: expected rejection, got %q", s.method, s.headers, got)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Errorf("%s: credentials must not be allowed", s.method)
		}
	}
}
