package apicors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		wantAllowed bool
	}{
		{"any origin", nil, "https://a.example", true},
		{"listed origin", []string{"https://site.example"}, "https://site.example", true},
		{"unlisted origin", []string{"https://site.example"}, "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			Middleware(tt.allowed...)(ok).ServeHTTP(rec, req)

			if rec.Code != http.StatusTeapot {
				t.Errorf("status = %d, want the handler's", rec.Code)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if (got != "") != tt.wantAllowed {
				t.Errorf("Allow-Origin = %q, wantAllowed %v", got, tt.wantAllowed)
			}
		})
	}
}

func TestMiddleware_Preflight(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/travel-requests", nil)
	req.Header.Set("Origin", "https://site.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	Middleware()(next).ServeHTTP(rec, req)

	if reached {
		t.Error("preflight should not reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight missing Allow-Origin")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight missing Allow-Methods")
	}
}
