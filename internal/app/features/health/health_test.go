package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/chinavoyage/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type downDB struct{}

func (downDB) Ping(context.Context, *readpref.ReadPref) error { return errors.New("connection refused") }

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCheck_ReportsBackends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db.Client(), zap.NewNop(), WithStorage("s3"), WithNotifications(false))

	rec := serve(Routes(h), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode(t, rec)
	want := map[string]string{"mongodb": "ok", "storage": "s3", "notifications": "disabled"}
	for k, v := range want {
		if resp.Services[k] != v {
			t.Errorf("services[%s] = %q, want %q", k, resp.Services[k], v)
		}
	}
	if resp.Uptime == "" {
		t.Error("uptime missing")
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	h := NewHandler(downDB{}, zap.NewNop(), WithNotifications(true))

	rec := serve(Routes(h), "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Status != "degraded" || resp.Services["mongodb"] != "unavailable" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Services["notifications"] != "enabled" {
		t.Errorf("notifications = %q, want enabled", resp.Services["notifications"])
	}
}

func TestProbes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	up := chi.NewRouter()
	MountRootEndpoints(up, NewHandler(db.Client(), zap.NewNop()))
	down := chi.NewRouter()
	MountRootEndpoints(down, NewHandler(downDB{}, zap.NewNop()))

	tests := []struct {
		name       string
		router     http.Handler
		path       string
		wantCode   int
		wantStatus string
	}{
		{"ready", up, "/ready", http.StatusOK, "ready"},
		{"readyz alias", up, "/readyz", http.StatusOK, "ready"},
		{"not ready", down, "/readyz", http.StatusServiceUnavailable, "not ready"},
		{"live without db", down, "/livez", http.StatusOK, "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.router, tt.path)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := decode(t, rec).Status; got != tt.wantStatus {
				t.Errorf("status field = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}
