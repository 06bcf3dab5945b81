package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFoundMsg string
		wantStatus  int
		wantMsg     string
		wantLogged  bool
	}{
		{
			name:       "validation",
			err:        &models.ValidationError{Field: "message", Message: "Le message est trop court"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Le message est trop court",
		},
		{
			name:        "not found with message",
			err:         fmt.Errorf("get: %w", storeutil.ErrNotFound),
			notFoundMsg: "Article non trouvé",
			wantStatus:  http.StatusNotFound,
			wantMsg:     "Article non trouvé",
		},
		{
			name:       "not found default",
			err:        storeutil.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    MsgNotFound,
		},
		{
			name:       "conflict",
			err:        storeutil.ErrConflict,
			wantStatus: http.StatusConflict,
			wantMsg:    MsgConflict,
		},
		{
			name:       "internal",
			err:        fmt.Errorf("mongo: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    MsgInternal,
			wantLogged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			el := NewErrorLogger(zap.New(core))

			req := httptest.NewRequest(http.MethodGet, "/api/blog/x", nil)
			rec := httptest.NewRecorder()
			el.Respond(rec, req, "load post", tt.err, tt.notFoundMsg)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := errorBody(t, rec); got != tt.wantMsg {
				t.Errorf("error = %q, want %q", got, tt.wantMsg)
			}
			if got := logs.Len() > 0; got != tt.wantLogged {
				t.Errorf("logged = %v, want %v", got, tt.wantLogged)
			}
		})
	}
}

func TestRespond_DoesNotLeakDetail(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())
	rec := httptest.NewRecorder()
	el.Respond(rec, httptest.NewRequest(http.MethodGet, "/", nil), "x", fmt.Errorf("secret dsn mongodb://user:pw@host"), "")
	if got := errorBody(t, rec); got != MsgInternal {
		t.Errorf("error = %q, want generic message", got)
	}
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := errorBody(t, rec); got != MsgRouteNotFound {
		t.Errorf("error = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/api/contact", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestErrorLogger_LogWithFields(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	el := NewErrorLogger(zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	el.LogWithFields(req, "insert failed", fmt.Errorf("boom"), zap.String("collection", "contacts"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/contact" || fields["method"] != http.MethodPost || fields["collection"] != "contacts" {
		t.Errorf("fields = %v", fields)
	}
}
