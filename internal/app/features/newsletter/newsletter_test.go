package newsletter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	newsletterstore "github.com/dalemusser/chinavoyage/internal/app/store/newsletter"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return NewHandler(db, nil, errorsfeature.NewErrorLogger(logger), logger), db
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubscribe_Duplicate(t *testing.T) {
	h, db := newTestHandler(t)
	public := PublicRoutes(h)

	rec := serve(public, testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": "jean@example.com", "source": "footer"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("first subscribe status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if id, _ := testutil.DecodeJSON(t, rec)["id"].(string); id == "" {
		t.Error("response has no id")
	}

	for _, email := range []string{"jean@example.com", "  JEAN@Example.COM "} {
		rec = serve(public, testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": email}))
		if rec.Code != http.StatusConflict {
			t.Errorf("subscribe %q status = %d, want 409", email, rec.Code)
		}
		if got := testutil.DecodeJSON(t, rec)["error"]; got != msgAlreadySubscribed {
			t.Errorf("error = %v", got)
		}
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if n, _ := newsletterstore.New(db).Count(ctx, newsletterstore.ListFilter{}); n != 1 {
		t.Errorf("stored %d subscribers, want 1", n)
	}
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, email := range []string{"", "pas-un-email", "a@b"} {
		rec := serve(PublicRoutes(h), testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": email}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("email %q status = %d, want 400", email, rec.Code)
		}
	}
}

func TestAdmin_ToggleAndFilter(t *testing.T) {
	h, _ := newTestHandler(t)
	public := PublicRoutes(h)
	admin := AdminRoutes(h)

	rec := serve(public, testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": "a@example.com"}))
	id := testutil.DecodeJSON(t, rec)["id"].(string)
	serve(public, testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": "b@example.com"}))

	rec = serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+id, map[string]any{"isActive": false}))
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", rec.Code, rec.Body.String())
	}
	sub := testutil.DecodeJSON(t, rec)["subscriber"].(map[string]any)
	if sub["isActive"] != false {
		t.Errorf("isActive = %v, want false", sub["isActive"])
	}

	tests := []struct {
		query string
		want  float64
	}{
		{"/", 2},
		{"/?active=true", 1},
		{"/?active=false", 1},
		{"/?limit=1", 2},
	}
	for _, tt := range tests {
		rec = serve(admin, testutil.WithAdmin(httptest.NewRequest(http.MethodGet, tt.query, nil), testutil.AdminIdentity()))
		if got := testutil.DecodeJSON(t, rec)["total"]; got != tt.want {
			t.Errorf("GET %s total = %v, want %v", tt.query, got, tt.want)
		}
	}

	rec = serve(admin, testutil.WithAdmin(httptest.NewRequest(http.MethodGet, "/?limit=1", nil), testutil.AdminIdentity()))
	if subs := testutil.DecodeJSON(t, rec)["subscribers"].([]any); len(subs) != 1 {
		t.Errorf("limit=1 returned %d subscribers", len(subs))
	}
}

func TestAdmin_Delete(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(PublicRoutes(h), testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"email": "a@example.com"}))
	id := testutil.DecodeJSON(t, rec)["id"].(string)
	admin := AdminRoutes(h)

	if rec := serve(admin, testutil.NewAdminJSONRequest(t, http.MethodDelete, "/"+id, nil)); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := serve(admin, testutil.NewAdminJSONRequest(t, http.MethodDelete, "/"+id, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
