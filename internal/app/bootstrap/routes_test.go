package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	contactstore "github.com/dalemusser/chinavoyage/internal/app/store/contact"
	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// countingFetcher admits every admin and counts lookups.
type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) FetchAdmin(ctx context.Context, adminID string) *auth.Identity {
	f.calls.Add(1)
	return &auth.Identity{ID: adminID, Email: "admin@test.com", Role: auth.RoleAdmin}
}

func newTestRouter(t *testing.T, env string) (http.Handler, *countingFetcher, *auth.TokenIssuer) {
	t.Helper()
	router, fetcher, issuer, _ := newTestRouterDB(t, env)
	return router, fetcher, issuer
}

func newTestRouterDB(t *testing.T, env string) (http.Handler, *countingFetcher, *auth.TokenIssuer, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	issuer := testutil.NewTokenIssuer(t)
	fetcher := &countingFetcher{}
	gate := auth.NewGate(issuer, fetcher, "", logger)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	appCfg := AppConfig{StorageType: "s3", AuditLogAuth: "off", AuditLogAdmin: "off"}
	return buildRouter(&config.CoreConfig{Env: env}, appCfg, deps, gate, logger), fetcher, issuer, db
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes_RejectWithoutCredential(t *testing.T) {
	router, fetcher, _ := newTestRouter(t, "dev")

	paths := []string{
		"/api/admin/blog",
		"/api/admin/testimonials",
		"/api/admin/contacts",
		"/api/admin/newsletter",
		"/api/admin/travel-requests",
		"/api/admin/seed",
		"/api/admin/me",
	}
	for _, p := range paths {
		rec := serve(router, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", p, rec.Code)
		}
		if got := testutil.DecodeJSON(t, rec)["error"]; got == nil {
			t.Errorf("GET %s body has no error field", p)
		}
	}

	// Unknown admin paths are rejected before routing.
	for _, p := range []string{"/api/admin/unknown", "/api/admin/login/extra"} {
		if rec := serve(router, httptest.NewRequest(http.MethodGet, p, nil)); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", p, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	if rec := serve(router, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}

	if n := fetcher.calls.Load(); n != 0 {
		t.Errorf("fetcher called %d times for rejected requests, want 0", n)
	}
}

func TestAdminRoutes_MutationsRejectWithoutCredential(t *testing.T) {
	router, fetcher, _, db := newTestRouterDB(t, "dev")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	contacts := contactstore.New(db)
	stored, err := contacts.Create(ctx, contactstore.CreateInput{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "jean@example.com",
		Message:   "Bonjour, je voudrais un devis.",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Every kind is hit with an id that exists in contacts, so a handler
	// reached by mistake would change or remove the stored contact.
	id := stored.ID.Hex()
	kinds := []string{"blog", "testimonials", "contacts", "newsletter", "travel-requests"}
	for _, kind := range kinds {
		for _, method := range []string{http.MethodPatch, http.MethodDelete} {
			target := "/api/admin/" + kind + "/" + id
			var body io.Reader
			if method == http.MethodPatch {
				body = strings.NewReader(`{"isPublished":true,"status":"processed","isActive":false}`)
			}
			req := httptest.NewRequest(method, target, body)
			req.Header.Set("Content-Type", "application/json")

			rec := serve(router, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s status = %d, want 401", method, target, rec.Code)
			}
			if got := testutil.DecodeJSON(t, rec)["error"]; got == nil {
				t.Errorf("%s %s body has no error field", method, target)
			}
		}
	}
	for _, target := range []string{"/api/admin/contacts/" + id + "/process", "/api/admin/travel-requests/" + id + "/process"} {
		if rec := serve(router, httptest.NewRequest(http.MethodPost, target, nil)); rec.Code != http.StatusUnauthorized {
			t.Errorf("POST %s status = %d, want 401", target, rec.Code)
		}
	}

	if n := fetcher.calls.Load(); n != 0 {
		t.Errorf("fetcher called %d times for rejected requests, want 0", n)
	}
	after, err := contacts.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("contact gone after rejected requests: %v", err)
	}
	if after.Status != models.StatusNew {
		t.Errorf("contact status = %q after rejected requests, want %q", after.Status, models.StatusNew)
	}
}

func TestAdminRoutes_AcceptValidToken(t *testing.T) {
	router, fetcher, issuer := newTestRouter(t, "dev")
	token := testutil.BearerToken(t, issuer, testutil.AdminIdentity())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if fetcher.calls.Load() != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls.Load())
	}
}

func TestAdminLogin_IsNotGated(t *testing.T) {
	router, _, _ := newTestRouter(t, "dev")
	rec := serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    "personne@example.com",
		"password": "mot-de-passe-long",
	}))
	// Reaches the login handler, which rejects the unknown admin itself.
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := testutil.DecodeJSON(t, rec)["error"]; got != "Identifiants invalides" {
		t.Errorf("error = %v", got)
	}
}

func TestSeedRoute_HiddenInProd(t *testing.T) {
	router, _, issuer := newTestRouter(t, "prod")
	token := testutil.BearerToken(t, issuer, testutil.AdminIdentity())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/seed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := serve(router, req); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 outside dev", rec.Code)
	}
}

func TestUnknownRoute_JSON404(t *testing.T) {
	router, _, _ := newTestRouter(t, "dev")
	for _, p := range []string{"/nope", "/api/nope"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d", p, rec.Code)
		}
		if got := testutil.DecodeJSON(t, rec)["error"]; got == nil {
			t.Errorf("GET %s body has no error field", p)
		}
	}
}

func TestPublicRoutes_Reachable(t *testing.T) {
	router, fetcher, _ := newTestRouter(t, "dev")
	for _, p := range []string{"/api/blog", "/api/testimonials"} {
		if rec := serve(router, httptest.NewRequest(http.MethodGet, p, nil)); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", p, rec.Code)
		}
	}
	if fetcher.calls.Load() != 0 {
		t.Error("public routes should not consult the admin fetcher")
	}
}
