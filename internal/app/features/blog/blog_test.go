package blog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	blogstore "github.com/dalemusser/chinavoyage/internal/app/store/blog"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	al := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	return NewHandler(db, al, errorsfeature.NewErrorLogger(logger), logger), db
}

func validPost() map[string]any {
	return map[string]any{
		"title":       "Guide complet pour votre premier voyage en Chine",
		"excerpt":     "Tout ce qu'il faut savoir",
		"content":     "<p>" + strings.Repeat("La Grande Muraille. ", 8) + "</p><script>alert(1)</script>",
		"author":      "Li Wei",
		"category":    "conseils",
		"tags":        []string{"visa", " ", "itinéraire"},
		"readingTime": "8 min",
	}
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createPost(t *testing.T, router http.Handler, body map[string]any) string {
	t.Helper()
	rec := serve(router, testutil.NewAdminJSONRequest(t, http.MethodPost, "/", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := testutil.DecodeJSON(t, rec)
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatalf("create response without id: %v", resp)
	}
	return id
}

func TestCreate_Draft(t *testing.T) {
	h, _ := newTestHandler(t)
	public := PublicRoutes(h)

	rec := serve(public, testutil.NewJSONRequest(t, http.MethodPost, "/", validPost()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := testutil.DecodeJSON(t, rec)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	post := resp["post"].(map[string]any)
	if post["slug"] != "guide-complet-pour-votre-premier-voyage-en-chine" {
		t.Errorf("slug = %v", post["slug"])
	}
	if post["isPublished"] != false {
		t.Errorf("isPublished = %v, want false", post["isPublished"])
	}
	if post["views"] != float64(0) {
		t.Errorf("views = %v, want 0", post["views"])
	}
	if strings.Contains(post["content"].(string), "<script>") {
		t.Error("content should be sanitized")
	}
	if tags := post["tags"].([]any); len(tags) != 2 {
		t.Errorf("tags = %v, want blank tag dropped", tags)
	}

	// Drafts are not listed publicly.
	rec = serve(public, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := testutil.DecodeJSON(t, rec)["total"]; got != float64(0) {
		t.Errorf("public total = %v, want 0", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"short content", func(b map[string]any) { b["content"] = strings.Repeat("a", 99) }},
		{"missing title", func(b map[string]any) { delete(b, "title") }},
		{"unknown category", func(b map[string]any) { b["category"] = "sport" }},
		{"missing author", func(b map[string]any) { b["author"] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, db := newTestHandler(t)
			body := validPost()
			tt.mutate(body)

			rec := serve(PublicRoutes(h), testutil.NewJSONRequest(t, http.MethodPost, "/", body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
			if msg, _ := testutil.DecodeJSON(t, rec)["error"].(string); msg == "" {
				t.Error("400 response should carry an error message")
			}

			ctx, cancel := testutil.TestContext()
			defer cancel()
			n, _ := blogstore.New(db).Count(ctx, blogstore.ListFilter{})
			if n != 0 {
				t.Errorf("stored %d posts after rejected create", n)
			}
		})
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := serve(PublicRoutes(h), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPublishToggle(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := AdminRoutes(h)
	id := createPost(t, admin, validPost())

	rec := serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+id, map[string]any{"isPublished": true}))
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %s", rec.Code, rec.Body.String())
	}
	post := testutil.DecodeJSON(t, rec)["post"].(map[string]any)
	if post["publishedAt"] == nil {
		t.Error("publishedAt should be set after publishing")
	}

	rec = serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+id, map[string]any{"isPublished": false}))
	post = testutil.DecodeJSON(t, rec)["post"].(map[string]any)
	if post["publishedAt"] != nil {
		t.Errorf("publishedAt = %v, want null after unpublishing", post["publishedAt"])
	}
}

func TestAdminList_IncludeUnpublished(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := AdminRoutes(h)
	draft := createPost(t, admin, validPost())
	live := createPost(t, admin, validPost())
	serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+live, map[string]any{"isPublished": true}))
	_ = draft

	tests := []struct {
		query string
		want  float64
	}{
		{"/", 1},
		{"/?includeUnpublished=false", 1},
		{"/?includeUnpublished=true", 2},
		{"/?includeUnpublished=true&category=culture", 0},
	}
	for _, tt := range tests {
		rec := serve(admin, testutil.WithAdmin(httptest.NewRequest(http.MethodGet, tt.query, nil), testutil.AdminIdentity()))
		if got := testutil.DecodeJSON(t, rec)["total"]; got != tt.want {
			t.Errorf("GET %s total = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestPublicShow_CountsViews(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := AdminRoutes(h)
	public := PublicRoutes(h)
	id := createPost(t, admin, validPost())
	serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+id, map[string]any{"isPublished": true}))

	path := "/guide-complet-pour-votre-premier-voyage-en-chine"
	for want := 1; want <= 3; want++ {
		rec := serve(public, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		post := testutil.DecodeJSON(t, rec)["post"].(map[string]any)
		if post["views"] != float64(want) {
			t.Errorf("views = %v, want %d", post["views"], want)
		}
	}
}

func TestPublicShow_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := AdminRoutes(h)
	createPost(t, admin, validPost()) // draft, not visible

	rec := serve(PublicRoutes(h), httptest.NewRequest(http.MethodGet, "/guide-complet-pour-votre-premier-voyage-en-chine", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := testutil.DecodeJSON(t, rec)["error"]; got != msgPostNotFound {
		t.Errorf("error = %v, want %q", got, msgPostNotFound)
	}
}

func TestPublicList_UnknownCategory(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(PublicRoutes(h), httptest.NewRequest(http.MethodGet, "/?category=sport", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdate_RegeneratesSlug(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := AdminRoutes(h)
	id := createPost(t, admin, validPost())

	rec := serve(admin, testutil.NewAdminJSONRequest(t, http.MethodPatch, "/"+id, map[string]any{"title": "Les saveurs du Sichuan"}))
	post := testutil.DecodeJSON(t, rec)["post"].(map[string]any)
	if post["slug"] != "les-saveurs-du-sichuan" {
		t.Errorf("slug = %v", post["slug"])
	}
}

func TestDelete(t *testing.T) {
	h, db := newTestHandler(t)
	admin := AdminRoutes(h)
	id := createPost(t, admin, validPost())

	rec := serve(admin, testutil.NewAdminJSONRequest(t, http.MethodDelete, "/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = serve(admin, testutil.NewAdminJSONRequest(t, http.MethodDelete, "/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := audit.New(db).History(ctx, audit.ResourceBlogPost, id, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	var deleted bool
	for _, e := range events {
		if e.EventType == audit.EventRecordDeleted {
			deleted = true
			if e.ActorEmail != "admin@test.com" {
				t.Errorf("ActorEmail = %q", e.ActorEmail)
			}
		}
	}
	if !deleted {
		t.Error("delete was not audited")
	}
}

func TestShow_MalformedID(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(AdminRoutes(h), testutil.WithAdmin(httptest.NewRequest(http.MethodGet, "/not-an-id", nil), testutil.AdminIdentity()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
