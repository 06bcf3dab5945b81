package seed

import (
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.uber.org/zap"
)

func TestSeed_Dev(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	al := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	router := Routes(NewHandler(db, true, al, errorsfeature.NewErrorLogger(logger), logger))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAdmin(httptest.NewRequest(http.MethodGet, "/", nil), testutil.AdminIdentity()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.DecodeJSON(t, rec)["total"]; got != float64(0) {
		t.Errorf("total before seeding = %v, want 0", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAdminJSONRequest(t, http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := testutil.DecodeJSON(t, rec)
	counts := body["counts"].(map[string]any)
	for _, kind := range []string{"blog", "testimonials", "contacts", "newsletter", "travelRequests"} {
		if n, _ := counts[kind].(float64); n == 0 {
			t.Errorf("counts[%s] = %v, want > 0", kind, counts[kind])
		}
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := audit.New(db).CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventDemoSeeded})
	if err != nil {
		t.Fatalf("CountByFilter() error = %v", err)
	}
	if n != 1 {
		t.Errorf("demo_seeded events = %d, want 1", n)
	}
}

func TestSeed_DisabledOutsideDev(t *testing.T) {
	logger := zap.NewNop()
	router := Routes(NewHandler(nil, false, nil, errorsfeature.NewErrorLogger(logger), logger))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAdmin(httptest.NewRequest(method, "/", nil), testutil.AdminIdentity()))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", method, rec.Code)
		}
	}
}
