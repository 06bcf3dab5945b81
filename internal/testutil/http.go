package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TestJWTSecret signs tokens in handler tests.
const TestJWTSecret = "test-secret-for-chinavoyage-handlers-0123456789"

// AdminIdentity returns an admin identity with a fresh id.
func AdminIdentity() *auth.Identity {
	return &auth.Identity{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  auth.RoleAdmin,
	}
}

// WithAdmin adds an admin to the request context for testing gated handlers.
// This bypasses the gate and injects the identity directly.
func WithAdmin(r *http.Request, id *auth.Identity) *http.Request {
	return auth.WithTestAdmin(r, id)
}

// NewTokenIssuer returns a token issuer for tests.
func NewTokenIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	ti, err := auth.NewTokenIssuer(TestJWTSecret, auth.DefaultIssuer, time.Hour, true, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	return ti
}

// BearerToken signs a token for id.
func BearerToken(t *testing.T, ti *auth.TokenIssuer, id *auth.Identity) string {
	t.Helper()
	tok, _, err := ti.Issue(*id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return tok
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAdminJSONRequest creates a JSON request with an admin in context.
func NewAdminJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	return WithAdmin(NewJSONRequest(t, method, target, body), AdminIdentity())
}

// DecodeJSON decodes the recorded response body into a map.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
