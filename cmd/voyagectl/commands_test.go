package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeAPI serves the few admin routes the commands call and rejects
// admin calls without the expected bearer token.
func fakeAPI(t *testing.T) (*httptest.Server, models.TravelRequest) {
	t.Helper()
	tr := models.TravelRequest{
		ID:          primitive.NewObjectID(),
		Name:        "Marie Curie",
		Email:       "marie@example.com",
		Destination: "Pékin, Xi'an",
		Travelers:   2,
		Status:      models.StatusNew,
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "grande-muraille-2024" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Identifiants invalides"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"token":     "jeton-admin",
			"expiresAt": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			"admin":     map[string]string{"id": "1", "email": body["email"], "name": "Agence", "role": "admin"},
		})
	})
	mux.HandleFunc("GET /api/admin/travel-requests", func(w http.ResponseWriter, r *http.Request) {
		items := []models.TravelRequest{tr}
		if s := r.URL.Query().Get("status"); s != "" && s != string(tr.Status) {
			items = []models.TravelRequest{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": items, "total": len(items)})
	})
	mux.HandleFunc("POST /api/admin/travel-requests/{id}/process", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != tr.Key() {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Demande non trouvée"})
			return
		}
		done := tr
		done.Status = models.StatusProcessed
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": done})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/login" && r.Header.Get("Authorization") != "Bearer jeton-admin" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Non autorisé"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, tr
}

func envWith(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestRun_Login(t *testing.T) {
	srv, _ := fakeAPI(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"-api", srv.URL, "login", "-email", "agence@example.com"},
		envWith(map[string]string{EnvPassword: "grande-muraille-2024"}), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "export CHINAVOYAGE_TOKEN=jeton-admin")

	out.Reset()
	err = run(context.Background(), []string{"-api", srv.URL, "login", "-email", "agence@example.com", "-password", "faux"},
		envWith(nil), &out)
	require.Error(t, err)
	assert.Equal(t, "Identifiants invalides", err.Error())
}

func TestRun_RequestsAndProcess(t *testing.T) {
	srv, tr := fakeAPI(t)
	env := envWith(map[string]string{EnvToken: "jeton-admin"})
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-api", srv.URL, "requests", "-status", "new"}, env, &out))
	assert.Contains(t, out.String(), tr.Key())
	assert.Contains(t, out.String(), "Pékin, Xi'an")
	assert.Contains(t, out.String(), "1 of 1")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-api", srv.URL, "process-request", tr.Key()}, env, &out))
	assert.Contains(t, out.String(), "processed")

	err := run(context.Background(), []string{"-api", srv.URL, "process-request", primitive.NewObjectID().Hex()}, env, &out)
	require.Error(t, err)
	assert.Equal(t, "Demande non trouvée", err.Error())
}

func TestRun_WithoutToken(t *testing.T) {
	srv, _ := fakeAPI(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"-api", srv.URL, "requests"}, envWith(nil), &out)
	require.Error(t, err)
	assert.Equal(t, "Non autorisé", err.Error())
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"reboot"}},
		{"bad status", []string{"requests", "-status", "archived"}},
		{"missing id", []string{"publish"}},
		{"bad delete kind", []string{"delete", "admin", "1"}},
		{"login without password", []string{"login", "-email", "a@b.fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, envWith(nil), &out))
		})
	}
}
