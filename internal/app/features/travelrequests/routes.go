package travelrequests

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the custom trip form router (POST /api/travel-requests).
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	return r
}

// AdminRoutes returns the request router, mounted behind the admin gate
// at /api/admin/travel-requests.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/process", h.process)
	r.Delete("/{id}", h.remove)
	return r
}
