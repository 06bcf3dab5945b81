package newsletter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the sign-up router (POST /api/newsletter).
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.subscribe)
	return r
}

// AdminRoutes returns the subscriber router, mounted behind the admin
// gate at /api/admin/newsletter.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	return r
}
