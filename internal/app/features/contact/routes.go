package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the contact form router (POST /api/contact).
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	return r
}

// AdminRoutes returns the inbox router, mounted behind the admin gate at
// /api/admin/contacts:
//   - GET    /             - list (limit, offset, status)
//   - GET    /{id}         - one contact
//   - PATCH  /{id}         - edit fields or status
//   - POST   /{id}/process - mark processed
//   - DELETE /{id}         - delete
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/process", h.process)
	r.Delete("/{id}", h.remove)
	return r
}
