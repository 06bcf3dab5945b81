package testimonials

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the public testimonials router.
//
// When mounted at /api/testimonials:
//   - GET  /api/testimonials  - published testimonials (limit)
//   - POST /api/testimonials  - submit a testimonial for moderation
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.publicList)
	r.Post("/", h.submit)
	return r
}

// AdminRoutes returns the moderation router, mounted behind the admin
// gate at /api/admin/testimonials.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.adminList)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	return r
}
