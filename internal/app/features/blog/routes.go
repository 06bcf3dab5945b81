package blog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the public blog router.
//
// When mounted at /api/blog:
//   - GET  /api/blog         - published posts (limit, offset, category)
//   - GET  /api/blog/{slug}  - one published post; counts a view
//   - POST /api/blog         - submit a draft post
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.publicList)
	r.Post("/", h.create)
	r.Get("/{slug}", h.publicShow)
	return r
}

// AdminRoutes returns the blog management router. The caller mounts it
// behind the admin gate at /api/admin/blog.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.adminList)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	return r
}
