// Package apicors provides CORS middleware for the public JSON API.
//
// Public endpoints (contact, newsletter, testimonials, blog, travel requests)
// carry no credentials, so any origin may call them. The admin API is left
// to the site-wide CORS policy from the core configuration.
package apicors

import (
	"net/http"

	"github.com/go-chi/cors"
)

// maxAge is how long browsers may cache a preflight answer, in seconds.
const maxAge = 86400

// Middleware returns CORS middleware for public API routes.
//
// With no allowedOrigins every origin is accepted. Otherwise only the
// listed origins get an Access-Control-Allow-Origin header. Preflight
// requests are answered here and never reach the handler.
//
//	r.Route("/api", func(r chi.Router) {
//	    r.Use(apicors.Middleware())
//	    r.Mount("/contact", contactfeature.Routes(contactHandler))
//	})
func Middleware(allowedOrigins ...string) func(http.Handler) http.Handler {
	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
}
