// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	adminauthfeature "github.com/dalemusser/chinavoyage/internal/app/features/adminauth"
	blogfeature "github.com/dalemusser/chinavoyage/internal/app/features/blog"
	contactfeature "github.com/dalemusser/chinavoyage/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	healthfeature "github.com/dalemusser/chinavoyage/internal/app/features/health"
	newsletterfeature "github.com/dalemusser/chinavoyage/internal/app/features/newsletter"
	seedfeature "github.com/dalemusser/chinavoyage/internal/app/features/seed"
	testimonialsfeature "github.com/dalemusser/chinavoyage/internal/app/features/testimonials"
	travelrequestsfeature "github.com/dalemusser/chinavoyage/internal/app/features/travelrequests"
	uploadsfeature "github.com/dalemusser/chinavoyage/internal/app/features/uploads"
	adminstore "github.com/dalemusser/chinavoyage/internal/app/store/admins"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/system/apicors"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The layout is:
//   - /health, /ready, /readyz, /livez: probes
//   - /api/{contact,newsletter,testimonials,blog,travel-requests}: public JSON API
//   - /api/admin/login: credential exchange
//   - /api/admin/*: everything else, behind the admin gate
//   - storage_local_url/*: uploaded images when storage is local
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Weak or placeholder signing keys abort startup in production.
	issuer, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL, coreCfg.Env == "prod", logger)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher re-reads the admin on every gated request so that
	// disabling an account revokes its outstanding tokens.
	gate := auth.NewGate(issuer, adminstore.NewFetcher(deps.MongoDatabase, logger), appCfg.AdminCookieName, logger)

	return buildRouter(coreCfg, appCfg, deps, gate, logger), nil
}

// AdminLoginPath is the one admin endpoint reachable without a credential.
const AdminLoginPath = "/api/admin/login"

func buildRouter(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, gate *auth.Gate, logger *zap.Logger) http.Handler {
	db := deps.MongoDatabase

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Create audit store and logger for login and content-change tracking.
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	blogHandler := blogfeature.NewHandler(db, auditLogger, errLog, logger)
	testimonialsHandler := testimonialsfeature.NewHandler(db, auditLogger, errLog, logger)
	contactHandler := contactfeature.NewHandler(db, deps.Notifier, auditLogger, errLog, logger)
	newsletterHandler := newsletterfeature.NewHandler(db, auditLogger, errLog, logger)
	travelHandler := travelrequestsfeature.NewHandler(db, deps.Notifier, auditLogger, errLog, logger)
	authHandler := adminauthfeature.NewHandler(db, gate, coreCfg.Env == "prod", auditLogger, errLog, logger)
	uploadsHandler := uploadsfeature.NewHandler(deps.FileStorage, auditLogger, errLog, logger)
	seedHandler := seedfeature.NewHandler(db, coreCfg.Env == "dev", auditLogger, errLog, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// JSON bodies for unknown routes. Set before any Mount so that
	// sub-routers inherit them.
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger,
		healthfeature.WithStorage(appCfg.StorageType),
		healthfeature.WithNotifications(deps.Notifier.Enabled()),
	)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded images (local storage only)
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	r.Route("/api", func(api chi.Router) {
		// Public site forms and content. No credentials, any origin.
		api.Group(func(pub chi.Router) {
			pub.Use(apicors.Middleware())
			pub.Mount("/contact", contactfeature.PublicRoutes(contactHandler))
			pub.Mount("/newsletter", newsletterfeature.PublicRoutes(newsletterHandler))
			pub.Mount("/testimonials", testimonialsfeature.PublicRoutes(testimonialsHandler))
			pub.Mount("/blog", blogfeature.PublicRoutes(blogHandler))
			pub.Mount("/travel-requests", travelrequestsfeature.PublicRoutes(travelHandler))
		})

		api.Route("/admin", func(admin chi.Router) {
			// The gate answers 401 before any handler, store or route
			// lookup runs. Only login is open.
			admin.Use(gate.RequireExcept(AdminLoginPath))

			adminauthfeature.Mount(admin, authHandler)
			admin.Mount("/blog", blogfeature.AdminRoutes(blogHandler))
			admin.Mount("/testimonials", testimonialsfeature.AdminRoutes(testimonialsHandler))
			admin.Mount("/contacts", contactfeature.AdminRoutes(contactHandler))
			admin.Mount("/newsletter", newsletterfeature.AdminRoutes(newsletterHandler))
			admin.Mount("/travel-requests", travelrequestsfeature.AdminRoutes(travelHandler))
			admin.Mount("/upload", uploadsfeature.Routes(uploadsHandler))
			admin.Mount("/seed", seedfeature.Routes(seedHandler))
		})
	})

	return r
}
