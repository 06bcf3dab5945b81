// internal/app/features/seed/seed.go
package seed

import (
	"context"
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/seeding"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler loads demonstration data in development.
type Handler struct {
	db      *mongo.Database
	enabled bool
	audit   *auditlog.Logger
	errLog  *errorsfeature.ErrorLogger
	logger  *zap.Logger
}

// NewHandler creates a new seed Handler. When enabled is false every
// route answers 404, which is how production hides it.
func NewHandler(db *mongo.Database, enabled bool, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		enabled: enabled,
		audit:   audit,
		errLog:  errLog,
		logger:  logger,
	}
}

// Routes returns the seed router, mounted behind the admin gate at
// /api/admin/seed.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.devOnly)
	r.Get("/", h.status)
	r.Post("/", h.seed)
	return r
}

func (h *Handler) devOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.enabled {
			errorsfeature.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// status handles GET /api/admin/seed.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := seeding.CountAll(ctx, h.db)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count collections", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"counts": counts,
		"total":  counts.Total(),
	})
}

// seed handles POST /api/admin/seed.
func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	inserted, err := seeding.SeedDemo(ctx, h.db, h.logger)
	if err != nil {
		h.errLog.Respond(w, r, "failed to seed demo data", err, "")
		return
	}
	counts, err := seeding.CountAll(ctx, h.db)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count collections", err, "")
		return
	}
	h.audit.Record(r, audit.EventDemoSeeded, "", "", map[string]string{
		"inserted": strconv.FormatInt(inserted.Total(), 10),
	})

	jsonutil.OK(w, map[string]any{
		"message":  "Données de démonstration chargées",
		"inserted": inserted,
		"counts":   counts,
	})
}
