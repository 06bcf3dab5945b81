// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is the database round-trip used by the probes. *mongo.Client
// implements it.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler serves the liveness and readiness probes.
type Handler struct {
	db      Pinger
	info    map[string]string
	started time.Time
	logger  *zap.Logger
}

// Option adds informational entries to the /health report.
type Option func(*Handler)

// WithStorage reports the upload backend ("local" or "s3").
func WithStorage(kind string) Option {
	return func(h *Handler) { h.info["storage"] = kind }
}

// WithNotifications reports whether new submissions are emailed to the agency.
func WithNotifications(enabled bool) Option {
	return func(h *Handler) {
		h.info["notifications"] = "disabled"
		if enabled {
			h.info["notifications"] = "enabled"
		}
	}
}

// NewHandler creates a health Handler probing db.
func NewHandler(db Pinger, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		db:      db,
		info:    map[string]string{},
		started: time.Now(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Response is the body of every probe.
type Response struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime,omitempty"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns the /health router: the full report at /, plus /ready
// and /live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the orchestrator-style probes to the root router:
// /ready and /readyz for readiness, /livez for liveness.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) ping(r *http.Request) error {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.logger, "health ping")
	defer cancel()
	return h.db.Ping(ctx, readpref.Primary())
}

// Check reports database reachability plus the configured backends.
// Only the database decides the status code.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Uptime:   time.Since(h.started).Truncate(time.Second).String(),
		Services: map[string]string{"mongodb": "ok"},
	}
	for k, v := range h.info {
		resp.Services[k] = v
	}

	status := http.StatusOK
	if err := h.ping(r); err != nil {
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready answers 200 once the database responds.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.JSON(w, http.StatusOK, Response{Status: "ready"})
}

// Live answers 200 while the process runs. It never touches the database.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.JSON(w, http.StatusOK, Response{Status: "alive"})
}
