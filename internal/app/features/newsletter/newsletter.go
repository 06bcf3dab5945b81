// internal/app/features/newsletter/newsletter.go
package newsletter

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	newsletterstore "github.com/dalemusser/chinavoyage/internal/app/store/newsletter"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/inputval"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgNotFound          = "Abonné non trouvé"
	msgAlreadySubscribed = "Cette adresse email est déjà inscrite à la newsletter"
)

// Handler serves newsletter sign-up and subscriber management.
type Handler struct {
	subscribers *newsletterstore.Store
	audit       *auditlog.Logger
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new newsletter Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		subscribers: newsletterstore.New(db),
		audit:       audit,
		errLog:      errLog,
		logger:      logger,
	}
}

type subscribeInput struct {
	Email  string `json:"email" validate:"required,email,max=254" label:"L'email"`
	Source string `json:"source" validate:"max=50" label:"La source"`
}

type patchInput struct {
	Source   *string `json:"source"`
	IsActive *bool   `json:"isActive"`
}

// subscribe handles POST /api/newsletter.
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var in subscribeInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.subscribers.Subscribe(ctx, in.Email, in.Source)
	if errors.Is(err, storeutil.ErrConflict) {
		jsonutil.Conflict(w, msgAlreadySubscribed)
		return
	}
	if err != nil {
		h.errLog.Respond(w, r, "failed to subscribe", err, "")
		return
	}

	jsonutil.OK(w, map[string]any{
		"message": "Inscription à la newsletter confirmée",
		"id":      sub.Key(),
	})
}

// list handles GET /api/admin/newsletter (limit, offset, active).
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := newsletterstore.ListFilter{
		Active: jsonutil.QueryBool(r, "active"),
		Limit:  jsonutil.QueryInt64(r, "limit", storeutil.DefaultLimit),
		Offset: jsonutil.QueryInt64(r, "offset", 0),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.subscribers.List(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to list subscribers", err, "")
		return
	}
	total, err := h.subscribers.Count(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count subscribers", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"subscribers": items,
		"total":       total,
	})
}

// show handles GET /api/admin/newsletter/{id}.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.subscribers.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load subscriber", err, msgNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"subscriber": sub})
}

// update handles PATCH /api/admin/newsletter/{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	var in patchInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.subscribers.Update(ctx, id, newsletterstore.UpdateInput{
		Source:   in.Source,
		IsActive: in.IsActive,
	})
	if err != nil {
		h.errLog.Respond(w, r, "failed to update subscriber", err, msgNotFound)
		return
	}

	var fields []string
	if in.Source != nil {
		fields = append(fields, "source")
	}
	if in.IsActive != nil {
		fields = append(fields, "isActive")
	}
	h.audit.Record(r, audit.EventRecordUpdated, audit.ResourceSubscriber, sub.Key(), auditlog.ChangedFields(fields...))

	jsonutil.OK(w, map[string]any{
		"message":    "Abonné mis à jour",
		"subscriber": sub,
	})
}

// remove handles DELETE /api/admin/newsletter/{id}.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.subscribers.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to delete subscriber", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordDeleted, audit.ResourceSubscriber, id.Hex(), nil)

	jsonutil.OK(w, map[string]any{"message": "Abonné supprimé"})
}
