// internal/app/features/contact/contact.go
package contact

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	contactstore "github.com/dalemusser/chinavoyage/internal/app/store/contact"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chinavoyage/internal/app/system/inputval"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/mailer"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotFound = "Message non trouvé"

// Handler serves the contact form and the admin inbox.
type Handler struct {
	contacts *contactstore.Store
	notify   *mailer.Notifier
	audit    *auditlog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new contact Handler. notify may be nil.
func NewHandler(db *mongo.Database, notify *mailer.Notifier, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		contacts: contactstore.New(db),
		notify:   notify,
		audit:    audit,
		errLog:   errLog,
		logger:   logger,
	}
}

type submitInput struct {
	FirstName string `json:"firstName" validate:"required,max=100" label:"Le prénom"`
	LastName  string `json:"lastName" validate:"required,max=100" label:"Le nom"`
	Email     string `json:"email" validate:"required,email,max=254" label:"L'email"`
	Phone     string `json:"phone" validate:"max=30" label:"Le téléphone"`
	Subject   string `json:"subject" validate:"max=200" label:"Le sujet"`
	Message   string `json:"message" validate:"required,max=5000" label:"Le message"`
}

type patchInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Subject   *string `json:"subject"`
	Message   *string `json:"message"`
	Status    *string `json:"status"`
}

func stripped(s *string) *string {
	if s == nil {
		return nil
	}
	v := htmlsanitize.StripTags(*s)
	return &v
}

func (in patchInput) toStore() (contactstore.UpdateInput, []string) {
	out := contactstore.UpdateInput{
		FirstName: stripped(in.FirstName),
		LastName:  stripped(in.LastName),
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   stripped(in.Subject),
		Message:   stripped(in.Message),
	}
	if in.Status != nil {
		st := models.RequestStatus(normalize.Status(*in.Status))
		out.Status = &st
	}
	var fields []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"firstName", in.FirstName != nil},
		{"lastName", in.LastName != nil},
		{"email", in.Email != nil},
		{"phone", in.Phone != nil},
		{"subject", in.Subject != nil},
		{"message", in.Message != nil},
		{"status", in.Status != nil},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return out, fields
}

// submit handles POST /api/contact.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in submitInput
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

	c, err := h.contacts.Create(ctx, contactstore.CreateInput{
		FirstName: htmlsanitize.StripTags(in.FirstName),
		LastName:  htmlsanitize.StripTags(in.LastName),
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   htmlsanitize.StripTags(in.Subject),
		Message:   htmlsanitize.StripTags(in.Message),
	})
	if err != nil {
		h.errLog.Respond(w, r, "failed to create contact", err, "")
		return
	}

	h.notify.ContactReceived(*c)

	jsonutil.OK(w, map[string]any{
		"message": "Votre message a bien été envoyé. Nous vous répondrons rapidement.",
		"id":      c.Key(),
	})
}

// list handles GET /api/admin/contacts (limit, offset, status).
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := contactstore.ListFilter{
		Limit:  jsonutil.QueryInt64(r, "limit", storeutil.DefaultLimit),
		Offset: jsonutil.QueryInt64(r, "offset", 0),
	}
	if st := normalize.Status(r.URL.Query().Get("status")); st != "" {
		if !models.IsValidRequestStatus(st) {
			jsonutil.BadRequest(w, "Statut invalide")
			return
		}
		f.Status = models.RequestStatus(st)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.contacts.List(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to list contacts", err, "")
		return
	}
	total, err := h.contacts.Count(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count contacts", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"contacts": items,
		"total":    total,
	})
}

// show handles GET /api/admin/contacts/{id}.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.contacts.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load contact", err, msgNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"contact": c})
}

// update handles PATCH /api/admin/contacts/{id}.
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
	patch, fields := in.toStore()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.contacts.Update(ctx, id, patch)
	if err != nil {
		h.errLog.Respond(w, r, "failed to update contact", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordUpdated, audit.ResourceContact, c.Key(), auditlog.ChangedFields(fields...))

	jsonutil.OK(w, map[string]any{
		"message": "Message mis à jour",
		"contact": c,
	})
}

// process handles POST /api/admin/contacts/{id}/process. Processing an
// already processed contact succeeds.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.contacts.MarkProcessed(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to process contact", err, msgNotFound)
		return
	}
	c, err := h.contacts.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load contact", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordProcessed, audit.ResourceContact, c.Key(), nil)

	jsonutil.OK(w, map[string]any{
		"message": "Message traité",
		"contact": c,
	})
}

// remove handles DELETE /api/admin/contacts/{id}.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.contacts.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to delete contact", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordDeleted, audit.ResourceContact, id.Hex(), nil)

	jsonutil.OK(w, map[string]any{"message": "Message supprimé"})
}
