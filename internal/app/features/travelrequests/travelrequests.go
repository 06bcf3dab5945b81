// internal/app/features/travelrequests/travelrequests.go
package travelrequests

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	travelrequeststore "github.com/dalemusser/chinavoyage/internal/app/store/travelrequest"
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

const (
	msgNotFound       = "Demande non trouvée"
	msgNoDestinations = "Veuillez sélectionner au moins une destination"
)

// Handler serves the custom trip form and the admin request list.
type Handler struct {
	requests *travelrequeststore.Store
	notify   *mailer.Notifier
	audit    *auditlog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new travel request Handler. notify may be nil.
func NewHandler(db *mongo.Database, notify *mailer.Notifier, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		requests: travelrequeststore.New(db),
		notify:   notify,
		audit:    audit,
		errLog:   errLog,
		logger:   logger,
	}
}

type submitInput struct {
	Name                string   `json:"name" validate:"required,max=100" label:"Le nom"`
	Email               string   `json:"email" validate:"required,email,max=254" label:"L'email"`
	Phone               string   `json:"phone" validate:"max=30" label:"Le téléphone"`
	Destinations        []string `json:"destinations"`
	Duration            string   `json:"duration" validate:"max=50" label:"La durée"`
	StartDate           string   `json:"startDate" validate:"max=50" label:"La date de départ"`
	Travelers           int      `json:"travelers"`
	Budget              string   `json:"budget" validate:"max=50" label:"Le budget"`
	Interests           []string `json:"interests"`
	AccommodationType   string   `json:"accommodationType" validate:"max=50" label:"L'hébergement"`
	TransportPreference string   `json:"transportPreference" validate:"max=50" label:"Le transport"`
	SpecialRequests     string   `json:"specialRequests" validate:"max=5000" label:"Les demandes particulières"`
}

type patchInput struct {
	Phone               *string   `json:"phone"`
	Destinations        *[]string `json:"destinations"`
	Duration            *string   `json:"duration"`
	StartDate           *string   `json:"startDate"`
	Travelers           *int      `json:"travelers"`
	Budget              *string   `json:"budget"`
	Interests           *[]string `json:"interests"`
	AccommodationType   *string   `json:"accommodationType"`
	TransportPreference *string   `json:"transportPreference"`
	SpecialRequests     *string   `json:"specialRequests"`
	Status              *string   `json:"status"`
}

func (in patchInput) toStore() (travelrequeststore.UpdateInput, []string) {
	out := travelrequeststore.UpdateInput{
		Phone:               in.Phone,
		Destinations:        in.Destinations,
		Duration:            in.Duration,
		StartDate:           in.StartDate,
		Travelers:           in.Travelers,
		Budget:              in.Budget,
		Interests:           in.Interests,
		AccommodationType:   in.AccommodationType,
		TransportPreference: in.TransportPreference,
	}
	if in.SpecialRequests != nil {
		v := htmlsanitize.StripTags(*in.SpecialRequests)
		out.SpecialRequests = &v
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
		{"phone", in.Phone != nil},
		{"destinations", in.Destinations != nil},
		{"duration", in.Duration != nil},
		{"startDate", in.StartDate != nil},
		{"travelers", in.Travelers != nil},
		{"budget", in.Budget != nil},
		{"interests", in.Interests != nil},
		{"accommodationType", in.AccommodationType != nil},
		{"transportPreference", in.TransportPreference != nil},
		{"specialRequests", in.SpecialRequests != nil},
		{"status", in.Status != nil},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return out, fields
}

// submit handles POST /api/travel-requests.
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
	if models.JoinDestinations(in.Destinations) == "" {
		jsonutil.BadRequest(w, msgNoDestinations)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.requests.Create(ctx, travelrequeststore.CreateInput{
		Name:                htmlsanitize.StripTags(in.Name),
		Email:               in.Email,
		Phone:               in.Phone,
		Destinations:        in.Destinations,
		Duration:            in.Duration,
		StartDate:           in.StartDate,
		Travelers:           in.Travelers,
		Budget:              in.Budget,
		Interests:           in.Interests,
		AccommodationType:   in.AccommodationType,
		TransportPreference: in.TransportPreference,
		SpecialRequests:     htmlsanitize.StripTags(in.SpecialRequests),
	})
	if err != nil {
		h.errLog.Respond(w, r, "failed to create travel request", err, "")
		return
	}

	h.notify.TravelRequestReceived(*tr)

	jsonutil.Created(w, map[string]any{
		"message": "Votre demande de voyage a bien été envoyée. Un conseiller vous contactera sous 48 heures.",
		"id":      tr.Key(),
	})
}

// list handles GET /api/admin/travel-requests (limit, offset, status).
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := travelrequeststore.ListFilter{
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

	items, err := h.requests.List(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to list travel requests", err, "")
		return
	}
	total, err := h.requests.Count(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count travel requests", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"requests": items,
		"total":    total,
	})
}

// show handles GET /api/admin/travel-requests/{id}.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tr, err := h.requests.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load travel request", err, msgNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"request": tr})
}

// update handles PATCH /api/admin/travel-requests/{id}.
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

	tr, err := h.requests.Update(ctx, id, patch)
	if err != nil {
		h.errLog.Respond(w, r, "failed to update travel request", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordUpdated, audit.ResourceTravelRequest, tr.Key(), auditlog.ChangedFields(fields...))

	jsonutil.OK(w, map[string]any{
		"message": "Demande mise à jour",
		"request": tr,
	})
}

// process handles POST /api/admin/travel-requests/{id}/process.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.requests.MarkProcessed(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to process travel request", err, msgNotFound)
		return
	}
	tr, err := h.requests.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load travel request", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordProcessed, audit.ResourceTravelRequest, tr.Key(), nil)

	jsonutil.OK(w, map[string]any{
		"message": "Demande traitée",
		"request": tr,
	})
}

// remove handles DELETE /api/admin/travel-requests/{id}.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.requests.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to delete travel request", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordDeleted, audit.ResourceTravelRequest, id.Hex(), nil)

	jsonutil.OK(w, map[string]any{"message": "Demande supprimée"})
}
