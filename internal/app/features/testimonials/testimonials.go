// internal/app/features/testimonials/testimonials.go
package testimonials

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	testimonialstore "github.com/dalemusser/chinavoyage/internal/app/store/testimonial"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chinavoyage/internal/app/system/inputval"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotFound = "Témoignage non trouvé"

// Handler serves testimonial submission, the public list and moderation.
type Handler struct {
	testimonials *testimonialstore.Store
	audit        *auditlog.Logger
	errLog       *errorsfeature.ErrorLogger
	logger       *zap.Logger
}

// NewHandler creates a new testimonials Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		testimonials: testimonialstore.New(db),
		audit:        audit,
		errLog:       errLog,
		logger:       logger,
	}
}

type createInput struct {
	Name       string   `json:"name" validate:"required,max=100" label:"Le nom"`
	Location   string   `json:"location" validate:"max=100" label:"La ville"`
	Text       string   `json:"text" validate:"required,max=5000" label:"Le témoignage"`
	Rating     int      `json:"rating"`
	TravelType string   `json:"travelType" validate:"max=100" label:"Le type de voyage"`
	TravelDate string   `json:"travelDate" validate:"max=50" label:"La date du voyage"`
	Avatar     string   `json:"avatar" validate:"max=500" label:"L'avatar"`
	Images     []string `json:"images"`
}

type patchInput struct {
	Name        *string   `json:"name"`
	Location    *string   `json:"location"`
	Text        *string   `json:"text"`
	Rating      *int      `json:"rating"`
	TravelType  *string   `json:"travelType"`
	TravelDate  *string   `json:"travelDate"`
	IsVerified  *bool     `json:"isVerified"`
	IsPublished *bool     `json:"isPublished"`
	Avatar      *string   `json:"avatar"`
	Images      *[]string `json:"images"`
}

func stripped(s *string) *string {
	if s == nil {
		return nil
	}
	v := htmlsanitize.StripTags(*s)
	return &v
}

func (in patchInput) toStore() (testimonialstore.UpdateInput, []string) {
	out := testimonialstore.UpdateInput{
		Name:        stripped(in.Name),
		Location:    stripped(in.Location),
		Text:        stripped(in.Text),
		Rating:      in.Rating,
		TravelType:  stripped(in.TravelType),
		TravelDate:  stripped(in.TravelDate),
		IsVerified:  in.IsVerified,
		IsPublished: in.IsPublished,
		Avatar:      in.Avatar,
		Images:      in.Images,
	}
	var fields []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"name", in.Name != nil},
		{"location", in.Location != nil},
		{"text", in.Text != nil},
		{"rating", in.Rating != nil},
		{"travelType", in.TravelType != nil},
		{"travelDate", in.TravelDate != nil},
		{"isVerified", in.IsVerified != nil},
		{"isPublished", in.IsPublished != nil},
		{"avatar", in.Avatar != nil},
		{"images", in.Images != nil},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return out, fields
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f testimonialstore.ListFilter) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.testimonials.List(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to list testimonials", err, "")
		return
	}
	total, err := h.testimonials.Count(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count testimonials", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"testimonials": items,
		"total":        total,
	})
}

// publicList handles GET /api/testimonials: published testimonials only.
func (h *Handler) publicList(w http.ResponseWriter, r *http.Request) {
	published := true
	h.list(w, r, testimonialstore.ListFilter{
		Published: &published,
		Limit:     jsonutil.QueryInt64(r, "limit", storeutil.DefaultLimit),
	})
}

// submit handles POST /api/testimonials. Submissions wait for moderation.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.testimonials.Create(ctx, testimonialstore.CreateInput{
		Name:       htmlsanitize.StripTags(in.Name),
		Location:   htmlsanitize.StripTags(in.Location),
		Text:       htmlsanitize.StripTags(in.Text),
		Rating:     in.Rating,
		TravelType: htmlsanitize.StripTags(in.TravelType),
		TravelDate: htmlsanitize.StripTags(in.TravelDate),
		Avatar:     in.Avatar,
		Images:     in.Images,
	})
	if err != nil {
		h.errLog.Respond(w, r, "failed to create testimonial", err, "")
		return
	}

	jsonutil.Created(w, map[string]any{
		"message": "Merci pour votre témoignage ! Il sera publié après validation.",
		"id":      t.Key(),
	})
}

// adminList handles GET /api/admin/testimonials (published, verified, limit, offset).
func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, testimonialstore.ListFilter{
		Published: jsonutil.QueryBool(r, "published"),
		Verified:  jsonutil.QueryBool(r, "verified"),
		Limit:     jsonutil.QueryInt64(r, "limit", storeutil.DefaultLimit),
		Offset:    jsonutil.QueryInt64(r, "offset", 0),
	})
}

// show handles GET /api/admin/testimonials/{id}.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.testimonials.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load testimonial", err, msgNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"testimonial": t})
}

// update handles PATCH /api/admin/testimonials/{id}.
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

	t, err := h.testimonials.Update(ctx, id, patch)
	if err != nil {
		h.errLog.Respond(w, r, "failed to update testimonial", err, msgNotFound)
		return
	}

	if in.IsPublished != nil {
		h.audit.Published(r, audit.ResourceTestimonial, t.Key(), t.IsPublished)
	}
	h.audit.Record(r, audit.EventRecordUpdated, audit.ResourceTestimonial, t.Key(), auditlog.ChangedFields(fields...))

	jsonutil.OK(w, map[string]any{
		"message":     "Témoignage mis à jour",
		"testimonial": t,
	})
}

// remove handles DELETE /api/admin/testimonials/{id}.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.testimonials.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to delete testimonial", err, msgNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordDeleted, audit.ResourceTestimonial, id.Hex(), nil)

	jsonutil.OK(w, map[string]any{"message": "Témoignage supprimé"})
}
