// internal/app/features/blog/blog.go
package blog

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	blogstore "github.com/dalemusser/chinavoyage/internal/app/store/blog"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chinavoyage/internal/app/system/inputval"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgPostNotFound = "Article non trouvé"

// Handler serves the public blog and its admin management routes.
type Handler struct {
	posts  *blogstore.Store
	audit  *auditlog.Logger
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new blog Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		posts:  blogstore.New(db),
		audit:  audit,
		errLog: errLog,
		logger: logger,
	}
}

type createInput struct {
	Title       string   `json:"title" validate:"required,max=200" label:"Le titre"`
	Excerpt     string   `json:"excerpt" validate:"required,max=500" label:"Le résumé"`
	Content     string   `json:"content" validate:"required" label:"Le contenu"`
	Author      string   `json:"author" validate:"required,max=100" label:"L'auteur"`
	Category    string   `json:"category" validate:"required,category" label:"La catégorie"`
	Tags        []string `json:"tags"`
	ReadingTime string   `json:"readingTime" validate:"max=20" label:"Le temps de lecture"`
	Image       string   `json:"image" validate:"max=500" label:"L'image"`
}

func (in createInput) toStore() blogstore.CreateInput {
	return blogstore.CreateInput{
		Title:       htmlsanitize.StripTags(in.Title),
		Excerpt:     htmlsanitize.StripTags(in.Excerpt),
		Content:     htmlsanitize.Sanitize(in.Content),
		Author:      htmlsanitize.StripTags(in.Author),
		Category:    models.BlogCategory(normalize.Category(in.Category)),
		Tags:        in.Tags,
		ReadingTime: in.ReadingTime,
		Image:       in.Image,
	}
}

type patchInput struct {
	Title       *string   `json:"title"`
	Excerpt     *string   `json:"excerpt"`
	Content     *string   `json:"content"`
	Author      *string   `json:"author"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	ReadingTime *string   `json:"readingTime"`
	Image       *string   `json:"image"`
	IsPublished *bool     `json:"isPublished"`
}

// toStore sanitizes the present fields and returns the JSON names of the
// fields that were sent.
func (in patchInput) toStore() (blogstore.UpdateInput, []string) {
	var out blogstore.UpdateInput
	var fields []string
	if in.Title != nil {
		v := htmlsanitize.StripTags(*in.Title)
		out.Title = &v
		fields = append(fields, "title")
	}
	if in.Excerpt != nil {
		v := htmlsanitize.StripTags(*in.Excerpt)
		out.Excerpt = &v
		fields = append(fields, "excerpt")
	}
	if in.Content != nil {
		v := htmlsanitize.Sanitize(*in.Content)
		out.Content = &v
		fields = append(fields, "content")
	}
	if in.Author != nil {
		v := htmlsanitize.StripTags(*in.Author)
		out.Author = &v
		fields = append(fields, "author")
	}
	if in.Category != nil {
		v := models.BlogCategory(normalize.Category(*in.Category))
		out.Category = &v
		fields = append(fields, "category")
	}
	if in.Tags != nil {
		out.Tags = in.Tags
		fields = append(fields, "tags")
	}
	if in.ReadingTime != nil {
		out.ReadingTime = in.ReadingTime
		fields = append(fields, "readingTime")
	}
	if in.Image != nil {
		out.Image = in.Image
		fields = append(fields, "image")
	}
	if in.IsPublished != nil {
		out.IsPublished = in.IsPublished
		fields = append(fields, "isPublished")
	}
	return out, fields
}

// listFilter reads limit, offset and category from the query string.
// It reports false after writing a 400 for an unknown category.
func listFilter(w http.ResponseWriter, r *http.Request) (blogstore.ListFilter, bool) {
	f := blogstore.ListFilter{
		Limit:  jsonutil.QueryInt64(r, "limit", storeutil.DefaultLimit),
		Offset: jsonutil.QueryInt64(r, "offset", 0),
	}
	if c := normalize.Category(r.URL.Query().Get("category")); c != "" {
		if !models.IsValidBlogCategory(c) {
			jsonutil.BadRequest(w, "Catégorie inconnue")
			return f, false
		}
		f.Category = c
	}
	return f, true
}

func (h *Handler) list(ctx context.Context, w http.ResponseWriter, r *http.Request, f blogstore.ListFilter) {
	posts, err := h.posts.List(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to list blog posts", err, "")
		return
	}
	total, err := h.posts.Count(ctx, f)
	if err != nil {
		h.errLog.Respond(w, r, "failed to count blog posts", err, "")
		return
	}
	jsonutil.OK(w, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// publicList handles GET /api/blog: published posts only.
func (h *Handler) publicList(w http.ResponseWriter, r *http.Request) {
	f, ok := listFilter(w, r)
	if !ok {
		return
	}
	published := true
	f.Published = &published

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	h.list(ctx, w, r, f)
}

// publicShow handles GET /api/blog/{slug}. Each read counts one view.
func (h *Handler) publicShow(w http.ResponseWriter, r *http.Request) {
	postSlug := strings.TrimSpace(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	post, err := h.posts.ViewBySlug(ctx, postSlug)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load blog post", err, msgPostNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"post": post})
}

// create handles POST /api/blog and POST /api/admin/blog. Posts always
// start as drafts.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.posts.Create(ctx, in.toStore())
	if err != nil {
		h.errLog.Respond(w, r, "failed to create blog post", err, "")
		return
	}
	h.audit.Record(r, audit.EventRecordCreated, audit.ResourceBlogPost, post.Key(), nil)

	jsonutil.Created(w, map[string]any{
		"message": "Article créé",
		"id":      post.Key(),
		"post":    post,
	})
}

// adminList handles GET /api/admin/blog. Drafts are included only with
// includeUnpublished=true.
func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	f, ok := listFilter(w, r)
	if !ok {
		return
	}
	if include := jsonutil.QueryBool(r, "includeUnpublished"); include == nil || !*include {
		published := true
		f.Published = &published
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	h.list(ctx, w, r, f)
}

// show handles GET /api/admin/blog/{id}.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPostNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	post, err := h.posts.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load blog post", err, msgPostNotFound)
		return
	}
	jsonutil.OK(w, map[string]any{"post": post})
}

// update handles PATCH /api/admin/blog/{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPostNotFound)
		return
	}
	var in patchInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if in.Category != nil && !models.IsValidBlogCategory(normalize.Category(*in.Category)) {
		jsonutil.BadRequest(w, "Catégorie inconnue")
		return
	}
	patch, fields := in.toStore()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	before, err := h.posts.GetByID(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to load blog post", err, msgPostNotFound)
		return
	}
	post, err := h.posts.Update(ctx, id, patch)
	if err != nil {
		h.errLog.Respond(w, r, "failed to update blog post", err, msgPostNotFound)
		return
	}

	if post.IsPublished != before.IsPublished {
		h.audit.Published(r, audit.ResourceBlogPost, post.Key(), post.IsPublished)
	}
	h.audit.Record(r, audit.EventRecordUpdated, audit.ResourceBlogPost, post.Key(), auditlog.ChangedFields(fields...))

	jsonutil.OK(w, map[string]any{
		"message": "Article mis à jour",
		"post":    post,
	})
}

// remove handles DELETE /api/admin/blog/{id}.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := storeutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPostNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.posts.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "failed to delete blog post", err, msgPostNotFound)
		return
	}
	h.audit.Record(r, audit.EventRecordDeleted, audit.ResourceBlogPost, id.Hex(), nil)

	jsonutil.OK(w, map[string]any{"message": "Article supprimé"})
}
