// internal/app/features/uploads/uploads.go
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize is the largest image accepted.
const MaxUploadSize = 10 << 20

const (
	msgNoFile      = "Veuillez sélectionner un fichier"
	msgTooLarge    = "Fichier trop volumineux (max 10 MB)"
	msgNotAnImage  = "Seules les images sont acceptées (JPEG, PNG, GIF, WebP)"
	msgUploadError = "Échec de l'envoi du fichier"
)

// imageTypes maps the accepted sniffed content types to the stored extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Handler stores blog and testimonial images.
type Handler struct {
	storage storage.Store
	audit   *auditlog.Logger
	errLog  *errorsfeature.ErrorLogger
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a new uploads Handler.
func NewHandler(store storage.Store, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		storage: store,
		audit:   audit,
		errLog:  errLog,
		logger:  logger,
		now:     time.Now,
	}
}

// Routes returns the upload router, mounted behind the admin gate at
// /api/admin/upload.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.upload)
	return r
}

// StoragePath builds uploads/YYYY/MM/<uuid><ext>. Storage overwrites an
// existing key, so the name carries the whole random UUID.
func StoragePath(now time.Time, ext string) string {
	now = now.UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New().String(), ext)
}

// upload handles POST /api/admin/upload with a multipart "file" field.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.logger.Debug("upload rejected: unreadable form", zap.Error(err))
		jsonutil.BadRequest(w, msgTooLarge)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, msgNoFile)
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		jsonutil.BadRequest(w, msgTooLarge)
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		h.errLog.Respond(w, r, "failed to read upload", err, "")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := imageTypes[contentType]
	if !ok {
		jsonutil.BadRequest(w, msgNotAnImage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	path := StoragePath(h.now(), ext)
	body := io.MultiReader(bytes.NewReader(head), file)
	if err := h.storage.Put(ctx, path, body, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.errLog.Log(r, "failed to store upload", err)
		jsonutil.InternalError(w, msgUploadError)
		return
	}

	url := h.storage.URL(path)
	h.audit.Record(r, audit.EventFileUploaded, audit.ResourceUpload, path, map[string]string{
		"content_type": contentType,
		"size":         strconv.FormatInt(header.Size, 10),
		"name":         header.Filename,
	})

	jsonutil.OK(w, map[string]any{
		"url":  url,
		"path": path,
	})
}
