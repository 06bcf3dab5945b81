// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.uber.org/zap"
)

// User-facing messages shared by every JSON route.
const (
	MsgInternal         = "Une erreur interne est survenue"
	MsgNotFound         = "Ressource non trouvée"
	MsgRouteNotFound    = "Route non trouvée"
	MsgMethodNotAllowed = "Méthode non autorisée"
	MsgConflict         = "Cette ressource existe déjà"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// Respond maps a store or validation error onto a JSON error response:
//
//	*models.ValidationError -> 400 with its message
//	storeutil.ErrNotFound   -> 404 with notFoundMsg
//	storeutil.ErrConflict   -> 409
//	anything else           -> 500, logged with msg
//
// An empty notFoundMsg uses MsgNotFound.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, msg string, err error, notFoundMsg string) {
	if ve, ok := models.AsValidationError(err); ok {
		jsonutil.BadRequest(w, ve.Message)
		return
	}
	switch {
	case stderrors.Is(err, storeutil.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = MsgNotFound
		}
		jsonutil.NotFound(w, notFoundMsg)
	case stderrors.Is(err, storeutil.ErrConflict):
		jsonutil.Conflict(w, MsgConflict)
	default:
		e.Log(r, msg, err)
		jsonutil.InternalError(w, MsgInternal)
	}
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.NotFound(w, MsgRouteNotFound)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}
