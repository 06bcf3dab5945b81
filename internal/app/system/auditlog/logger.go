// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for admin login and logout.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for content changes made through the admin API.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
// chi's RealIP middleware normally rewrites RemoteAddr already.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource), zap.String("resource_id", event.ResourceID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers under test may omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(r *http.Request, adminID primitive.ObjectID, email string) {
	l.Log(r.Context(), audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		ActorID:    &adminID,
		ActorEmail: email,
		IP:         getClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

// LoginFailed logs a rejected login. adminID is nil when the email matched nobody.
func (l *Logger) LoginFailed(r *http.Request, eventType string, adminID *primitive.ObjectID, email, reason string) {
	l.Log(r.Context(), audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		ActorID:       adminID,
		ActorEmail:    email,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs an admin logout. The request may carry no identity.
func (l *Logger) Logout(r *http.Request) {
	ev := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
	if id, ok := auth.CurrentAdmin(r); ok {
		oid := id.AdminID()
		ev.ActorID = &oid
		ev.ActorEmail = id.Email
	}
	l.Log(r.Context(), ev)
}

// --- Admin Events ---

// Record logs a change the current admin made to one record.
func (l *Logger) Record(r *http.Request, eventType, resource, resourceID string, details map[string]string) {
	ev := audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         getClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
		Details:    details,
	}
	if id, ok := auth.CurrentAdmin(r); ok {
		oid := id.AdminID()
		ev.ActorID = &oid
		ev.ActorEmail = id.Email
	}
	l.Log(r.Context(), ev)
}

// Published logs a publish or unpublish toggle.
func (l *Logger) Published(r *http.Request, resource, resourceID string, published bool) {
	eventType := audit.EventRecordUnpublished
	if published {
		eventType = audit.EventRecordPublished
	}
	l.Record(r, eventType, resource, resourceID, nil)
}

// ChangedFields joins the JSON field names present in a patch for the
// fields_changed detail.
func ChangedFields(names ...string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	return map[string]string{"fields_changed": strings.Join(names, ",")}
}
