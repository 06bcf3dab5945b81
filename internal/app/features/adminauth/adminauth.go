// internal/app/features/adminauth/adminauth.go
package adminauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/chinavoyage/internal/app/features/errors"
	adminstore "github.com/dalemusser/chinavoyage/internal/app/store/admins"
	"github.com/dalemusser/chinavoyage/internal/app/store/audit"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/auditlog"
	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"github.com/dalemusser/chinavoyage/internal/app/system/authutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgMissingCredentials = "Email et mot de passe requis"
	msgInvalidCredentials = "Identifiants invalides"
)

// Handler serves admin login, logout and identity lookup.
type Handler struct {
	admins *adminstore.Store
	gate   *auth.Gate
	secure bool
	audit  *auditlog.Logger
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new admin auth Handler. secure marks the token
// cookie Secure and should be true in production.
func NewHandler(db *mongo.Database, gate *auth.Gate, secure bool, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		admins: adminstore.New(db),
		gate:   gate,
		secure: secure,
		audit:  audit,
		errLog: errLog,
		logger: logger,
	}
}

// Mount registers the auth endpoints on the /api/admin router. Login is
// open; logout and me sit behind the gate.
func Mount(r chi.Router, h *Handler) {
	r.Post("/login", h.login)
	r.With(h.gate.Require).Post("/logout", h.logout)
	r.With(h.gate.Require).Get("/me", h.me)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/admin/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		jsonutil.BadRequest(w, msgMissingCredentials)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.admins.GetByEmail(ctx, email)
	if errors.Is(err, storeutil.ErrNotFound) {
		h.audit.LoginFailed(r, audit.EventLoginFailedUnknownAdmin, nil, email, "unknown admin")
		jsonutil.Unauthorized(w, msgInvalidCredentials)
		return
	}
	if err != nil {
		h.errLog.Respond(w, r, "failed to load admin", err, "")
		return
	}
	if !authutil.CheckPassword(in.Password, a.PasswordHash) {
		h.audit.LoginFailed(r, audit.EventLoginFailedWrongPassword, &a.ID, email, "wrong password")
		jsonutil.Unauthorized(w, msgInvalidCredentials)
		return
	}
	// Disabled status is only reported past the password check.
	if !a.IsActive() {
		h.audit.LoginFailed(r, audit.EventLoginFailedAdminDisabled, &a.ID, email, "admin disabled")
		jsonutil.Unauthorized(w, msgInvalidCredentials)
		return
	}

	id := auth.Identity{
		ID:    a.ID.Hex(),
		Email: a.Email,
		Name:  a.Name,
		Role:  auth.RoleAdmin,
	}
	token, exp, err := h.gate.Issuer().Issue(id)
	if err != nil {
		h.errLog.Respond(w, r, "failed to issue admin token", err, "")
		return
	}

	if err := h.admins.UpdateLastLogin(ctx, a.ID); err != nil {
		h.logger.Warn("failed to stamp last login", zap.String("admin_id", id.ID), zap.Error(err))
	}
	h.audit.LoginSuccess(r, a.ID, a.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     h.gate.CookieName(),
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	jsonutil.OK(w, map[string]any{
		"token":     token,
		"expiresAt": exp.Format(time.RFC3339),
		"admin":     id,
	})
}

// logout handles POST /api/admin/logout. Tokens are stateless, so this
// only clears the cookie; the token itself stays valid until it expires
// or the admin is disabled.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.audit.Logout(r)

	http.SetCookie(w, &http.Cookie{
		Name:     h.gate.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	jsonutil.OK(w, map[string]any{"message": "Déconnecté"})
}

// me handles GET /api/admin/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentAdmin(r)
	if !ok {
		jsonutil.Unauthorized(w, "Non autorisé")
		return
	}
	jsonutil.OK(w, map[string]any{"admin": id})
}
