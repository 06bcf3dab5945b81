package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/chinavoyage/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultCookieName is the cookie that may carry the admin token.
const DefaultCookieName = "admin-token"

// Identity is the authenticated admin attached to a gated request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AdminID returns the identity's ID as an ObjectID, or the zero ObjectID.
func (i *Identity) AdminID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(i.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// AdminFetcher loads the current state of an admin.
// Implementations return nil if the admin is not found or is disabled.
type AdminFetcher interface {
	FetchAdmin(ctx context.Context, adminID string) *Identity
}

// Result is the outcome of verifying a credential.
type Result struct {
	Valid    bool
	Identity *Identity
}

// Gate verifies admin credentials on every request it wraps.
type Gate struct {
	issuer     *TokenIssuer
	fetcher    AdminFetcher
	cookieName string
	logger     *zap.Logger
}

// NewGate creates a Gate. An empty cookieName uses DefaultCookieName.
func NewGate(issuer *TokenIssuer, fetcher AdminFetcher, cookieName string, logger *zap.Logger) *Gate {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Gate{
		issuer:     issuer,
		fetcher:    fetcher,
		cookieName: cookieName,
		logger:     logger,
	}
}

// CookieName returns the cookie the gate reads the token from.
func (g *Gate) CookieName() string {
	return g.cookieName
}

// Issuer returns the token issuer backing the gate.
func (g *Gate) Issuer() *TokenIssuer {
	return g.issuer
}

// Verify checks a raw token. The fetcher is consulted only after the
// signature and claims are valid.
func (g *Gate) Verify(ctx context.Context, token string) Result {
	if token == "" {
		return Result{}
	}
	claims, err := g.issuer.Parse(token)
	if err != nil {
		return Result{}
	}
	if g.fetcher == nil {
		return Result{Valid: true, Identity: &Identity{
			ID:    claims.Subject,
			Email: claims.Email,
			Role:  claims.Role,
		}}
	}
	id := g.fetcher.FetchAdmin(ctx, claims.Subject)
	if id == nil {
		return Result{}
	}
	return Result{Valid: true, Identity: id}
}

// TokenFromRequest extracts the credential from "Authorization: Bearer <token>"
// or, failing that, from the admin cookie.
func (g *Gate) TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(g.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Require returns middleware that rejects requests without a valid admin
// credential with 401 before the wrapped handler runs. A request already
// admitted by an outer Require passes straight through.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAdmin(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		token := g.TokenFromRequest(r)
		if token == "" {
			g.logger.Debug("admin request rejected: missing credential",
				zap.String("path", r.URL.Path),
			)
			jsonutil.Unauthorized(w, "Non autorisé")
			return
		}

		res := g.Verify(r.Context(), token)
		if !res.Valid {
			g.logger.Warn("admin request rejected: invalid credential",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			jsonutil.Unauthorized(w, "Non autorisé")
			return
		}

		next.ServeHTTP(w, withIdentity(r, res.Identity))
	})
}

// RequireExcept is Require for a whole sub-router, leaving the exact
// request paths in open unguarded. Paths unknown to the router are
// rejected like any other, so they answer 401 rather than 404.
func (g *Gate) RequireExcept(open ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(open))
	for _, p := range open {
		skip[strings.TrimSuffix(p, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		guarded := g.Require(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[strings.TrimSuffix(r.URL.Path, "/")] {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin & "found?" flag from the request context.
func CurrentAdmin(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(currentAdminKey).(*Identity)
	return id, ok
}

func withIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, id))
}

// WithTestAdmin attaches an identity to the request as if the gate had
// admitted it.
func WithTestAdmin(r *http.Request, id *Identity) *http.Request {
	return withIdentity(r, id)
}
