// Package auth issues and verifies the signed credential that gates the
// admin API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// RoleAdmin is the only role the admin API accepts.
const RoleAdmin = "admin"

// DefaultIssuer is used when no issuer is configured.
const DefaultIssuer = "chinavoyage"

var (
	// ErrInvalidToken is returned for any credential that fails verification.
	ErrInvalidToken = errors.New("invalid admin token")
)

// Claims is the payload carried by an admin token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 admin tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenConfigError is returned when the signing configuration is unusable.
type TokenConfigError struct {
	Message string
}

func (e *TokenConfigError) Error() string {
	return e.Message
}

// NewTokenIssuer creates a TokenIssuer.
//
// Parameters:
//   - secret: HMAC signing key (must be ≥32 chars in production)
//   - issuer: value of the iss claim (defaults to "chinavoyage")
//   - ttl: token lifetime; every token carries an exp claim
//   - strict: if true, weak or placeholder secrets fail startup
//   - logger: used to warn about weak secrets outside strict mode
func NewTokenIssuer(secret, issuer string, ttl time.Duration, strict bool, logger *zap.Logger) (*TokenIssuer, error) {
	if secret == "" {
		return nil, &TokenConfigError{Message: "jwt secret is empty; provide ≥32 random chars"}
	}
	if ttl <= 0 {
		return nil, &TokenConfigError{Message: "jwt ttl must be positive"}
	}

	isWeak := len(secret) < 32 || isDefaultKey(secret)
	if strict {
		if isWeak {
			return nil, &TokenConfigError{
				Message: "jwt secret is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("jwt secret is weak; 32+ random chars required in production",
			zap.Int("length", len(secret)),
			zap.Bool("is_default", isDefaultKey(secret)))
	}

	if issuer == "" {
		issuer = DefaultIssuer
	}

	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue signs a token for the given identity and returns it with its expiry.
func (ti *TokenIssuer) Issue(id Identity) (string, time.Time, error) {
	now := ti.now().UTC()
	exp := now.Add(ti.ttl)
	claims := Claims{
		Email: id.Email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of a token
// and returns its claims. Every failure is reported as ErrInvalidToken
// wrapping the cause.
func (ti *TokenIssuer) Parse(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			return ti.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// isDefaultKey checks if the secret appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
