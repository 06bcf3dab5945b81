package client

import (
	"context"
	"sync"
	"time"
)

// TokenSource supplies the admin bearer token. It is asked on every
// admin request; an empty token sends the request without one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// MemoryTokenSource holds the token returned by Login. Expired tokens are
// dropped rather than sent.
type MemoryTokenSource struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// Set stores a token. A zero expiresAt never expires.
func (m *MemoryTokenSource) Set(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.expiresAt = expiresAt
}

// Clear forgets the token.
func (m *MemoryTokenSource) Clear() {
	m.Set("", time.Time{})
}

// Token implements TokenSource.
func (m *MemoryTokenSource) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	if m.token == "" || (!m.expiresAt.IsZero() && !now().Before(m.expiresAt)) {
		return "", nil
	}
	return m.token, nil
}

// ExpiresAt returns the expiry of the held token.
func (m *MemoryTokenSource) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiresAt
}
