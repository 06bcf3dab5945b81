// Package client is the typed HTTP data layer for the agency API, used by
// the admin CLI and by anything else that talks to a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.uber.org/zap"
)

// EnvAPIURL overrides the API base URL.
const EnvAPIURL = "CHINAVOYAGE_API_URL"

// DefaultBaseURL is used when neither the environment nor an origin names a server.
const DefaultBaseURL = "http://localhost:8080"

const loginPath = "/api/admin/login"

// ResolveBaseURL picks the API base URL: the CHINAVOYAGE_API_URL value
// returned by getenv, else origin, else DefaultBaseURL. A nil getenv reads
// the process environment. Trailing slashes are removed.
func ResolveBaseURL(getenv func(string) string, origin string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, candidate := range []string{getenv(EnvAPIURL), origin} {
		if c := strings.TrimRight(strings.TrimSpace(candidate), "/"); c != "" {
			return c
		}
	}
	return DefaultBaseURL
}

// Client calls the agency API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger

	Posts          *Resource[models.BlogPost]
	Testimonials   *Resource[models.Testimonial]
	Contacts       *Processable[models.Contact]
	Subscribers    *Resource[models.NewsletterSubscriber]
	TravelRequests *Processable[models.TravelRequest]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// still wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where admin tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for outbound requests.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. Without WithTokenSource the client
// holds its own MemoryTokenSource, filled by Login.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  &MemoryTokenSource{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	hc.Transport = &loggingTransport{base: hc.Transport, logger: c.logger}
	c.http = &hc

	c.Posts = &Resource[models.BlogPost]{c: c, adminPath: "/api/admin/blog", createPath: "/api/admin/blog", listKey: "posts", itemKey: "post"}
	c.Testimonials = &Resource[models.Testimonial]{c: c, adminPath: "/api/admin/testimonials", createPath: "/api/testimonials", listKey: "testimonials", itemKey: "testimonial"}
	c.Contacts = &Processable[models.Contact]{Resource[models.Contact]{c: c, adminPath: "/api/admin/contacts", createPath: "/api/contact", listKey: "contacts", itemKey: "contact"}}
	c.Subscribers = &Resource[models.NewsletterSubscriber]{c: c, adminPath: "/api/admin/newsletter", createPath: "/api/newsletter", listKey: "subscribers", itemKey: "subscriber"}
	c.TravelRequests = &Processable[models.TravelRequest]{Resource[models.TravelRequest]{c: c, adminPath: "/api/admin/travel-requests", createPath: "/api/travel-requests", listKey: "requests", itemKey: "request"}}
	return c
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Tokens returns the client's token source.
func (c *Client) Tokens() TokenSource { return c.tokens }

// needsToken reports whether path is an admin path that takes a bearer token.
func needsToken(path string) bool {
	return strings.Contains(path, "/api/admin") && !strings.HasSuffix(path, loginPath)
}

// envelope is a decoded {"success": true, ...} response body.
type envelope map[string]json.RawMessage

func (e envelope) decode(key string, v any) error {
	raw, ok := e[key]
	if !ok {
		return &Error{Message: DefaultErrorMessage, Err: fmt.Errorf("response has no %q field", key)}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Message: DefaultErrorMessage, Err: fmt.Errorf("decode %q: %w", key, err)}
	}
	return nil
}

// do sends one request and returns the decoded body of a 2xx response.
// Every failure is returned as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (envelope, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: DefaultErrorMessage, Err: fmt.Errorf("encode request: %w", err)}
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, &Error{Message: DefaultErrorMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if needsToken(path) && c.tokens != nil {
		// Asked per request so a token set after construction is used.
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{Status: http.StatusUnauthorized, Message: DefaultErrorMessage, Err: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: DefaultErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: DefaultErrorMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromBody(resp.StatusCode, raw)
	}

	env := envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, &Error{Status: resp.StatusCode, Message: DefaultErrorMessage, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return env, nil
}

// errorFromBody builds the *Error for a non-2xx response, keeping the
// server's "error" message when the body carries one.
func errorFromBody(status int, raw []byte) *Error {
	var body struct {
		Error string `json:"error"`
	}
	msg := DefaultErrorMessage
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		msg = body.Error
	}
	return &Error{Status: status, Message: msg, Err: errors.New(http.StatusText(status))}
}
