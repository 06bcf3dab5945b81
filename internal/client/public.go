package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
)

// ContactInput is the contact form.
type ContactInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
}

// SubscribeInput is the newsletter sign-up form.
type SubscribeInput struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

// TestimonialInput is the public testimonial form.
type TestimonialInput struct {
	Name       string   `json:"name"`
	Location   string   `json:"location,omitempty"`
	Text       string   `json:"text"`
	Rating     int      `json:"rating"`
	TravelType string   `json:"travelType,omitempty"`
	TravelDate string   `json:"travelDate,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	Images     []string `json:"images,omitempty"`
}

// TravelRequestInput is the multi-step custom trip form.
type TravelRequestInput struct {
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Phone               string   `json:"phone,omitempty"`
	Destinations        []string `json:"destinations"`
	Duration            string   `json:"duration,omitempty"`
	StartDate           string   `json:"startDate,omitempty"`
	Travelers           int      `json:"travelers"`
	Budget              string   `json:"budget,omitempty"`
	Interests           []string `json:"interests,omitempty"`
	AccommodationType   string   `json:"accommodationType,omitempty"`
	TransportPreference string   `json:"transportPreference,omitempty"`
	SpecialRequests     string   `json:"specialRequests,omitempty"`
}

// PostInput is a new blog article.
type PostInput struct {
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	ReadingTime string   `json:"readingTime,omitempty"`
	Image       string   `json:"image,omitempty"`
}

func (c *Client) submit(ctx context.Context, path string, input any) (string, error) {
	env, err := c.do(ctx, http.MethodPost, path, nil, input)
	if err != nil {
		return "", err
	}
	var id string
	if err := env.decode("id", &id); err != nil {
		return "", err
	}
	return id, nil
}

// SubmitContact sends the contact form and returns the new message id.
func (c *Client) SubmitContact(ctx context.Context, in ContactInput) (string, error) {
	return c.submit(ctx, "/api/contact", in)
}

// Subscribe signs an email up for the newsletter. An address already
// subscribed fails with a 409 *Error.
func (c *Client) Subscribe(ctx context.Context, in SubscribeInput) (string, error) {
	return c.submit(ctx, "/api/newsletter", in)
}

// SubmitTestimonial sends a testimonial for moderation.
func (c *Client) SubmitTestimonial(ctx context.Context, in TestimonialInput) (string, error) {
	return c.submit(ctx, "/api/testimonials", in)
}

// SubmitTravelRequest sends the custom trip form.
func (c *Client) SubmitTravelRequest(ctx context.Context, in TravelRequestInput) (string, error) {
	return c.submit(ctx, "/api/travel-requests", in)
}

// PublishedPosts lists published articles, optionally in one category.
func (c *Client) PublishedPosts(ctx context.Context, limit, offset int64, category string) ([]models.BlogPost, int64, error) {
	q := ListParams(limit, offset)
	if category != "" {
		q.Set("category", category)
	}
	env, err := c.do(ctx, http.MethodGet, "/api/blog", q, nil)
	if err != nil {
		return nil, 0, err
	}
	var posts []models.BlogPost
	var total int64
	if err := env.decode("posts", &posts); err != nil {
		return nil, 0, err
	}
	if err := env.decode("total", &total); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// PostBySlug returns a published article. Each call counts as a view.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/blog/"+url.PathEscape(slug), nil, nil)
	if err != nil {
		return nil, err
	}
	var post models.BlogPost
	if err := env.decode("post", &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// PublishedTestimonials lists testimonials shown on the site.
func (c *Client) PublishedTestimonials(ctx context.Context, limit int64) ([]models.Testimonial, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}
	env, err := c.do(ctx, http.MethodGet, "/api/testimonials", q, nil)
	if err != nil {
		return nil, err
	}
	var items []models.Testimonial
	if err := env.decode("testimonials", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Admin is the identity returned by login and /me.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Admin     Admin
}

// tokenSetter is implemented by token sources that can hold a login token.
type tokenSetter interface {
	Set(token string, expiresAt time.Time)
}

// Login exchanges credentials for an admin token. When the client's
// token source can hold it (MemoryTokenSource does), later admin calls
// use it automatically.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	env, err := c.do(ctx, http.MethodPost, loginPath, nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var s Session
	if err := env.decode("token", &s.Token); err != nil {
		return nil, err
	}
	if err := env.decode("expiresAt", &s.ExpiresAt); err != nil {
		return nil, err
	}
	if err := env.decode("admin", &s.Admin); err != nil {
		return nil, err
	}
	if ts, ok := c.tokens.(tokenSetter); ok {
		ts.Set(s.Token, s.ExpiresAt)
	}
	return &s, nil
}

// Logout tells the server to clear its cookie and forgets the local token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
	if ts, ok := c.tokens.(tokenSetter); ok {
		ts.Set("", time.Time{})
	}
	return err
}

// Me returns the admin the current token belongs to.
func (c *Client) Me(ctx context.Context) (*Admin, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/admin/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var a Admin
	if err := env.decode("admin", &a); err != nil {
		return nil, err
	}
	return &a, nil
}
