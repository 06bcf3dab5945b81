// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUnknownAdmin  = "login_failed_unknown_admin"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedAdminDisabled = "login_failed_admin_disabled"
	EventLogout                   = "logout"
)

// Admin event types
const (
	EventRecordCreated     = "record_created"
	EventRecordUpdated     = "record_updated"
	EventRecordDeleted     = "record_deleted"
	EventRecordProcessed   = "record_processed"
	EventRecordPublished   = "record_published"
	EventRecordUnpublished = "record_unpublished"
	EventFileUploaded      = "file_uploaded"
	EventDemoSeeded        = "demo_seeded"
)

// Resources named in admin events.
const (
	ResourceBlogPost      = "blog"
	ResourceTestimonial   = "testimonial"
	ResourceContact       = "contact"
	ResourceSubscriber    = "newsletter"
	ResourceTravelRequest = "travel_request"
	ResourceUpload        = "upload"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who
	ActorID    *primitive.ObjectID `bson:"actor_id,omitempty"`
	ActorEmail string              `bson:"actor_email,omitempty"`

	// What
	Resource   string `bson:"resource,omitempty"`
	ResourceID string `bson:"resource_id,omitempty"`

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	ActorID    *primitive.ObjectID
	Category   string
	EventType  string
	Resource   string
	ResourceID string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int64
	Offset     int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.ActorID != nil {
		q["actor_id"] = f.ActorID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.Resource != "" {
		q["resource"] = f.Resource
	}
	if f.ResourceID != "" {
		q["resource_id"] = f.ResourceID
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["created_at"] = tq
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	opts := options.Find().
		SetSort(storeutil.SortNewest).
		SetLimit(storeutil.ClampLimit(filter.Limit)).
		SetSkip(max(filter.Offset, 0))

	cursor, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// History returns the recorded events for one record.
func (s *Store) History(ctx context.Context, resource, resourceID string, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		Category:   CategoryAdmin,
		Resource:   resource,
		ResourceID: resourceID,
		Limit:      limit,
	})
}

// GetFailedLogins retrieves recent failed login attempts.
func (s *Store) GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]Event, error) {
	query := bson.M{
		"category":   CategoryAuth,
		"success":    false,
		"created_at": bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(storeutil.SortNewest).
		SetLimit(storeutil.ClampLimit(limit))

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
