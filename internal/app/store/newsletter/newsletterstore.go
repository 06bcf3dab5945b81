// internal/app/store/newsletter/newsletterstore.go
package newsletter

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding subscribers.
const CollectionName = "newsletter"

// DefaultSource is recorded when a subscription does not name its origin.
const DefaultSource = "website"

// Store provides access to the newsletter collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new newsletter store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// ExistsByEmail reports whether the normalized email is already subscribed.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Subscribe adds an active subscriber. The email is trimmed and lowercased
// first; an existing subscription returns storeutil.ErrConflict.
func (s *Store) Subscribe(ctx context.Context, email, source string) (*models.NewsletterSubscriber, error) {
	now := time.Now().UTC()
	sub := models.NewsletterSubscriber{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		Source:    normalize.Source(source),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if sub.Source == "" {
		sub.Source = DefaultSource
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.ExistsByEmail(ctx, sub.Email)
	if err != nil {
		return nil, fmt.Errorf("check subscriber: %w", err)
	}
	if exists {
		return nil, storeutil.ErrConflict
	}

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		// Two concurrent subscriptions can both pass the check above.
		if storeutil.IsDuplicateKey(err) {
			return nil, storeutil.ErrConflict
		}
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}
	return &sub, nil
}

// ListFilter narrows List and Count. A nil Active does not filter.
type ListFilter struct {
	Active *bool
	Limit  int64
	Offset int64
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Active != nil {
		q["is_active"] = *f.Active
	}
	return q
}

// List returns subscribers matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.NewsletterSubscriber, error) {
	cur, err := s.c.Find(ctx, f.query(), storeutil.Window(f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.NewsletterSubscriber{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

// Count returns the number of subscribers matching the filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// GetByID returns the subscriber with the given id or storeutil.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}

// UpdateInput contains the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	Source   *string
	IsActive *bool
}

// Update merges input into the stored subscriber and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*models.NewsletterSubscriber, error) {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if input.Source != nil {
		sub.Source = normalize.Source(*input.Source)
		if sub.Source == "" {
			sub.Source = DefaultSource
		}
		set["source"] = sub.Source
	}
	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
		set["is_active"] = sub.IsActive
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update subscriber: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storeutil.ErrNotFound
	}
	sub.UpdatedAt = now
	return sub, nil
}

// SetActive activates or deactivates a subscriber.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.NewsletterSubscriber, error) {
	return s.Update(ctx, id, UpdateInput{IsActive: &active})
}

// Delete removes a subscriber. It returns storeutil.ErrNotFound when no subscriber has the id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storeutil.ErrNotFound
	}
	return nil
}
