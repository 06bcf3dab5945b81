// internal/app/store/testimonial/testimonialstore.go
package testimonial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection holding testimonials.
const CollectionName = "testimonials"

// Store provides access to the testimonials collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new testimonial store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput contains the fields of a new testimonial.
type CreateInput struct {
	Name       string
	Location   string
	Text       string
	Rating     int
	TravelType string
	TravelDate string
	Avatar     string
	Images     []string
}

// Create inserts an unpublished, unverified testimonial.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Testimonial, error) {
	now := time.Now().UTC()
	t := models.Testimonial{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(input.Name),
		Location:    strings.TrimSpace(input.Location),
		Text:        strings.TrimSpace(input.Text),
		Rating:      input.Rating,
		TravelType:  strings.TrimSpace(input.TravelType),
		TravelDate:  strings.TrimSpace(input.TravelDate),
		IsVerified:  false,
		IsPublished: false,
		Avatar:      strings.TrimSpace(input.Avatar),
		Images:      input.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return nil, fmt.Errorf("insert testimonial: %w", err)
	}
	return &t, nil
}

// ListFilter narrows List and Count. Nil fields do not filter.
type ListFilter struct {
	Published *bool
	Verified  *bool
	Limit     int64
	Offset    int64
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Published != nil {
		q["is_published"] = *f.Published
	}
	if f.Verified != nil {
		q["is_verified"] = *f.Verified
	}
	return q
}

// List returns testimonials matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Testimonial, error) {
	cur, err := s.c.Find(ctx, f.query(), storeutil.Window(f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Testimonial{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

// Count returns the number of testimonials matching the filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// GetByID returns the testimonial with the given id or storeutil.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// UpdateInput contains the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	Name        *string
	Location    *string
	Text        *string
	Rating      *int
	TravelType  *string
	TravelDate  *string
	IsVerified  *bool
	IsPublished *bool
	Avatar      *string
	Images      *[]string
}

// Update merges input into the stored testimonial and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*models.Testimonial, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}

	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
		set["name"] = t.Name
	}
	if input.Location != nil {
		t.Location = strings.TrimSpace(*input.Location)
		set["location"] = t.Location
	}
	if input.Text != nil {
		t.Text = strings.TrimSpace(*input.Text)
		set["text"] = t.Text
	}
	if input.Rating != nil {
		t.Rating = *input.Rating
		set["rating"] = t.Rating
	}
	if input.TravelType != nil {
		t.TravelType = strings.TrimSpace(*input.TravelType)
		set["travel_type"] = t.TravelType
	}
	if input.TravelDate != nil {
		t.TravelDate = strings.TrimSpace(*input.TravelDate)
		set["travel_date"] = t.TravelDate
	}
	if input.IsVerified != nil {
		t.IsVerified = *input.IsVerified
		set["is_verified"] = t.IsVerified
	}
	if input.IsPublished != nil {
		t.IsPublished = *input.IsPublished
		set["is_published"] = t.IsPublished
	}
	if input.Avatar != nil {
		t.Avatar = strings.TrimSpace(*input.Avatar)
		set["avatar"] = t.Avatar
	}
	if input.Images != nil {
		t.Images = *input.Images
		set["images"] = t.Images
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update testimonial: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storeutil.ErrNotFound
	}
	t.UpdatedAt = now
	return t, nil
}

// SetPublished shows or hides a testimonial on the public site.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Testimonial, error) {
	return s.Update(ctx, id, UpdateInput{IsPublished: &published})
}

// SetVerified marks a testimonial as coming from a confirmed customer.
func (s *Store) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.Testimonial, error) {
	return s.Update(ctx, id, UpdateInput{IsVerified: &verified})
}

// Delete removes a testimonial. It returns storeutil.ErrNotFound when no testimonial has the id.
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
