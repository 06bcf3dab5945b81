// internal/app/store/contact/contactstore.go
package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/normalize"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection holding contact messages.
const CollectionName = "contacts"

// Store provides access to the contacts collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new contact store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput contains the fields of a contact form submission.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Subject   string
	Message   string
}

// Create inserts a contact with status "new".
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Contact, error) {
	now := time.Now().UTC()
	c := models.Contact{
		ID:        primitive.NewObjectID(),
		FirstName: normalize.Name(input.FirstName),
		LastName:  normalize.Name(input.LastName),
		Email:     normalize.Email(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		Status:    models.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return &c, nil
}

// ListFilter narrows List and Count. An empty Status does not filter.
type ListFilter struct {
	Status models.RequestStatus
	Limit  int64
	Offset int64
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

// List returns contacts matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Contact, error) {
	cur, err := s.c.Find(ctx, f.query(), storeutil.Window(f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

// Count returns the number of contacts matching the filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// GetByID returns the contact with the given id or storeutil.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contact, error) {
	var c models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// UpdateInput contains the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Subject   *string
	Message   *string
	Status    *models.RequestStatus
}

// Update merges input into the stored contact and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*models.Contact, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}

	if input.FirstName != nil {
		c.FirstName = normalize.Name(*input.FirstName)
		set["first_name"] = c.FirstName
	}
	if input.LastName != nil {
		c.LastName = normalize.Name(*input.LastName)
		set["last_name"] = c.LastName
	}
	if input.Email != nil {
		c.Email = normalize.Email(*input.Email)
		set["email"] = c.Email
	}
	if input.Phone != nil {
		c.Phone = strings.TrimSpace(*input.Phone)
		set["phone"] = c.Phone
	}
	if input.Subject != nil {
		c.Subject = strings.TrimSpace(*input.Subject)
		set["subject"] = c.Subject
	}
	if input.Message != nil {
		c.Message = strings.TrimSpace(*input.Message)
		set["message"] = c.Message
	}
	if input.Status != nil {
		c.Status = models.RequestStatus(normalize.Status(string(*input.Status)))
		set["status"] = c.Status
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storeutil.ErrNotFound
	}
	c.UpdatedAt = now
	return c, nil
}

// MarkProcessed moves a contact to "processed". Calling it on an already
// processed contact succeeds and leaves the status unchanged.
func (s *Store) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     models.StatusProcessed,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("mark contact processed: %w", err)
	}
	if res.MatchedCount == 0 {
		return storeutil.ErrNotFound
	}
	return nil
}

// Delete removes a contact. It returns storeutil.ErrNotFound when no contact has the id.
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
