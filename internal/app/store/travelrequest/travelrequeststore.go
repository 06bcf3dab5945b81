// internal/app/store/travelrequest/travelrequeststore.go
package travelrequest

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

// CollectionName is the MongoDB collection holding travel requests.
const CollectionName = "travelRequests"

// Store provides access to the travelRequests collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new travel request store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput contains the fields of a custom trip request.
// Destinations is the multi-select list; it is stored joined.
type CreateInput struct {
	Name                string
	Email               string
	Phone               string
	Destinations        []string
	Duration            string
	StartDate           string
	Travelers           int
	Budget              string
	Interests           []string
	AccommodationType   string
	TransportPreference string
	SpecialRequests     string
}

// Create inserts a request with status "new".
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.TravelRequest, error) {
	now := time.Now().UTC()
	tr := models.TravelRequest{
		ID:                  primitive.NewObjectID(),
		Name:                normalize.Name(input.Name),
		Email:               normalize.Email(input.Email),
		Phone:               strings.TrimSpace(input.Phone),
		Destination:         models.JoinDestinations(input.Destinations),
		Duration:            strings.TrimSpace(input.Duration),
		StartDate:           strings.TrimSpace(input.StartDate),
		Travelers:           input.Travelers,
		Budget:              strings.TrimSpace(input.Budget),
		Interests:           input.Interests,
		AccommodationType:   strings.TrimSpace(input.AccommodationType),
		TransportPreference: strings.TrimSpace(input.TransportPreference),
		SpecialRequests:     strings.TrimSpace(input.SpecialRequests),
		Status:              models.StatusNew,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if tr.Interests == nil {
		tr.Interests = []string{}
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, tr); err != nil {
		return nil, fmt.Errorf("insert travel request: %w", err)
	}
	return &tr, nil
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

// List returns requests matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.TravelRequest, error) {
	cur, err := s.c.Find(ctx, f.query(), storeutil.Window(f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.TravelRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

// Count returns the number of requests matching the filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// GetByID returns the request with the given id or storeutil.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TravelRequest, error) {
	var tr models.TravelRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tr); err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	tr.CreatedAt = tr.CreatedAt.UTC()
	tr.UpdatedAt = tr.UpdatedAt.UTC()
	return &tr, nil
}

// UpdateInput contains the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	Phone               *string
	Destinations        *[]string
	Duration            *string
	StartDate           *string
	Travelers           *int
	Budget              *string
	Interests           *[]string
	AccommodationType   *string
	TransportPreference *string
	SpecialRequests     *string
	Status              *models.RequestStatus
}

// Update merges input into the stored request and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*models.TravelRequest, error) {
	tr, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}

	str := func(field string, dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			set[field] = *dst
		}
	}
	str("phone", &tr.Phone, input.Phone)
	str("duration", &tr.Duration, input.Duration)
	str("start_date", &tr.StartDate, input.StartDate)
	str("budget", &tr.Budget, input.Budget)
	str("accommodation_type", &tr.AccommodationType, input.AccommodationType)
	str("transport_preference", &tr.TransportPreference, input.TransportPreference)
	str("special_requests", &tr.SpecialRequests, input.SpecialRequests)

	if input.Destinations != nil {
		tr.Destination = models.JoinDestinations(*input.Destinations)
		set["destination"] = tr.Destination
	}
	if input.Travelers != nil {
		tr.Travelers = *input.Travelers
		set["travelers"] = tr.Travelers
	}
	if input.Interests != nil {
		tr.Interests = *input.Interests
		set["interests"] = tr.Interests
	}
	if input.Status != nil {
		tr.Status = models.RequestStatus(normalize.Status(string(*input.Status)))
		set["status"] = tr.Status
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update travel request: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storeutil.ErrNotFound
	}
	tr.UpdatedAt = now
	return tr, nil
}

// MarkProcessed moves a request to "processed". Repeated calls succeed.
func (s *Store) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     models.StatusProcessed,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("mark travel request processed: %w", err)
	}
	if res.MatchedCount == 0 {
		return storeutil.ErrNotFound
	}
	return nil
}

// Delete removes a request. It returns storeutil.ErrNotFound when no request has the id.
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
