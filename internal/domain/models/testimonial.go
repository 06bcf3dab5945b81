// internal/domain/models/testimonial.go
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TestimonialTextMinLength = 50
	RatingMin                = 1
	RatingMax                = 5
)

// Testimonial is a traveller review. Public submissions start unpublished
// and unverified; admins toggle both flags independently.
type Testimonial struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Location    string             `bson:"location" json:"location"`
	Text        string             `bson:"text" json:"text"`
	Rating      int                `bson:"rating" json:"rating"`
	TravelType  string             `bson:"travel_type" json:"travelType"`
	TravelDate  string             `bson:"travel_date" json:"travelDate"`
	IsVerified  bool               `bson:"is_verified" json:"isVerified"`
	IsPublished bool               `bson:"is_published" json:"isPublished"`
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Key returns the hex identifier of the testimonial.
func (t Testimonial) Key() string { return t.ID.Hex() }

// Validate checks the invariants every stored testimonial must satisfy.
func (t Testimonial) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return invalid("name", "Le nom est requis")
	}
	if utf8.RuneCountInString(strings.TrimSpace(t.Text)) < TestimonialTextMinLength {
		return invalid("text", "Le témoignage doit contenir au moins 50 caractères")
	}
	if t.Rating < RatingMin || t.Rating > RatingMax {
		return invalid("rating", "La note doit être comprise entre 1 et 5")
	}
	return nil
}
