// internal/domain/models/subscriber.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewsletterSubscriber is one newsletter sign-up. Email is stored trimmed
// and lowercased and is unique across the collection.
type NewsletterSubscriber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Source    string             `bson:"source" json:"source"`
	IsActive  bool               `bson:"is_active" json:"isActive"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Key returns the hex identifier of the subscriber.
func (s NewsletterSubscriber) Key() string { return s.ID.Hex() }

// Validate checks the invariants every stored subscriber must satisfy.
func (s NewsletterSubscriber) Validate() error {
	if !IsValidEmail(s.Email) {
		return invalid("email", "Adresse email invalide")
	}
	if strings.TrimSpace(s.Source) == "" {
		return invalid("source", "La source est requise")
	}
	return nil
}
