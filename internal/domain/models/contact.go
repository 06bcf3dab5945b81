// internal/domain/models/contact.go
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ContactMessageMinLength = 10

// Contact is a message sent through the public contact form.
type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"first_name" json:"firstName"`
	LastName  string             `bson:"last_name" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string             `bson:"message" json:"message"`
	Status    RequestStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Key returns the hex identifier of the contact.
func (c Contact) Key() string { return c.ID.Hex() }

// Validate checks the invariants every stored contact must satisfy.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return invalid("firstName", "Le prénom est requis")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return invalid("lastName", "Le nom est requis")
	}
	if !IsValidEmail(c.Email) {
		return invalid("email", "Adresse email invalide")
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Message)) < ContactMessageMinLength {
		return invalid("message", "Le message doit contenir au moins 10 caractères")
	}
	if !IsValidRequestStatus(string(c.Status)) {
		return invalid("status", "Statut invalide")
	}
	return nil
}
