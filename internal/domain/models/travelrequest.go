// internal/domain/models/travelrequest.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DestinationSeparator joins the destinations picked in the request form.
const DestinationSeparator = ", "

// TravelRequest is a custom trip request from the multi-step form.
type TravelRequest struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Destination         string             `bson:"destination" json:"destination"`
	Duration            string             `bson:"duration" json:"duration"`
	StartDate           string             `bson:"start_date" json:"startDate"`
	Travelers           int                `bson:"travelers" json:"travelers"`
	Budget              string             `bson:"budget" json:"budget"`
	Interests           []string           `bson:"interests" json:"interests"`
	AccommodationType   string             `bson:"accommodation_type" json:"accommodationType"`
	TransportPreference string             `bson:"transport_preference" json:"transportPreference"`
	SpecialRequests     string             `bson:"special_requests,omitempty" json:"specialRequests,omitempty"`
	Status              RequestStatus      `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Key returns the hex identifier of the request.
func (t TravelRequest) Key() string { return t.ID.Hex() }

// JoinDestinations builds the stored destination field from the form's
// multi-select list. Blank entries are dropped.
func JoinDestinations(destinations []string) string {
	kept := make([]string, 0, len(destinations))
	for _, d := range destinations {
		if d = strings.TrimSpace(d); d != "" {
			kept = append(kept, d)
		}
	}
	return strings.Join(kept, DestinationSeparator)
}

// Destinations splits the stored destination field back into a list.
func (t TravelRequest) Destinations() []string {
	if strings.TrimSpace(t.Destination) == "" {
		return nil
	}
	return strings.Split(t.Destination, DestinationSeparator)
}

// Validate checks the invariants every stored request must satisfy.
func (t TravelRequest) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return invalid("name", "Le nom est requis")
	}
	if !IsValidEmail(t.Email) {
		return invalid("email", "Adresse email invalide")
	}
	if strings.TrimSpace(t.Destination) == "" {
		return invalid("destinations", "Veuillez sélectionner au moins une destination")
	}
	if t.Travelers < 0 {
		return invalid("travelers", "Le nombre de voyageurs est invalide")
	}
	if !IsValidRequestStatus(string(t.Status)) {
		return invalid("status", "Statut invalide")
	}
	return nil
}
