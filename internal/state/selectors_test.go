package state

import (
	"testing"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectors(t *testing.T) {
	posts := []models.BlogPost{
		{Title: "A", IsPublished: true},
		{Title: "B"},
		{Title: "C", IsPublished: true},
	}
	assert.Len(t, PublishedPosts(posts), 2)
	assert.Equal(t, "B", DraftPosts(posts)[0].Title)

	requests := []models.TravelRequest{
		{Name: "a", Status: models.StatusNew},
		{Name: "b", Status: models.StatusProcessed},
	}
	assert.Equal(t, "b", RequestsByStatus(requests, models.StatusProcessed)[0].Name)

	contacts := []models.Contact{{Status: models.StatusNew}, {Status: models.StatusNew}}
	assert.Len(t, ContactsByStatus(contacts, models.StatusNew), 2)
	assert.Empty(t, ContactsByStatus(contacts, models.StatusProcessed))
	assert.NotNil(t, ContactsByStatus(nil, models.StatusNew))

	subs := []models.NewsletterSubscriber{{IsActive: true}, {IsActive: false}}
	assert.Len(t, ActiveSubscribers(subs), 1)

	tms := []models.Testimonial{{IsPublished: false}}
	assert.Empty(t, PublishedTestimonials(tms))
}
