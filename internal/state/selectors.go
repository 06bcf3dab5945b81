package state

import "github.com/dalemusser/chinavoyage/internal/domain/models"

func filter[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// PublishedPosts returns the published articles of the list.
func PublishedPosts(posts []models.BlogPost) []models.BlogPost {
	return filter(posts, func(p models.BlogPost) bool { return p.IsPublished })
}

// DraftPosts returns the unpublished articles of the list.
func DraftPosts(posts []models.BlogPost) []models.BlogPost {
	return filter(posts, func(p models.BlogPost) bool { return !p.IsPublished })
}

// PublishedTestimonials returns the testimonials shown on the site.
func PublishedTestimonials(items []models.Testimonial) []models.Testimonial {
	return filter(items, func(t models.Testimonial) bool { return t.IsPublished })
}

// ContactsByStatus returns the messages in status.
func ContactsByStatus(items []models.Contact, status models.RequestStatus) []models.Contact {
	return filter(items, func(c models.Contact) bool { return c.Status == status })
}

// RequestsByStatus returns the travel requests in status.
func RequestsByStatus(items []models.TravelRequest, status models.RequestStatus) []models.TravelRequest {
	return filter(items, func(r models.TravelRequest) bool { return r.Status == status })
}

// ActiveSubscribers returns the subscribers still receiving the newsletter.
func ActiveSubscribers(items []models.NewsletterSubscriber) []models.NewsletterSubscriber {
	return filter(items, func(s models.NewsletterSubscriber) bool { return s.IsActive })
}
