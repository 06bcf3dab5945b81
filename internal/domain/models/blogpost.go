// internal/domain/models/blogpost.go
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogCategory is the fixed set of categories a blog post can belong to.
type BlogCategory string

const (
	CategoryDestinations BlogCategory = "destinations"
	CategoryCulture      BlogCategory = "culture"
	CategoryGastronomie  BlogCategory = "gastronomie"
	CategoryConseils     BlogCategory = "conseils"
	CategoryActualites   BlogCategory = "actualites"
)

// AllBlogCategories returns every valid category in display order.
func AllBlogCategories() []BlogCategory {
	return []BlogCategory{
		CategoryDestinations,
		CategoryCulture,
		CategoryGastronomie,
		CategoryConseils,
		CategoryActualites,
	}
}

// AllBlogCategoryValues returns the categories as plain strings.
func AllBlogCategoryValues() []string {
	cats := AllBlogCategories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// IsValidBlogCategory reports whether c is one of the fixed categories.
func IsValidBlogCategory(c string) bool {
	for _, v := range AllBlogCategories() {
		if string(v) == c {
			return true
		}
	}
	return false
}

// Minimum content length for a blog post, in characters.
const BlogContentMinLength = 100

// BlogPost is an article of the agency blog.
//
// Posts are created as drafts. PublishedAt is set when IsPublished goes
// from false to true and cleared when it goes back to false.
type BlogPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Excerpt     string             `bson:"excerpt" json:"excerpt"`
	Content     string             `bson:"content" json:"content"`
	Author      string             `bson:"author" json:"author"`
	Category    BlogCategory       `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	ReadingTime string             `bson:"reading_time" json:"readingTime"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Slug        string             `bson:"slug" json:"slug"`
	IsPublished bool               `bson:"is_published" json:"isPublished"`
	Views       int64              `bson:"views" json:"views"`
	PublishedAt *time.Time         `bson:"published_at" json:"publishedAt"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Key returns the hex identifier of the post.
func (p BlogPost) Key() string { return p.ID.Hex() }

// Validate checks the invariants every stored post must satisfy.
func (p BlogPost) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "Le titre est requis")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return invalid("slug", "Le slug est requis")
	}
	if strings.TrimSpace(p.Excerpt) == "" {
		return invalid("excerpt", "Le résumé est requis")
	}
	if utf8.RuneCountInString(strings.TrimSpace(p.Content)) < BlogContentMinLength {
		return invalid("content", "Le contenu doit contenir au moins 100 caractères")
	}
	if strings.TrimSpace(p.Author) == "" {
		return invalid("author", "L'auteur est requis")
	}
	if !IsValidBlogCategory(string(p.Category)) {
		return invalid("category", "Catégorie invalide")
	}
	if p.Views < 0 {
		return invalid("views", "Le nombre de vues ne peut pas être négatif")
	}
	return nil
}
