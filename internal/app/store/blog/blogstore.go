// internal/app/store/blog/blogstore.go
package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/app/system/slug"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding blog posts.
const CollectionName = "blog"

// Store provides access to the blog collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new blog store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput contains the fields of a new post.
type CreateInput struct {
	Title       string
	Excerpt     string
	Content     string
	Author      string
	Category    models.BlogCategory
	Tags        []string
	ReadingTime string
	Image       string
}

// Create inserts a new draft post. The slug is derived from the title
// and the view counter starts at zero.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.BlogPost, error) {
	now := time.Now().UTC()
	post := models.BlogPost{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(input.Title),
		Excerpt:     strings.TrimSpace(input.Excerpt),
		Content:     input.Content,
		Author:      strings.TrimSpace(input.Author),
		Category:    input.Category,
		Tags:        cleanTags(input.Tags),
		ReadingTime: strings.TrimSpace(input.ReadingTime),
		Image:       strings.TrimSpace(input.Image),
		IsPublished: false,
		Views:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	post.Slug = slugFor(post.Title, post.ID)

	if err := post.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, post); err != nil {
		return nil, fmt.Errorf("insert blog post: %w", err)
	}
	return &post, nil
}

// ListFilter narrows List and Count. Nil and empty fields do not filter.
type ListFilter struct {
	Published *bool
	Category  string
	Limit     int64
	Offset    int64
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Published != nil {
		q["is_published"] = *f.Published
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	return q
}

// List returns posts matching the filter, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.BlogPost, error) {
	cur, err := s.c.Find(ctx, f.query(), storeutil.Window(f.Limit, f.Offset))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.BlogPost{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		normalizeTimes(&posts[i])
	}
	return posts, nil
}

// Count returns the number of posts matching the filter, ignoring limit and offset.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// GetByID returns the post with the given id or storeutil.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	normalizeTimes(&post)
	return &post, nil
}

// GetPublishedBySlug returns the newest published post with the slug.
func (s *Store) GetPublishedBySlug(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	var post models.BlogPost
	opts := options.FindOne().SetSort(storeutil.SortNewest)
	err := s.c.FindOne(ctx, bson.M{"slug": postSlug, "is_published": true}, opts).Decode(&post)
	if err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	normalizeTimes(&post)
	return &post, nil
}

// ViewBySlug atomically increments the view counter of the newest
// published post with the slug and returns it after the increment.
func (s *Store) ViewBySlug(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	opts := options.FindOneAndUpdate().
		SetSort(storeutil.SortNewest).
		SetReturnDocument(options.After)

	var post models.BlogPost
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"slug": postSlug, "is_published": true},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&post)
	if err != nil {
		return nil, storeutil.MapNoDocuments(err)
	}
	normalizeTimes(&post)
	return &post, nil
}

// UpdateInput contains the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	Title       *string
	Excerpt     *string
	Content     *string
	Author      *string
	Category    *models.BlogCategory
	Tags        *[]string
	ReadingTime *string
	Image       *string
	IsPublished *bool
}

// Update merges input into the stored post and returns the result.
//
// A title change regenerates the slug. Flipping IsPublished from false to
// true stamps PublishedAt; flipping it back clears it.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*models.BlogPost, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title != post.Title {
			post.Title = title
			post.Slug = slugFor(title, post.ID)
			set["title"] = post.Title
			set["slug"] = post.Slug
		}
	}
	if input.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*input.Excerpt)
		set["excerpt"] = post.Excerpt
	}
	if input.Content != nil {
		post.Content = *input.Content
		set["content"] = post.Content
	}
	if input.Author != nil {
		post.Author = strings.TrimSpace(*input.Author)
		set["author"] = post.Author
	}
	if input.Category != nil {
		post.Category = *input.Category
		set["category"] = post.Category
	}
	if input.Tags != nil {
		post.Tags = cleanTags(*input.Tags)
		set["tags"] = post.Tags
	}
	if input.ReadingTime != nil {
		post.ReadingTime = strings.TrimSpace(*input.ReadingTime)
		set["reading_time"] = post.ReadingTime
	}
	if input.Image != nil {
		post.Image = strings.TrimSpace(*input.Image)
		set["image"] = post.Image
	}
	if input.IsPublished != nil && *input.IsPublished != post.IsPublished {
		post.IsPublished = *input.IsPublished
		set["is_published"] = post.IsPublished
		if post.IsPublished {
			post.PublishedAt = &now
		} else {
			post.PublishedAt = nil
		}
		set["published_at"] = post.PublishedAt
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update blog post: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storeutil.ErrNotFound
	}
	post.UpdatedAt = now
	return post, nil
}

// SetPublished publishes or unpublishes a post.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.BlogPost, error) {
	return s.Update(ctx, id, UpdateInput{IsPublished: &published})
}

// slugFor derives the slug from title. Titles with nothing to fold into
// ASCII, such as Chinese-only titles, get "article-<id>".
func slugFor(title string, id primitive.ObjectID) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return "article-" + id.Hex()
}

// Delete removes a post. It returns storeutil.ErrNotFound when no post has the id.
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

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeTimes makes every timestamp UTC regardless of driver decoding.
func normalizeTimes(p *models.BlogPost) {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.PublishedAt != nil {
		t := p.PublishedAt.UTC()
		p.PublishedAt = &t
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}
