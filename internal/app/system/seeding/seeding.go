// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	adminstore "github.com/dalemusser/chinavoyage/internal/app/store/admins"
	blogstore "github.com/dalemusser/chinavoyage/internal/app/store/blog"
	contactstore "github.com/dalemusser/chinavoyage/internal/app/store/contact"
	newsletterstore "github.com/dalemusser/chinavoyage/internal/app/store/newsletter"
	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	testimonialstore "github.com/dalemusser/chinavoyage/internal/app/store/testimonial"
	travelrequeststore "github.com/dalemusser/chinavoyage/internal/app/store/travelrequest"
	"github.com/dalemusser/chinavoyage/internal/app/system/authutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AdminSeed names the back-office account created at startup.
type AdminSeed struct {
	Email    string
	Name     string
	Password string
}

// EnsureAdmin creates the seed admin if no admin with that email exists.
// A blank email disables seeding. An existing admin is never modified.
func EnsureAdmin(ctx context.Context, db *mongo.Database, seed AdminSeed, logger *zap.Logger) error {
	email := strings.TrimSpace(seed.Email)
	if email == "" {
		return nil
	}
	store := adminstore.New(db)

	_, err := store.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storeutil.ErrNotFound) {
		logger.Error("failed to look up seed admin", zap.String("email", email), zap.Error(err))
		return err
	}

	if err := authutil.ValidatePassword(seed.Password); err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	hash, err := authutil.HashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("hash seed admin password: %w", err)
	}
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrateur"
	}

	admin, err := store.Create(ctx, email, name, hash)
	if errors.Is(err, storeutil.ErrConflict) {
		// Another instance created it between the lookup and the insert.
		return nil
	}
	if err != nil {
		logger.Error("failed to seed admin", zap.String("email", email), zap.Error(err))
		return err
	}
	logger.Info("seeded admin account", zap.String("email", admin.Email))
	return nil
}

// Counts reports the number of documents in each record collection.
type Counts struct {
	Blog           int64 `json:"blog"`
	Testimonials   int64 `json:"testimonials"`
	Contacts       int64 `json:"contacts"`
	Newsletter     int64 `json:"newsletter"`
	TravelRequests int64 `json:"travelRequests"`
}

// Total sums every collection.
func (c Counts) Total() int64 {
	return c.Blog + c.Testimonials + c.Contacts + c.Newsletter + c.TravelRequests
}

// CountAll counts the documents of every record kind.
func CountAll(ctx context.Context, db *mongo.Database) (Counts, error) {
	var c Counts
	var err error
	if c.Blog, err = blogstore.New(db).Count(ctx, blogstore.ListFilter{}); err != nil {
		return c, fmt.Errorf("count blog: %w", err)
	}
	if c.Testimonials, err = testimonialstore.New(db).Count(ctx, testimonialstore.ListFilter{}); err != nil {
		return c, fmt.Errorf("count testimonials: %w", err)
	}
	if c.Contacts, err = contactstore.New(db).Count(ctx, contactstore.ListFilter{}); err != nil {
		return c, fmt.Errorf("count contacts: %w", err)
	}
	if c.Newsletter, err = newsletterstore.New(db).Count(ctx, newsletterstore.ListFilter{}); err != nil {
		return c, fmt.Errorf("count newsletter: %w", err)
	}
	if c.TravelRequests, err = travelrequeststore.New(db).Count(ctx, travelrequeststore.ListFilter{}); err != nil {
		return c, fmt.Errorf("count travel requests: %w", err)
	}
	return c, nil
}

// SeedDemo fills empty collections with demonstration records and returns
// how many documents it inserted per collection. Collections that already
// hold data are left untouched, so running it twice inserts nothing new.
func SeedDemo(ctx context.Context, db *mongo.Database, logger *zap.Logger) (Counts, error) {
	var inserted Counts

	existing, err := CountAll(ctx, db)
	if err != nil {
		return inserted, err
	}

	if existing.Blog == 0 {
		n, err := seedPosts(ctx, blogstore.New(db))
		inserted.Blog = n
		if err != nil {
			return inserted, err
		}
	}
	if existing.Testimonials == 0 {
		n, err := seedTestimonials(ctx, testimonialstore.New(db))
		inserted.Testimonials = n
		if err != nil {
			return inserted, err
		}
	}
	if existing.Contacts == 0 {
		if _, err := contactstore.New(db).Create(ctx, demoContact); err != nil {
			return inserted, fmt.Errorf("seed contact: %w", err)
		}
		inserted.Contacts = 1
	}
	if existing.Newsletter == 0 {
		if _, err := newsletterstore.New(db).Subscribe(ctx, "abonne.demo@example.com", "footer"); err != nil {
			return inserted, fmt.Errorf("seed subscriber: %w", err)
		}
		inserted.Newsletter = 1
	}
	if existing.TravelRequests == 0 {
		if _, err := travelrequeststore.New(db).Create(ctx, demoTravelRequest); err != nil {
			return inserted, fmt.Errorf("seed travel request: %w", err)
		}
		inserted.TravelRequests = 1
	}

	logger.Info("seeded demo data",
		zap.Int64("blog", inserted.Blog),
		zap.Int64("testimonials", inserted.Testimonials),
		zap.Int64("contacts", inserted.Contacts),
		zap.Int64("newsletter", inserted.Newsletter),
		zap.Int64("travel_requests", inserted.TravelRequests))
	return inserted, nil
}

func seedPosts(ctx context.Context, store *blogstore.Store) (int64, error) {
	var n int64
	for i, p := range demoPosts {
		post, err := store.Create(ctx, p)
		if err != nil {
			return n, fmt.Errorf("seed blog post %q: %w", p.Title, err)
		}
		n++
		// Leave the last post as a draft.
		if i < len(demoPosts)-1 {
			if _, err := store.SetPublished(ctx, post.ID, true); err != nil {
				return n, fmt.Errorf("publish blog post %q: %w", p.Title, err)
			}
		}
	}
	return n, nil
}

func seedTestimonials(ctx context.Context, store *testimonialstore.Store) (int64, error) {
	var n int64
	for _, t := range demoTestimonials {
		tm, err := store.Create(ctx, t)
		if err != nil {
			return n, fmt.Errorf("seed testimonial %q: %w", t.Name, err)
		}
		n++
		published, verified := true, true
		if _, err := store.Update(ctx, tm.ID, testimonialstore.UpdateInput{
			IsPublished: &published,
			IsVerified:  &verified,
		}); err != nil {
			return n, fmt.Errorf("publish testimonial %q: %w", t.Name, err)
		}
	}
	return n, nil
}

var demoPosts = []blogstore.CreateInput{
	{
		Title:       "Guide complet pour votre premier voyage en Chine",
		Excerpt:     "Visa, saison, budget et itinéraire : tout ce qu'il faut savoir avant de partir.",
		Content:     "<h2>Préparer son voyage</h2><p>La Chine est un pays immense. Pour un premier séjour, comptez deux à trois semaines et concentrez-vous sur le triangle Pékin, Xi'an et Shanghai.</p><p>Le printemps et l'automne offrent les températures les plus agréables.</p>",
		Author:      "Li Wei",
		Category:    models.CategoryConseils,
		Tags:        []string{"premier voyage", "visa", "itinéraire"},
		ReadingTime: "8 min",
	},
	{
		Title:       "Les saveurs du Sichuan : un voyage culinaire",
		Excerpt:     "Poivre de Sichuan, fondue et marchés de Chengdu.",
		Content:     "<p>Chengdu est classée ville de la gastronomie par l'UNESCO. Entre le mapo tofu, la fondue pimentée et les petits déjeuners de rue, chaque repas est une découverte.</p><p>Nos guides vous emmènent dans les marchés du quartier de Kuanzhai Xiangzi.</p>",
		Author:      "Sophie Martin",
		Category:    models.CategoryGastronomie,
		Tags:        []string{"Sichuan", "Chengdu"},
		ReadingTime: "5 min",
	},
	{
		Title:       "Guilin et Yangshuo hors des sentiers battus",
		Excerpt:     "Rizières en terrasses et croisière sur la rivière Li.",
		Content:     "<p>Les pains de sucre de Guilin font partie des paysages les plus célèbres de Chine. Au départ de Yangshuo, partez à vélo dans la campagne et découvrez les rizières de Longji au lever du soleil.</p>",
		Author:      "Li Wei",
		Category:    models.CategoryDestinations,
		Tags:        []string{"Guilin", "nature"},
		ReadingTime: "6 min",
	},
}

var demoTestimonials = []testimonialstore.CreateInput{
	{
		Name:       "Marie L.",
		Location:   "Lyon",
		Text:       "Un voyage exceptionnel, parfaitement organisé du début à la fin. Notre guide à Pékin était passionnant.",
		Rating:     5,
		TravelType: "Circuit culturel",
		TravelDate: "Avril 2024",
	},
	{
		Name:       "Thomas et Julie",
		Location:   "Bordeaux",
		Text:       "Une lune de miel inoubliable entre Shanghai et Guilin. Les hôtels choisis étaient superbes, merci encore !",
		Rating:     5,
		TravelType: "Voyage de noces",
		TravelDate: "Octobre 2023",
	},
}

var demoContact = contactstore.CreateInput{
	FirstName: "Jean",
	LastName:  "Dupont",
	Email:     "jean.dupont@example.com",
	Subject:   "Devis pour un circuit en famille",
	Message:   "Bonjour, nous sommes quatre et souhaitons partir en juillet. Pouvez-vous nous envoyer un devis ?",
}

var demoTravelRequest = travelrequeststore.CreateInput{
	Name:                "Claire Bernard",
	Email:               "claire.bernard@example.com",
	Destinations:        []string{"Pékin", "Xi'an", "Shanghai"},
	Duration:            "15 jours",
	StartDate:           "2025-09-10",
	Travelers:           2,
	Budget:              "3000-5000",
	Interests:           []string{"histoire", "gastronomie"},
	AccommodationType:   "hotel-4",
	TransportPreference: "train",
}
