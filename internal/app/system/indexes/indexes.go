// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll reconciles the indexes of every collection at startup.
// All collections are visited; the returned error joins every failure.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error

	for _, set := range []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"blog", ensureBlog},
		{"testimonials", ensureTestimonials},
		{"contacts", ensureContacts},
		{"newsletter", ensureNewsletter},
		{"travelRequests", ensureTravelRequests},
		{"admins", ensureAdmins},
		{"audit_logs", ensureAuditLogs},
	} {
		if err := set.ensure(ctx, db); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", set.name, err))
		}
	}
	return errors.Join(errs...)
}

/* -------------------------------------------------------------------------- */
/* Reconciling one collection                                                 */
/* -------------------------------------------------------------------------- */

// existingIndex is the part of listIndexes output the reconciler compares.
type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
	TTL    *int32 `bson:"expireAfterSeconds"`
}

// wanted is a desired index reduced to what is compared.
type wanted struct {
	name   string
	sig    string
	unique bool
	ttl    *int32
}

func describe(m mongo.IndexModel) wanted {
	w := wanted{sig: keySig(m.Keys.(bson.D))}
	if o := m.Options; o != nil {
		if o.Name != nil {
			w.name = *o.Name
		}
		w.unique = o.Unique != nil && *o.Unique
		w.ttl = o.ExpireAfterSeconds
	}
	return w
}

// matches reports whether ex can serve w as is.
func (w wanted) matches(ex existingIndex) bool {
	if w.unique != ex.Unique {
		return false
	}
	if (w.ttl == nil) != (ex.TTL == nil) {
		return false
	}
	return w.ttl == nil || *w.ttl == *ex.TTL
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "E11000")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var all []existingIndex
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}
	bySig := make(map[string]existingIndex, len(all))
	for _, ix := range all {
		bySig[keySig(ix.Key)] = ix
	}
	return bySig, nil
}

// ensureIndexSet makes coll carry every index in models. An index whose
// keys exist with other options (unique, TTL) is dropped and rebuilt;
// names alone never force a rebuild.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	log := zap.L().With(zap.String("collection", coll.Name()))

	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A missing collection lists nothing; CreateOne will create it.
		log.Debug("listing indexes failed", zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []error
	for _, m := range models {
		w := describe(m)
		start := time.Now()

		if ex, ok := existing[w.sig]; ok {
			if w.matches(ex) {
				log.Debug("index present", zap.String("name", ex.Name), zap.String("keys", w.sig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s(%s): drop %s: %w", coll.Name(), w.name, ex.Name, err))
				continue
			}
			log.Info("dropped index with outdated options", zap.String("name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if w.unique && isDuplicateKeyErr(err) {
				err = errors.New("cannot create unique index, duplicates present")
			}
			errs = append(errs, fmt.Errorf("%s(%s): %w", coll.Name(), w.name, err))
			continue
		}
		log.Info("index created",
			zap.String("name", w.name),
			zap.String("keys", w.sig),
			zap.Bool("unique", w.unique),
			zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureBlog(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("blog")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Public list: published posts, newest first
		{
			Keys: bson.D{
				{Key: "is_published", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_blog_published_created"),
		},
		// Category filter
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_blog_category_created"),
		},
		// Slug lookup. Not unique: two posts may share a title.
		{
			Keys: bson.D{
				{Key: "slug", Value: 1},
				{Key: "is_published", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_blog_slug_published_created"),
		},
	})
}

func ensureTestimonials(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("testimonials")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "is_published", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_testimonials_published_created"),
		},
		{
			Keys: bson.D{
				{Key: "is_verified", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_testimonials_verified_created"),
		},
	})
}

func ensureContacts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("contacts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_contacts_status_created"),
		},
	})
}

func ensureNewsletter(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("newsletter")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Backs the pre-insert existence check in Subscribe
		{
			Keys: bson.D{
				{Key: "email", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_newsletter_email"),
		},
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_newsletter_active_created"),
		},
	})
}

func ensureTravelRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("travelRequests")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_travelrequests_status_created"),
		},
	})
}

func ensureAdmins(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("admins")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "email", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_admins_email"),
		},
	})
}

func ensureAuditLogs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_logs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Time-based queries (most common)
		{
			Keys: bson.D{
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_created"),
		},
		// Category + time queries
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_created"),
		},
		// Admin-specific audit trail
		{
			Keys: bson.D{
				{Key: "actor_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_actor_created"),
		},
		// Per-record history
		{
			Keys: bson.D{
				{Key: "resource", Value: 1},
				{Key: "resource_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_resource_created"),
		},
	})
}
