// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("blog", blogSchema())
	ensure("testimonials", testimonialsSchema())
	ensure("contacts", contactsSchema())
	ensure("newsletter", newsletterSchema())
	ensure("travelRequests", travelRequestsSchema())
	ensure("admins", adminsSchema())
	ensure("audit_logs", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// nonBlank matches a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

var (
	integer     = bson.M{"bsonType": bson.A{"int", "long"}}
	stringArray = bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}}
	requestStat = bson.M{"enum": bson.A{"new", "processed"}}
)

func withDates(required []string, props bson.M) bson.M {
	props["created_at"] = bson.M{"bsonType": "date"}
	props["updated_at"] = bson.M{"bsonType": "date"}
	req := bson.A{}
	for _, r := range append(required, "created_at", "updated_at") {
		req = append(req, r)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   req,
			"properties": props,
		},
	}
}

func blogSchema() bson.M {
	return withDates(
		[]string{"title", "excerpt", "content", "author", "category", "slug", "is_published", "views"},
		bson.M{
			"title":        nonBlank,
			"excerpt":      nonBlank,
			"content":      nonBlank,
			"author":       nonBlank,
			"category":     bson.M{"enum": bson.A{"destinations", "culture", "gastronomie", "conseils", "actualites"}},
			"tags":         stringArray,
			"reading_time": bson.M{"bsonType": "string"},
			"image":        bson.M{"bsonType": "string"},
			"slug":         bson.M{"bsonType": "string"},
			"is_published": bson.M{"bsonType": "bool"},
			"views":        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			"published_at": bson.M{"bsonType": bson.A{"date", "null"}},
		},
	)
}

func testimonialsSchema() bson.M {
	return withDates(
		[]string{"name", "text", "rating", "is_verified", "is_published"},
		bson.M{
			"name":         nonBlank,
			"location":     bson.M{"bsonType": "string"},
			"text":         nonBlank,
			"rating":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
			"travel_type":  bson.M{"bsonType": "string"},
			"travel_date":  bson.M{"bsonType": "string"},
			"is_verified":  bson.M{"bsonType": "bool"},
			"is_published": bson.M{"bsonType": "bool"},
			"avatar":       bson.M{"bsonType": "string"},
			"images":       stringArray,
		},
	)
}

func contactsSchema() bson.M {
	return withDates(
		[]string{"first_name", "last_name", "email", "message", "status"},
		bson.M{
			"first_name": nonBlank,
			"last_name":  nonBlank,
			"email":      nonBlank,
			"phone":      bson.M{"bsonType": "string"},
			"subject":    bson.M{"bsonType": "string"},
			"message":    nonBlank,
			"status":     requestStat,
		},
	)
}

func newsletterSchema() bson.M {
	return withDates(
		[]string{"email", "is_active"},
		bson.M{
			"email":     nonBlank,
			"source":    bson.M{"bsonType": "string"},
			"is_active": bson.M{"bsonType": "bool"},
		},
	)
}

func travelRequestsSchema() bson.M {
	return withDates(
		[]string{"name", "email", "destination", "status"},
		bson.M{
			"name":             nonBlank,
			"email":            nonBlank,
			"phone":            bson.M{"bsonType": "string"},
			"destination":      nonBlank,
			"travelers":        integer,
			"interests":        stringArray,
			"special_requests": bson.M{"bsonType": "string"},
			"status":           requestStat,
		},
	)
}

func adminsSchema() bson.M {
	return withDates(
		[]string{"email", "password_hash", "status"},
		bson.M{
			"email":         nonBlank,
			"name":          bson.M{"bsonType": "string"},
			"password_hash": nonBlank,
			"status":        bson.M{"enum": bson.A{"active", "disabled"}},
			"last_login_at": bson.M{"bsonType": "date"},
		},
	)
}
