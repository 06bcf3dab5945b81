// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the requested id or slug.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")
)

// List limits.
const (
	DefaultLimit int64 = 20
	MaxLimit     int64 = 100
)

// SortNewest orders documents by creation time, newest first.
var SortNewest = bson.D{{Key: "created_at", Value: -1}}

// Window returns find options sorted newest first with a clamped
// limit and a non-negative offset.
func Window(limit, offset int64) *options.FindOptions {
	return options.Find().
		SetSort(SortNewest).
		SetLimit(ClampLimit(limit)).
		SetSkip(max(offset, 0))
}

// ClampLimit bounds a caller-supplied limit to [1, MaxLimit], using
// DefaultLimit when none was given.
func ClampLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// ParseID converts a hex id, mapping malformed ids to ErrNotFound.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

// MapNoDocuments turns mongo.ErrNoDocuments into ErrNotFound.
func MapNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
