// internal/app/store/admins/fetcher.go
package adminstore

import (
	"context"

	"github.com/dalemusser/chinavoyage/internal/app/system/auth"
	"github.com/dalemusser/chinavoyage/internal/app/system/timeouts"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Fetcher implements auth.AdminFetcher so that every gated request sees
// the admin's current status rather than what the token claimed.
type Fetcher struct {
	admins *mongo.Collection
	logger *zap.Logger
}

// NewFetcher creates an AdminFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		admins: db.Collection(CollectionName),
		logger: logger,
	}
}

// FetchAdmin returns nil if the admin is not found, disabled, or the
// lookup fails.
func (f *Fetcher) FetchAdmin(ctx context.Context, adminID string) *auth.Identity {
	oid, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var a models.Admin
	proj := options.FindOne().SetProjection(bson.M{
		"_id":    1,
		"email":  1,
		"name":   1,
		"status": 1,
	})
	if err := f.admins.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&a); err != nil {
		if err != mongo.ErrNoDocuments {
			f.logger.Warn("admin lookup failed", zap.String("admin_id", adminID), zap.Error(err))
		}
		return nil
	}
	if !a.IsActive() {
		return nil
	}

	return &auth.Identity{
		ID:    a.ID.Hex(),
		Email: a.Email,
		Name:  a.Name,
		Role:  auth.RoleAdmin,
	}
}
