package indexes_test

import (
	"testing"
	"time"

	"github.com/dalemusser/chinavoyage/internal/app/system/indexes"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB already ran EnsureAll once.
	require.NoError(t, indexes.EnsureAll(ctx, db))
}

func TestEnsureAll_RebuildsIndexMissingUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("newsletter")
	_, err := coll.Indexes().DropOne(ctx, "uniq_newsletter_email")
	require.NoError(t, err)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("old_email"),
	})
	require.NoError(t, err)

	require.NoError(t, indexes.EnsureAll(ctx, db))

	cur, err := coll.Indexes().List(ctx)
	require.NoError(t, err)
	var all []bson.M
	require.NoError(t, cur.All(ctx, &all))

	byName := map[string]bson.M{}
	for _, ix := range all {
		byName[ix["name"].(string)] = ix
	}
	assert.NotContains(t, byName, "old_email")
	require.Contains(t, byName, "uniq_newsletter_email")
	assert.Equal(t, true, byName["uniq_newsletter_email"]["unique"])
}

func TestEnsureAll_ReportsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("newsletter")
	_, err := coll.Indexes().DropOne(ctx, "uniq_newsletter_email")
	require.NoError(t, err)
	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		_, err := coll.InsertOne(ctx, bson.M{
			"email":      "jean@example.com",
			"source":     "footer",
			"is_active":  true,
			"created_at": now,
			"updated_at": now,
		})
		require.NoError(t, err)
	}

	err = indexes.EnsureAll(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates present")
}
