package adminstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_CreateAndGetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, "  Admin@ChinaVoyage.FR ", "Agence", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.Email != "admin@chinavoyage.fr" {
		t.Errorf("Email = %q, want normalized", a.Email)
	}

	got, err := store.GetByEmail(ctx, "ADMIN@chinavoyage.fr")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("GetByEmail() id = %v, want %v", got.ID, a.ID)
	}

	if _, err := store.Create(ctx, "admin@chinavoyage.fr", "Autre", "hash"); !errors.Is(err, storeutil.ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}
}

func TestStore_GetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, storeutil.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestFetcher_FetchAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	fetcher := NewFetcher(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, "admin@example.com", "Admin", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	id := fetcher.FetchAdmin(ctx, a.ID.Hex())
	if id == nil {
		t.Fatal("FetchAdmin() = nil for active admin")
	}
	if id.Email != "admin@example.com" {
		t.Errorf("Email = %q", id.Email)
	}

	if err := store.SetStatus(ctx, a.ID, models.AdminStatusDisabled); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if fetcher.FetchAdmin(ctx, a.ID.Hex()) != nil {
		t.Error("FetchAdmin() should return nil for disabled admin")
	}

	if fetcher.FetchAdmin(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("FetchAdmin() should return nil for unknown admin")
	}
	if fetcher.FetchAdmin(ctx, "not-an-id") != nil {
		t.Error("FetchAdmin() should return nil for malformed id")
	}
}

func TestStore_SetStatus_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, "admin@example.com", "Admin", "hash")
	if err := store.SetStatus(ctx, a.ID, "suspended"); err == nil {
		t.Error("SetStatus() should reject unknown status")
	}
	if err := store.SetStatus(ctx, primitive.NewObjectID(), models.AdminStatusActive); !errors.Is(err, storeutil.ErrNotFound) {
		t.Errorf("SetStatus() on missing admin error = %v, want ErrNotFound", err)
	}
}
