package contact

import (
	"errors"
	"testing"

	"github.com/dalemusser/chinavoyage/internal/app/store/storeutil"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func jean() CreateInput {
	return CreateInput{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     " Jean@Example.com ",
		Message:   "Bonjour, ceci est un test.",
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, jean())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Status != models.StatusNew {
		t.Errorf("Status = %q, want new", c.Status)
	}
	if c.Email != "jean@example.com" {
		t.Errorf("Email = %q, want normalized", c.Email)
	}

	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FirstName != "Jean" || got.Message != "Bonjour, ceci est un test." {
		t.Errorf("stored contact = %+v", got)
	}
}

func TestStore_Create_ShortMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := jean()
	in.Message = "Salut"
	if _, err := store.Create(ctx, in); err == nil {
		t.Fatal("Create() should reject message under 10 characters")
	}
}

func TestStore_MarkProcessed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, _ := store.Create(ctx, jean())

	for i := 0; i < 2; i++ {
		if err := store.MarkProcessed(ctx, c.ID); err != nil {
			t.Fatalf("MarkProcessed() call %d error = %v", i+1, err)
		}
		got, _ := store.GetByID(ctx, c.ID)
		if got.Status != models.StatusProcessed {
			t.Errorf("call %d: Status = %q, want processed", i+1, got.Status)
		}
	}
}

func TestStore_MarkProcessed_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.MarkProcessed(ctx, primitive.NewObjectID()); !errors.Is(err, storeutil.ErrNotFound) {
		t.Errorf("MarkProcessed() error = %v, want ErrNotFound", err)
	}
}

func TestStore_List_ByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, jean())
	store.Create(ctx, jean())
	store.MarkProcessed(ctx, a.ID)

	list, err := store.List(ctx, ListFilter{Status: models.StatusNew})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List(new) len = %d, want 1", len(list))
	}
	n, _ := store.Count(ctx, ListFilter{Status: models.StatusProcessed})
	if n != 1 {
		t.Errorf("Count(processed) = %d, want 1", n)
	}
}

func TestStore_Update_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, _ := store.Create(ctx, jean())
	bad := models.RequestStatus("archived")
	if _, err := store.Update(ctx, c.ID, UpdateInput{Status: &bad}); err == nil {
		t.Error("Update() should reject unknown status")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, _ := store.Create(ctx, jean())
	if err := store.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, c.ID); !errors.Is(err, storeutil.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, c.ID); !errors.Is(err, storeutil.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
