package seeding

import (
	"testing"

	adminstore "github.com/dalemusser/chinavoyage/internal/app/store/admins"
	blogstore "github.com/dalemusser/chinavoyage/internal/app/store/blog"
	"github.com/dalemusser/chinavoyage/internal/app/system/authutil"
	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.uber.org/zap"
)

func TestEnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := AdminSeed{Email: " Admin@ChinaVoyage.fr ", Name: "Agence", Password: "un-mot-de-passe-solide"}
	if err := EnsureAdmin(ctx, db, seed, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	admin, err := adminstore.New(db).GetByEmail(ctx, "admin@chinavoyage.fr")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !authutil.CheckPassword(seed.Password, admin.PasswordHash) {
		t.Error("seeded hash does not match the configured password")
	}

	// A second run with another password leaves the account alone.
	seed.Password = "un-autre-mot-de-passe"
	if err := EnsureAdmin(ctx, db, seed, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdmin() second run error = %v", err)
	}
	n, _ := adminstore.New(db).Count(ctx)
	if n != 1 {
		t.Errorf("admin count = %d, want 1", n)
	}
	again, _ := adminstore.New(db).GetByEmail(ctx, "admin@chinavoyage.fr")
	if again.PasswordHash != admin.PasswordHash {
		t.Error("EnsureAdmin() should not change an existing admin")
	}
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAdmin(ctx, db, AdminSeed{}, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	n, _ := adminstore.New(db).Count(ctx)
	if n != 0 {
		t.Errorf("admin count = %d, want 0", n)
	}
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := EnsureAdmin(ctx, db, AdminSeed{Email: "admin@chinavoyage.fr", Password: "court"}, zap.NewNop())
	if err == nil {
		t.Fatal("EnsureAdmin() should reject a short password")
	}
}

func TestSeedDemo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inserted, err := SeedDemo(ctx, db, zap.NewNop())
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	want := Counts{
		Blog:           int64(len(demoPosts)),
		Testimonials:   int64(len(demoTestimonials)),
		Contacts:       1,
		Newsletter:     1,
		TravelRequests: 1,
	}
	if inserted != want {
		t.Errorf("SeedDemo() = %+v, want %+v", inserted, want)
	}

	published := true
	n, err := blogstore.New(db).Count(ctx, blogstore.ListFilter{Published: &published})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != int64(len(demoPosts)-1) {
		t.Errorf("published posts = %d, want %d", n, len(demoPosts)-1)
	}

	// Second run inserts nothing.
	again, err := SeedDemo(ctx, db, zap.NewNop())
	if err != nil {
		t.Fatalf("SeedDemo() second run error = %v", err)
	}
	if again.Total() != 0 {
		t.Errorf("second SeedDemo() inserted %+v, want nothing", again)
	}

	counts, err := CountAll(ctx, db)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts != want {
		t.Errorf("CountAll() = %+v, want %+v", counts, want)
	}
}
