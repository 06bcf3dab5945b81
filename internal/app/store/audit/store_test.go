package audit

import (
	"testing"
	"time"

	"github.com/dalemusser/chinavoyage/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	events := []Event{
		{Category: CategoryAuth, EventType: EventLoginSuccess, ActorID: &actor, IP: "10.0.0.1", Success: true},
		{Category: CategoryAdmin, EventType: EventRecordCreated, ActorID: &actor, Resource: ResourceBlogPost, ResourceID: "p1", Success: true},
		{Category: CategoryAdmin, EventType: EventRecordUpdated, ActorID: &actor, Resource: ResourceBlogPost, ResourceID: "p1", Success: true},
		{Category: CategoryAdmin, EventType: EventRecordDeleted, ActorID: &actor, Resource: ResourceContact, ResourceID: "c1", Success: true},
	}
	for i, e := range events {
		e.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"all", QueryFilter{}, 4},
		{"auth category", QueryFilter{Category: CategoryAuth}, 1},
		{"admin category", QueryFilter{Category: CategoryAdmin}, 3},
		{"by actor", QueryFilter{ActorID: &actor}, 4},
		{"by resource", QueryFilter{Resource: ResourceBlogPost}, 2},
		{"by event type", QueryFilter{EventType: EventRecordDeleted}, 1},
		{"limited", QueryFilter{Limit: 2}, 2},
		{"offset", QueryFilter{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d events, want %d", len(got), tt.want)
			}
			n, err := store.CountByFilter(ctx, QueryFilter{Category: tt.filter.Category, Resource: tt.filter.Resource})
			if err != nil {
				t.Fatalf("CountByFilter() error = %v", err)
			}
			if n < int64(len(got)) {
				t.Errorf("CountByFilter() = %d, less than returned page %d", n, len(got))
			}
		})
	}
}

func TestStore_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC()
	for i, et := range []string{EventRecordCreated, EventRecordPublished, EventRecordUnpublished} {
		err := store.Log(ctx, Event{
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Category:   CategoryAdmin,
			EventType:  et,
			Resource:   ResourceBlogPost,
			ResourceID: "p1",
			Success:    true,
		})
		if err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	got, err := store.History(ctx, ResourceBlogPost, "p1", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("History() returned %d events, want 3", len(got))
	}
	if got[0].EventType != EventRecordUnpublished {
		t.Errorf("History()[0] = %s, want newest first", got[0].EventType)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = store.Log(ctx, Event{Category: CategoryAuth, EventType: EventLoginFailedWrongPassword, Success: false})
	_ = store.Log(ctx, Event{Category: CategoryAuth, EventType: EventLoginSuccess, Success: true})
	_ = store.Log(ctx, Event{
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
		Category:  CategoryAuth, EventType: EventLoginFailedUnknownAdmin, Success: false,
	})

	got, err := store.GetFailedLogins(ctx, time.Now().UTC().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins() error = %v", err)
	}
	if len(got) != 1 || got[0].EventType != EventLoginFailedWrongPassword {
		t.Errorf("GetFailedLogins() = %+v, want the recent wrong-password event", got)
	}
}
