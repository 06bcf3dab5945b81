package storeutil

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{50, 50},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	opts := Window(500, -3)
	if opts.Limit == nil || *opts.Limit != MaxLimit {
		t.Errorf("Limit = %v, want %d", opts.Limit, MaxLimit)
	}
	if opts.Skip == nil || *opts.Skip != 0 {
		t.Errorf("Skip = %v, want 0", opts.Skip)
	}
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := ParseID(oid.Hex())
	if err != nil || got != oid {
		t.Errorf("ParseID(valid) = %v, %v", got, err)
	}
	if _, err := ParseID("not-an-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ParseID(invalid) error = %v, want ErrNotFound", err)
	}
}

func TestMapNoDocuments(t *testing.T) {
	if !errors.Is(MapNoDocuments(mongo.ErrNoDocuments), ErrNotFound) {
		t.Error("MapNoDocuments should map ErrNoDocuments to ErrNotFound")
	}
	other := errors.New("boom")
	if MapNoDocuments(other) != other {
		t.Error("MapNoDocuments should pass other errors through")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if IsDuplicateKey(nil) {
		t.Error("IsDuplicateKey(nil) = true")
	}
	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	if !IsDuplicateKey(we) {
		t.Error("IsDuplicateKey(E11000) = false")
	}
	if IsDuplicateKey(errors.New("timeout")) {
		t.Error("IsDuplicateKey(timeout) = true")
	}
}
