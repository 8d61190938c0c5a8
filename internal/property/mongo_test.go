package property

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evcraddock/realty/internal/apperr"
)

// testMongoStore connects to REALTY_TEST_MONGO_URI and uses a throwaway
// database dropped on cleanup.
func testMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("REALTY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("REALTY_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	database := client.Database("realty_test_" + NewID())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.Drop(ctx); err != nil {
			t.Errorf("drop test database: %v", err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Errorf("disconnect: %v", err)
		}
	})

	store, err := NewMongoStore(ctx, database.Collection("properties"))
	if err != nil {
		t.Fatalf("new mongo store: %v", err)
	}
	return store
}

func TestMongoStoreCRUD(t *testing.T) {
	store := testMongoStore(t)
	ctx := context.Background()

	p := newTestProperty("Mongo Towers", time.Now().Truncate(time.Millisecond))
	p.Features = nil
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != p.ID || got.Title != "Mongo Towers" {
		t.Errorf("got %+v", got)
	}
	if got.Features == nil {
		t.Error("features should be normalized to an empty slice")
	}

	dup := newTestProperty("Dup", time.Now())
	dup.Slug = p.Slug
	if err := store.Insert(ctx, dup); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate slug = %v, want ErrConflict", err)
	}

	got.Title = "Mongo Towers II"
	if err := store.Replace(ctx, got); err != nil {
		t.Fatalf("replace: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Mongo Towers II" {
		t.Errorf("list = %+v", list)
	}

	labels, err := store.SuggestPrefix(ctx, "mongo", 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(labels) != 1 || labels[0] != "Mongo Towers II" {
		t.Errorf("labels = %v", labels)
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "xyz"); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("malformed delete = %v, want ErrInvalidID", err)
	}
}
