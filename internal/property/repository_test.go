package property

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/realty/internal/apperr"
	"github.com/evcraddock/realty/internal/db"
)

func TestInsertAndGetByID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	p := newTestProperty("Green Acres", time.Now())
	p.Configurations = []ConfigurationDetail{{BHKType: "2 BHK", CarpetArea: "900", Price: "5000000"}}
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Green Acres" {
		t.Errorf("title = %q, want %q", got.Title, "Green Acres")
	}
	if got.Address.City != "Pune" {
		t.Errorf("city = %q, want Pune", got.Address.City)
	}
	if len(got.Images) != 1 || got.Images[0] != "https://img.example.com/1.jpg" {
		t.Errorf("images = %v", got.Images)
	}
	if len(got.Configurations) != 1 || got.Configurations[0].BHKType != "2 BHK" {
		t.Errorf("configurations = %+v", got.Configurations)
	}
	if got.Features == nil {
		t.Error("features should be a non-nil empty slice")
	}
	if !got.Recommend {
		t.Error("recommend should round-trip")
	}
}

func TestGetBySlug(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	p := newTestProperty("Slugged", time.Now())
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("id = %q, want %q", got.ID, p.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, NewID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetBySlug(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetBySlug error = %v, want ErrNotFound", err)
	}
}

func TestInsertDuplicateSlug(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a := newTestProperty("A", time.Now())
	b := newTestProperty("B", time.Now())
	b.Slug = a.Slug

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if err := store.Insert(ctx, b); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("insert b error = %v, want ErrConflict", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"First", "Second", "Third"} {
		if err := store.Insert(ctx, newTestProperty(title, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Title != "Third" || list[2].Title != "First" {
		t.Errorf("order = %s, %s, %s", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestListEmpty(t *testing.T) {
	store := testStore(t)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %v, want empty non-nil", list)
	}
}

func TestListRecommended(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 6; i++ {
		p := newTestProperty("Rec", base.Add(time.Duration(i)*time.Minute))
		p.Recommend = i != 2
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, p.ID)
	}

	rec, err := store.ListRecommended(ctx, ids[5], 4)
	if err != nil {
		t.Fatalf("list recommended: %v", err)
	}
	if len(rec) != 4 {
		t.Fatalf("len = %d, want 4", len(rec))
	}
	want := []string{ids[4], ids[3], ids[1], ids[0]}
	for i, p := range rec {
		if p.ID != want[i] {
			t.Errorf("rec[%d] = %s, want %s", i, p.ID, want[i])
		}
		if p.ID == ids[5] {
			t.Error("excluded property returned")
		}
	}
}

func TestReplace(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	p := newTestProperty("Before", time.Now())
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	p.Title = "After"
	p.Features = []string{"Pool", "Gym"}
	p.UpdatedAt = p.UpdatedAt.Add(time.Minute)
	if err := store.Replace(ctx, p); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "After" {
		t.Errorf("title = %q, want After", got.Title)
	}
	if len(got.Features) != 2 {
		t.Errorf("features = %v", got.Features)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("updated_at should advance past created_at")
	}
}

func TestReplaceNotFound(t *testing.T) {
	store := testStore(t)

	p := newTestProperty("Ghost", time.Now())
	if err := store.Replace(context.Background(), p); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("replace error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	p := newTestProperty("Doomed", time.Now())
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSuggestPrefix(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	fixtures := []struct{ title, developer, location, city string }{
		{"Palm Grove", "Prestige", "Baner", "Pune"},
		{"Palm Springs", "Godrej", "Wakad", "Pune"},
		{"Ocean Pearl", "prestige", "Andheri", "Mumbai"},
		{"Sky Palace", "Lodha", "Powai", "Mumbai"},
	}
	for i, f := range fixtures {
		p := newTestProperty(f.title, time.Now().Add(time.Duration(i)*time.Second))
		p.Developer = f.developer
		p.Location = f.location
		p.Address.City = f.city
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"pa", []string{"Palm Springs", "Palm Grove"}},
		{"PRE", []string{"prestige"}},
		{"pu", []string{"Pune"}},
		{"po", []string{"Powai"}},
		{"alm", []string{}},
		{"100%", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := store.SuggestPrefix(ctx, tt.prefix, 10)
			if err != nil {
				t.Fatalf("suggest: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSuggestPrefixLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		p := newTestProperty("Tower "+string(rune('A'+i)), time.Now())
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.SuggestPrefix(ctx, "to", 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
}

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewSQLiteStore(database)
}

func newTestProperty(title string, created time.Time) *Property {
	id := NewID()
	return &Property{
		ID:            id,
		Slug:          "slug-" + id,
		Title:         title,
		Developer:     "Acme Builders",
		PropertyType:  "Residential",
		Location:      "Kothrud",
		Address:       Address{City: "Pune", State: "MH"},
		Price:         "5000000",
		Configuration: []string{"2 BHK"},
		Recommend:     true,
		Images:        []string{"https://img.example.com/1.jpg"},
		CreatedAt:     created.UTC(),
		UpdatedAt:     created.UTC(),
	}
}
