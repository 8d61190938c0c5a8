package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
)

func writeJSON(t *testing.T, w http.ResponseWriter, code int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func TestListProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/properties" {
			t.Errorf("path = %q, want /api/properties", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		writeJSON(t, w, http.StatusOK, []property.Property{{ID: "a", Title: "Sunrise"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	props, err := c.ListProperties(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(props) != 1 || props[0].Title != "Sunrise" {
		t.Errorf("props = %+v", props)
	}
}

func TestSearchSendsFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("bhk") != "2 BHK" || q.Get("minPrice") != "100" || q.Get("query") != "lake" {
			t.Errorf("query = %v", q)
		}
		writeJSON(t, w, http.StatusOK, []property.Property{})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	f := catalog.FilterState{Search: "lake", Configuration: []string{"2 BHK"}, Budget: catalog.Budget{Min: "100"}}
	if _, err := c.Search(context.Background(), f); err != nil {
		t.Fatalf("search: %v", err)
	}
}

func TestDetailByIDOrSlug(t *testing.T) {
	id := property.NewID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("id") == id:
		case q.Get("slug") == "sunrise-1234abcd":
		default:
			t.Errorf("query = %v", q)
		}
		writeJSON(t, w, http.StatusOK, property.Detail{Property: &property.Property{ID: id}})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	for _, ref := range []string{id, "sunrise-1234abcd"} {
		d, err := c.Detail(context.Background(), ref)
		if err != nil {
			t.Fatalf("detail %s: %v", ref, err)
		}
		if d.Property.ID != id {
			t.Errorf("id = %q", d.Property.ID)
		}
	}
}

func TestAPIErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "property not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.Delete(context.Background(), property.NewID())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "property not found" {
		t.Errorf("error = %q", err.Error())
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("IsStatus(404) = false for %v", err)
	}
}

func TestAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Suggestions(context.Background(), "su")
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("error = %v", err)
	}
}

func TestSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "sun" {
			t.Errorf("query = %q", r.URL.Query().Get("query"))
		}
		writeJSON(t, w, http.StatusOK, map[string][]string{"suggestions": {"Sunrise", "Sun Builders"}})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "").Suggestions(context.Background(), "sun")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v", got)
	}
}

func TestCreateSendsMultipart(t *testing.T) {
	img := filepath.Join(t.TempDir(), "front.jpg")
	if err := os.WriteFile(img, []byte("fake image"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/properties" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Error("expected Bearer tok")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got := r.FormValue("title"); got != "Sunrise" {
			t.Errorf("title = %q", got)
		}
		if got := r.FormValue("configuration"); got != `["2 BHK"]` {
			t.Errorf("configuration = %q", got)
		}
		if _, ok := r.MultipartForm.Value["existingImages"]; ok {
			t.Error("create should not send existingImages")
		}
		files := r.MultipartForm.File["images"]
		if len(files) != 1 || files[0].Filename != "front.jpg" {
			t.Errorf("files = %v", files)
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"msg": "Property added successfully"})
	}))
	defer srv.Close()

	msg, err := New(srv.URL, "tok").Create(context.Background(), PropertyForm{
		Fields:        map[string]string{"title": "Sunrise"},
		Configuration: []string{"2 BHK"},
		Images:        []string{img},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if msg != "Property added successfully" {
		t.Errorf("msg = %q", msg)
	}
}

func TestUpdateSendsKeptImages(t *testing.T) {
	id := property.NewID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/properties/"+id {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got := r.FormValue("existingImages"); got != "[]" {
			t.Errorf("existingImages = %q", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"msg":             "ok",
			"updatedProperty": property.Property{ID: id, Title: "New"},
		})
	}))
	defer srv.Close()

	p, err := New(srv.URL, "tok").Update(context.Background(), id, PropertyForm{KeepImages: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Title != "New" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["password"] != "pw" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "invalid password"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"token": "jwt", "expiresAt": "2026-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	tok, err := c.Login(context.Background(), "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.Token != "jwt" || tok.ExpiresAt.Year() != 2026 {
		t.Errorf("token = %+v", tok)
	}

	if _, err := c.Login(context.Background(), "bad"); !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("bad password: err = %v", err)
	}
}

func TestUpload(t *testing.T) {
	img := filepath.Join(t.TempDir(), "x.png")
	if err := os.WriteFile(img, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, fh, err := r.FormFile("file"); err != nil || fh.Filename != "x.png" {
			t.Errorf("form file: %v", err)
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"url": "http://host/x.png"})
	}))
	defer srv.Close()

	url, err := New(srv.URL, "tok").Upload(context.Background(), img)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://host/x.png" {
		t.Errorf("url = %q", url)
	}

	if _, err := New(srv.URL, "tok").Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	if err := New(srv.URL+"/", "").Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}

var (
	_ catalog.Lister          = (*Client)(nil)
	_ catalog.RemoteSuggester = (*Client)(nil)
)
