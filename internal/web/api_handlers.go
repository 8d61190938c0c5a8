package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evcraddock/realty/internal/apperr"
	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiServiceError maps a service error onto a status code. Unexpected
// errors are logged and reported generically.
func apiServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case apperr.IsValidation(err):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrInvalidID):
		apiError(w, "invalid property ID", http.StatusBadRequest)
	case errors.Is(err, apperr.ErrNotFound):
		apiError(w, "property not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrConflict):
		apiError(w, "property already exists", http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), op+" failed", "error", err)
		apiError(w, "internal server error", http.StatusInternalServerError)
	}
}

// apiListProperties returns one property with its recommendations when id
// or slug is given, otherwise the filtered catalog.
func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id, slug := q.Get("id"), q.Get("slug"); id != "" || slug != "" {
		d, err := s.props.Detail(r.Context(), id, slug)
		if err != nil {
			apiServiceError(w, r, "property detail", err)
			return
		}
		apiJSON(w, d, http.StatusOK)
		return
	}

	f, err := catalog.ParseFilterState(q)
	if err != nil {
		apiServiceError(w, r, "parse filter", err)
		return
	}

	props, err := s.props.ListAll(r.Context())
	if err != nil {
		apiServiceError(w, r, "list properties", err)
		return
	}

	all := make([]property.Property, len(props))
	for i, p := range props {
		all[i] = *p
	}
	apiJSON(w, catalog.Filter(all, f), http.StatusOK)
}

// apiSuggestions returns prefix suggestions for the query parameter.
func (s *Server) apiSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.props.Suggest(r.Context(), r.URL.Query().Get(catalog.ParamQuery))
	if err != nil {
		apiServiceError(w, r, "suggestions", err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	apiJSON(w, map[string][]string{"suggestions": suggestions}, http.StatusOK)
}

// apiCreateProperty creates a property from a multipart form. Every file in
// the images field is uploaded before the property is saved.
func (s *Server) apiCreateProperty(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r.MultipartForm)

	in, err := newPropertyForm(r.MultipartForm).input()
	if err != nil {
		apiServiceError(w, r, "parse property", err)
		return
	}

	urls, err := s.uploadAll(r, formFiles(r.MultipartForm, fieldImages))
	if err != nil {
		apiServiceError(w, r, "upload images", err)
		return
	}
	if len(urls) == 0 {
		apiError(w, "at least one image is required", http.StatusBadRequest)
		return
	}
	in.Images = urls

	if _, err := s.props.Create(r.Context(), in); err != nil {
		apiServiceError(w, r, "create property", err)
		return
	}
	apiJSON(w, map[string]string{"msg": "Property added successfully"}, http.StatusOK)
}

// apiUpdateProperty applies the fields present in a multipart form. When
// existingImages or new images are sent, the stored list becomes the kept
// images followed by the new uploads.
func (s *Server) apiUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !property.ValidID(id) {
		apiError(w, "invalid property ID", http.StatusBadRequest)
		return
	}
	if _, err := s.props.Get(r.Context(), id); err != nil {
		apiServiceError(w, r, "load property", err)
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r.MultipartForm)

	form := newPropertyForm(r.MultipartForm)
	u, err := form.update()
	if err != nil {
		apiServiceError(w, r, "parse property", err)
		return
	}

	kept, err := form.list(fieldExistingImages)
	if err != nil {
		apiServiceError(w, r, "parse property", err)
		return
	}
	files := formFiles(r.MultipartForm, fieldImages)
	if kept != nil || len(files) > 0 {
		urls, err := s.uploadAll(r, files)
		if err != nil {
			apiServiceError(w, r, "upload images", err)
			return
		}
		u.Images = append(append([]string{}, kept...), urls...)
	}

	p, err := s.props.Update(r.Context(), id, u)
	if err != nil {
		apiServiceError(w, r, "update property", err)
		return
	}
	apiJSON(w, map[string]interface{}{
		"msg":             "Property updated successfully",
		"updatedProperty": p,
	}, http.StatusOK)
}

// apiDeleteProperty removes a property.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.props.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		apiServiceError(w, r, "delete property", err)
		return
	}
	apiJSON(w, map[string]string{"msg": "Property deleted successfully"}, http.StatusOK)
}

func (s *Server) uploadAll(r *http.Request, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.uploadOne(r, fh)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Server) uploadOne(r *http.Request, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("closing upload", "file", fh.Filename, "error", cerr)
		}
	}()
	return s.images.Put(r.Context(), f)
}

func formFiles(f *multipart.Form, key string) []*multipart.FileHeader {
	if f == nil {
		return nil
	}
	return f.File[key]
}

func cleanupForm(f *multipart.Form) {
	if f == nil {
		return
	}
	if err := f.RemoveAll(); err != nil {
		slog.Warn("removing multipart temp files", "error", err)
	}
}
