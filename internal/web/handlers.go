package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evcraddock/realty/internal/auth"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// apiUpload stores the single file field with the image host.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer cleanupForm(r.MultipartForm)

	files := formFiles(r.MultipartForm, fieldFile)
	if len(files) == 0 {
		apiError(w, "file is required", http.StatusBadRequest)
		return
	}

	url, err := s.uploadOne(r, files[0])
	if err != nil {
		apiServiceError(w, r, "upload image", err)
		return
	}
	apiJSON(w, map[string]string{"url": url}, http.StatusOK)
}

// apiLogin exchanges the admin password for a bearer token.
func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		apiError(w, "password is required", http.StatusBadRequest)
		return
	}

	tok, err := s.admin.Login(auth.ClientIP(r), req.Password)
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		apiError(w, "too many failed attempts, try again later", http.StatusTooManyRequests)
	case errors.Is(err, auth.ErrInvalidCredentials):
		apiError(w, "invalid password", http.StatusUnauthorized)
	case err != nil:
		apiServiceError(w, r, "admin login", err)
	default:
		apiJSON(w, tok, http.StatusOK)
	}
}
