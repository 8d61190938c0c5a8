// Package web provides the HTTP API for the property catalog.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/imagehost"
	"github.com/evcraddock/realty/internal/logging"
	"github.com/evcraddock/realty/internal/property"
)

// maxFormMemory bounds the in-memory part of a multipart request; the rest
// spills to temporary files.
const maxFormMemory = 32 << 20

// Server is the API HTTP server.
type Server struct {
	props      *property.Service
	images     *imagehost.Host
	admin      *auth.Admin
	uploadsDir string
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithUploadsDir serves the files in dir under /uploads/.
func WithUploadsDir(dir string) Option {
	return func(s *Server) { s.uploadsDir = dir }
}

// NewServer creates the API server.
func NewServer(props *property.Service, images *imagehost.Host, admin *auth.Admin, opts ...Option) *Server {
	s := &Server{props: props, images: images, admin: admin}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", s.handleHealth)
	if s.uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", s.apiListProperties)
		r.Get("/suggestions", s.apiSuggestions)
		r.Post("/admin/login", s.apiLogin)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdmin)
			r.Post("/properties", s.apiCreateProperty)
			r.Put("/properties/{id}", s.apiUpdateProperty)
			r.Delete("/properties/{id}", s.apiDeleteProperty)
			r.Post("/upload", s.apiUpload)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
