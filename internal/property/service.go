package property

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/evcraddock/realty/internal/apperr"
)

const (
	// RecommendedLimit caps the recommended list returned with a detail lookup.
	RecommendedLimit = 4
	// SuggestLimit caps server-side prefix suggestions.
	SuggestLimit = 10

	slugAttempts = 3
)

// CatalogCache holds a wholesale copy of the catalog.
type CatalogCache interface {
	Read(ctx context.Context, dst interface{}) bool
	Write(ctx context.Context, v interface{}) error
	Invalidate(ctx context.Context) error
}

// Service provides property business logic on top of a Store.
type Service struct {
	store Store
	cache CatalogCache
	now   func() time.Time

	// cacheMu guards cacheGen, which counts invalidations. A catalog read
	// from the store is cached only if no invalidation happened meanwhile.
	cacheMu  sync.Mutex
	cacheGen uint64
}

// Option configures a Service.
type Option func(*Service)

// WithCache keeps the full catalog in c and drops it on every mutation.
func WithCache(c CatalogCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a property service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Detail is a single property plus the recommendations shown beside it.
type Detail struct {
	Property    *Property   `json:"property"`
	Recommended []*Property `json:"recommended"`
}

// Create validates in, assigns identity and timestamps, and stores it.
func (s *Service) Create(ctx context.Context, in Input) (*Property, error) {
	in = in.trimmed()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := in.property()
	p.ID = NewID()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.insertWithSlug(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	slog.Info("property created", "id", p.ID, "slug", p.Slug)
	return p, nil
}

func (s *Service) insertWithSlug(ctx context.Context, p *Property) error {
	var err error
	for i := 0; i < slugAttempts; i++ {
		if p.Slug, err = GenerateSlug(p.Title); err != nil {
			return err
		}
		err = s.store.Insert(ctx, p)
		if !errors.Is(err, apperr.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("saving property: %w", err)
	}
	return nil
}

// Update applies u to the property with the given id. The slug is
// regenerated when the title changes.
func (s *Service) Update(ctx context.Context, id string, u Update) (*Property, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("property id %q: %w", id, apperr.ErrInvalidID)
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	oldTitle := p.Title
	u.apply(p)
	p.UpdatedAt = s.now().UTC()

	titleChanged := p.Title != oldTitle
	for i := 0; ; i++ {
		if titleChanged {
			if p.Slug, err = GenerateSlug(p.Title); err != nil {
				return nil, err
			}
		}
		err = s.store.Replace(ctx, p)
		if !titleChanged || !errors.Is(err, apperr.ErrConflict) || i == slugAttempts-1 {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("updating property: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("property updated", "id", p.ID, "slug", p.Slug, "slug_changed", titleChanged)
	return p, nil
}

// Delete removes the property with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return fmt.Errorf("property id %q: %w", id, apperr.ErrInvalidID)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	slog.Info("property deleted", "id", id)
	return nil
}

// Get returns a property by id.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("property id %q: %w", id, apperr.ErrInvalidID)
	}
	return s.store.GetByID(ctx, id)
}

// Detail looks a property up by id, or by slug when id is empty, and
// attaches up to RecommendedLimit recommended properties.
func (s *Service) Detail(ctx context.Context, id, slug string) (*Detail, error) {
	var (
		p   *Property
		err error
	)
	switch {
	case id != "":
		p, err = s.Get(ctx, id)
	case slug != "":
		p, err = s.store.GetBySlug(ctx, slug)
	default:
		return nil, apperr.Validationf("id or slug is required")
	}
	if err != nil {
		return nil, err
	}

	rec, err := s.store.ListRecommended(ctx, p.ID, RecommendedLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recommended: %w", err)
	}
	return &Detail{Property: p, Recommended: rec}, nil
}

// ListAll returns the whole catalog, newest first, served from the cache
// when one is configured and fresh.
func (s *Service) ListAll(ctx context.Context) ([]*Property, error) {
	if s.cache != nil {
		var cached []*Property
		if s.cache.Read(ctx, &cached) {
			for _, p := range cached {
				p.normalize()
			}
			return cached, nil
		}
	}

	gen := s.generation()
	props, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.storeCatalog(ctx, gen, props)
	}
	return props, nil
}

func (s *Service) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

// storeCatalog caches props unless a mutation invalidated the cache after
// generation gen was observed.
func (s *Service) storeCatalog(ctx context.Context, gen uint64, props []*Property) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.cacheGen {
		slog.Debug("catalog changed during load, not caching")
		return
	}
	if err := s.cache.Write(ctx, props); err != nil {
		slog.Warn("catalog cache write failed", "error", err)
	}
}

// Suggest returns distinct labels starting with q.
func (s *Service) Suggest(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validationf("query is required")
	}
	return s.store.SuggestPrefix(ctx, q, SuggestLimit)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cacheGen++
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("catalog cache invalidate failed", "error", err)
	}
}
