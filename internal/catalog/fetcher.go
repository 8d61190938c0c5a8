package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/evcraddock/realty/internal/property"
)

// Lister loads the full catalog from the server.
type Lister interface {
	ListProperties(ctx context.Context) ([]property.Property, error)
}

// Cache is the subset of cache.TTLCache the fetcher needs.
type Cache interface {
	Read(ctx context.Context, dst interface{}) bool
	Write(ctx context.Context, v interface{}) error
	Invalidate(ctx context.Context) error
}

// Fetcher returns the catalog from the cache when fresh and from the
// server otherwise. Concurrent misses share one request.
type Fetcher struct {
	src   Lister
	cache Cache
	group singleflight.Group
}

// NewFetcher creates a Fetcher. cache may be nil.
func NewFetcher(src Lister, cache Cache) *Fetcher {
	return &Fetcher{src: src, cache: cache}
}

// Catalog returns the cached catalog or fetches and caches a fresh one.
func (f *Fetcher) Catalog(ctx context.Context) ([]property.Property, error) {
	if props, ok := f.Cached(ctx); ok {
		return props, nil
	}
	return f.Refresh(ctx)
}

// Cached returns the cached catalog without any network access.
func (f *Fetcher) Cached(ctx context.Context) ([]property.Property, bool) {
	if f.cache == nil {
		return nil, false
	}
	var props []property.Property
	if !f.cache.Read(ctx, &props) {
		return nil, false
	}
	return props, true
}

// Refresh fetches the catalog from the server and rewrites the cache.
// A caller whose ctx ends stops waiting without cancelling the shared
// request for the others.
func (f *Fetcher) Refresh(ctx context.Context) ([]property.Property, error) {
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan("catalog", func() (interface{}, error) {
		props, err := f.src.ListProperties(shared)
		if err != nil {
			return nil, err
		}
		if props == nil {
			props = []property.Property{}
		}
		if f.cache != nil {
			if err := f.cache.Write(shared, props); err != nil {
				slog.Debug("catalog cache write failed", "error", err)
			}
		}
		return props, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching catalog: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetching catalog: %w", res.Err)
		}
		return res.Val.([]property.Property), nil
	}
}

// Invalidate drops the cached catalog.
func (f *Fetcher) Invalidate(ctx context.Context) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Invalidate(ctx)
}
