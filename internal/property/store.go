package property

import (
	"context"
	"strings"
)

// Store is the persistence boundary for properties. Implementations must
// return apperr.ErrNotFound for unknown ids/slugs, apperr.ErrConflict for
// duplicate slugs, and normalized properties on every read.
type Store interface {
	Insert(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	GetBySlug(ctx context.Context, slug string) (*Property, error)
	// List returns every property, newest first.
	List(ctx context.Context) ([]*Property, error)
	// ListRecommended returns up to limit properties with the recommend
	// flag set, newest first, skipping excludeID.
	ListRecommended(ctx context.Context, excludeID string, limit int) ([]*Property, error)
	Replace(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
	// SuggestPrefix returns up to limit distinct labels (title, developer,
	// location, city) that start with prefix, compared case-insensitively.
	SuggestPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

// suggestFields returns the labels of p a suggestion may be drawn from.
func suggestFields(p *Property) []string {
	return []string{p.Title, p.Developer, p.Location, p.Address.City}
}

// prefixCollector gathers distinct labels starting with a prefix.
type prefixCollector struct {
	prefix string
	limit  int
	seen   map[string]bool
	out    []string
}

func newPrefixCollector(prefix string, limit int) *prefixCollector {
	return &prefixCollector{
		prefix: strings.ToLower(strings.TrimSpace(prefix)),
		limit:  limit,
		seen:   make(map[string]bool),
		out:    []string{},
	}
}

// add considers each label and reports whether the collector is full.
func (c *prefixCollector) add(labels ...string) bool {
	for _, l := range labels {
		if c.full() {
			return true
		}
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if !strings.HasPrefix(key, c.prefix) || c.seen[key] {
			continue
		}
		c.seen[key] = true
		c.out = append(c.out, l)
	}
	return c.full()
}

func (c *prefixCollector) full() bool {
	return c.limit > 0 && len(c.out) >= c.limit
}
