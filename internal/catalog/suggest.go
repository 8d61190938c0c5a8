package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/evcraddock/realty/internal/property"
)

const (
	// DefaultSuggestLimit caps the number of suggestions returned.
	DefaultSuggestLimit = 10
	// MinSuggestLen is the shortest query that produces suggestions.
	MinSuggestLen = 2
)

// Suggest collects distinct labels from title, developer, location and
// city that contain q (case-insensitive). Exact matches come first, then
// prefix matches, then the rest, each class in encounter order.
func Suggest(props []property.Property, q string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []string{}
	}

	var exact, prefix, other []string
	seen := make(map[string]bool)
	for _, p := range props {
		for _, label := range []string{p.Title, p.Developer, p.Location, p.Address.City} {
			label = strings.TrimSpace(label)
			key := strings.ToLower(label)
			if label == "" || seen[key] || !strings.Contains(key, q) {
				continue
			}
			seen[key] = true
			switch {
			case key == q:
				exact = append(exact, label)
			case strings.HasPrefix(key, q):
				prefix = append(prefix, label)
			default:
				other = append(other, label)
			}
		}
	}

	out := make([]string, 0, limit)
	for _, class := range [][]string{exact, prefix, other} {
		for _, s := range class {
			if len(out) == limit {
				return out
			}
			out = append(out, s)
		}
	}
	return out
}

// dedupe removes case-insensitive duplicates, keeping the first spelling.
func dedupe(labels []string, limit int) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// LocalCatalog returns the locally held catalog, if any, without
// touching the network.
type LocalCatalog interface {
	Cached(ctx context.Context) ([]property.Property, bool)
}

// RemoteSuggester asks the server for prefix suggestions.
type RemoteSuggester interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
}

// Suggester serves suggestions from the local catalog when present and
// falls back to the server otherwise.
type Suggester struct {
	local  LocalCatalog
	remote RemoteSuggester
	limit  int
}

// NewSuggester creates a Suggester. Either source may be nil.
func NewSuggester(local LocalCatalog, remote RemoteSuggester) *Suggester {
	return &Suggester{local: local, remote: remote, limit: DefaultSuggestLimit}
}

// Suggest never fails: queries shorter than MinSuggestLen and remote
// errors both yield an empty list.
func (s *Suggester) Suggest(ctx context.Context, q string) []string {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinSuggestLen {
		return []string{}
	}

	if s.local != nil {
		if props, ok := s.local.Cached(ctx); ok {
			return Suggest(props, q, s.limit)
		}
	}
	if s.remote == nil {
		return []string{}
	}

	labels, err := s.remote.Suggestions(ctx, q)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("suggestion request failed", "query", q, "error", err)
		}
		return []string{}
	}
	return dedupe(labels, s.limit)
}
