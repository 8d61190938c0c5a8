// Package catalog filters, pages and suggests over an in-memory copy of
// the property catalog.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/realty/internal/property"
)

// Budget holds inclusive price bounds as decimal strings. Empty or
// unparseable bounds are inactive.
type Budget struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// FilterState is the full set of user-selected constraints.
type FilterState struct {
	Search        string   `json:"search,omitempty"`
	Configuration []string `json:"configuration,omitempty"`
	PropertyType  []string `json:"propertyType,omitempty"`
	Possession    string   `json:"possession,omitempty"`
	Developer     string   `json:"developer,omitempty"`
	Budget        Budget   `json:"budget"`
}

// Active reports whether any dimension constrains the result.
func (f FilterState) Active() bool {
	min, max := f.Budget.bounds()
	return strings.TrimSpace(f.Search) != "" ||
		len(nonEmpty(f.Configuration)) > 0 ||
		len(nonEmpty(f.PropertyType)) > 0 ||
		strings.TrimSpace(f.Possession) != "" ||
		strings.TrimSpace(f.Developer) != "" ||
		min != nil || max != nil
}

// Equal reports whether f and g select the same properties.
func (f FilterState) Equal(g FilterState) bool {
	return strings.EqualFold(strings.TrimSpace(f.Search), strings.TrimSpace(g.Search)) &&
		sameLabels(f.Configuration, g.Configuration) &&
		sameLabels(f.PropertyType, g.PropertyType) &&
		strings.TrimSpace(f.Possession) == strings.TrimSpace(g.Possession) &&
		strings.TrimSpace(f.Developer) == strings.TrimSpace(g.Developer) &&
		sameBound(f.Budget.Min, g.Budget.Min) &&
		sameBound(f.Budget.Max, g.Budget.Max)
}

// Filter returns the properties matching every active dimension of f, in
// input order. A zero FilterState returns props unchanged.
func Filter(props []property.Property, f FilterState) []property.Property {
	m := newMatcher(f)
	out := make([]property.Property, 0, len(props))
	for _, p := range props {
		if m.match(&p) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single property satisfies f.
func Matches(p *property.Property, f FilterState) bool {
	return newMatcher(f).match(p)
}

type predicate func(p *property.Property) bool

type matcher struct {
	preds []predicate
}

func newMatcher(f FilterState) *matcher {
	m := &matcher{}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		m.preds = append(m.preds, func(p *property.Property) bool {
			for _, field := range []string{p.Title, p.Location, p.Address.City, p.Address.State, p.Developer} {
				if strings.Contains(strings.ToLower(field), q) {
					return true
				}
			}
			return false
		})
	}

	if want := labelSet(f.Configuration); len(want) > 0 {
		m.preds = append(m.preds, func(p *property.Property) bool {
			for _, c := range p.Configuration {
				if want[normalizeLabel(c)] {
					return true
				}
			}
			for _, c := range p.Configurations {
				if want[normalizeLabel(c.BHKType)] {
					return true
				}
			}
			return false
		})
	}

	if want := labelSet(f.PropertyType); len(want) > 0 {
		m.preds = append(m.preds, func(p *property.Property) bool {
			return want[normalizeLabel(p.PropertyType)]
		})
	}

	if v := strings.TrimSpace(f.Possession); v != "" {
		m.preds = append(m.preds, func(p *property.Property) bool { return p.Possession == v })
	}

	if v := strings.TrimSpace(f.Developer); v != "" {
		m.preds = append(m.preds, func(p *property.Property) bool { return p.Developer == v })
	}

	if min, max := f.Budget.bounds(); min != nil || max != nil {
		m.preds = append(m.preds, func(p *property.Property) bool {
			price, ok := ParsePrice(p.Price)
			if !ok {
				return false
			}
			if min != nil && price.LessThan(*min) {
				return false
			}
			if max != nil && price.GreaterThan(*max) {
				return false
			}
			return true
		})
	}

	return m
}

func (m *matcher) match(p *property.Property) bool {
	for _, pred := range m.preds {
		if !pred(p) {
			return false
		}
	}
	return true
}

// ParsePrice parses a stored price string. Surrounding whitespace is
// ignored; anything else that is not a plain decimal fails.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func (b Budget) bounds() (min, max *decimal.Decimal) {
	if d, ok := ParsePrice(b.Min); ok {
		min = &d
	}
	if d, ok := ParsePrice(b.Max); ok {
		max = &d
	}
	return min, max
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		if n := normalizeLabel(l); n != "" {
			set[n] = true
		}
	}
	return set
}

func nonEmpty(labels []string) []string {
	var out []string
	for _, l := range labels {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func sameLabels(a, b []string) bool {
	sa, sb := labelSet(a), labelSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

func sameBound(a, b string) bool {
	da, okA := ParsePrice(a)
	db, okB := ParsePrice(b)
	if okA != okB {
		return false
	}
	return !okA || da.Equal(db)
}
