package catalog

import (
	"net/url"
	"strings"

	"github.com/evcraddock/realty/internal/apperr"
)

// Query parameter names used by the list endpoint.
const (
	ParamQuery        = "query"
	ParamBHK          = "bhk"
	ParamPropertyType = "propertyType"
	ParamPossession   = "possession"
	ParamDeveloper    = "developer"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
)

// ParseFilterState reads list endpoint query parameters. Multi-valued
// parameters accept repeats and comma-separated values. A price bound that
// is present but not a decimal is a validation error.
func ParseFilterState(v url.Values) (FilterState, error) {
	f := FilterState{
		Search:        strings.TrimSpace(v.Get(ParamQuery)),
		Configuration: splitValues(v[ParamBHK]),
		PropertyType:  splitValues(v[ParamPropertyType]),
		Possession:    strings.TrimSpace(v.Get(ParamPossession)),
		Developer:     strings.TrimSpace(v.Get(ParamDeveloper)),
		Budget: Budget{
			Min: strings.TrimSpace(v.Get(ParamMinPrice)),
			Max: strings.TrimSpace(v.Get(ParamMaxPrice)),
		},
	}

	bounds := []struct{ name, value string }{
		{ParamMinPrice, f.Budget.Min},
		{ParamMaxPrice, f.Budget.Max},
	}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		if _, ok := ParsePrice(b.value); !ok {
			return FilterState{}, apperr.Validationf("%s must be a number", b.name)
		}
	}
	return f, nil
}

// Values encodes f as list endpoint query parameters.
func (f FilterState) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s = strings.TrimSpace(s); s != "" {
			v.Set(k, s)
		}
	}
	set(ParamQuery, f.Search)
	set(ParamBHK, strings.Join(nonEmpty(f.Configuration), ","))
	set(ParamPropertyType, strings.Join(nonEmpty(f.PropertyType), ","))
	set(ParamPossession, f.Possession)
	set(ParamDeveloper, f.Developer)
	set(ParamMinPrice, f.Budget.Min)
	set(ParamMaxPrice, f.Budget.Max)
	return v
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
