package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/realty/internal/apperr"
)

func TestParseFilterState(t *testing.T) {
	v := url.Values{
		"query":        {"  pune "},
		"bhk":          {"2 BHK,3 BHK", "4 BHK"},
		"propertyType": {"Villa, Plots"},
		"possession":   {"Ready to Move"},
		"developer":    {"Prestige"},
		"minPrice":     {"100"},
		"maxPrice":     {"5000.50"},
	}

	f, err := ParseFilterState(v)
	require.NoError(t, err)
	assert.Equal(t, FilterState{
		Search:        "pune",
		Configuration: []string{"2 BHK", "3 BHK", "4 BHK"},
		PropertyType:  []string{"Villa", "Plots"},
		Possession:    "Ready to Move",
		Developer:     "Prestige",
		Budget:        Budget{Min: "100", Max: "5000.50"},
	}, f)
}

func TestParseFilterStateEmpty(t *testing.T) {
	f, err := ParseFilterState(url.Values{})
	require.NoError(t, err)
	assert.False(t, f.Active())
}

func TestParseFilterStateBadPrice(t *testing.T) {
	_, err := ParseFilterState(url.Values{"minPrice": {"cheap"}})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestParseFilterStateReportsMinPriceFirst(t *testing.T) {
	for i := 0; i < 20; i++ {
		_, err := ParseFilterState(url.Values{"minPrice": {"low"}, "maxPrice": {"high"}})
		require.Error(t, err)
		assert.Equal(t, "minPrice must be a number", err.Error())
	}
}

func TestFilterStateValuesRoundTrip(t *testing.T) {
	in := FilterState{
		Search:        "lake",
		Configuration: []string{"2 BHK", "3 BHK"},
		PropertyType:  []string{"Residential"},
		Budget:        Budget{Max: "9000000"},
	}
	out, err := ParseFilterState(in.Values())
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Empty(t, in.Values().Get("developer"))
}
