package catalog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/realty/internal/property"
)

func fixture() []property.Property {
	return []property.Property{
		{ID: "1", Title: "Palm Grove", Developer: "Prestige", Location: "Baner", Address: property.Address{City: "Pune", State: "Maharashtra"},
			PropertyType: "Residential", Configuration: []string{"2 BHK", "3 BHK"}, Price: "5000000", Possession: "Ready to Move"},
		{ID: "2", Title: "Sky Villa", Developer: "Lodha", Location: "Powai", Address: property.Address{City: "Mumbai", State: "Maharashtra"},
			PropertyType: "Villa", Configuration: []string{"4 BHK"}, Price: "25000000", Possession: "In 2 Years"},
		{ID: "3", Title: "Metro Hub", Developer: "Godrej", Location: "Whitefield", Address: property.Address{City: "Bengaluru", State: "Karnataka"},
			PropertyType: "Commercial", Price: "on request", Possession: "Ready to Move"},
		{ID: "4", Title: "Lake Shore", Developer: "Prestige", Location: "Hebbal", Address: property.Address{City: "Bengaluru", State: "Karnataka"},
			PropertyType: "Residential", Configurations: []property.ConfigurationDetail{{BHKType: "2  bhk"}}, Price: "6000000", Possession: "In 1 Year"},
		{ID: "5", Title: "Green Plots", Developer: "Sobha", Location: "Sarjapur", Address: property.Address{City: "Bengaluru", State: "Karnataka"},
			PropertyType: "Plots", Price: " 1500000 ", Possession: "Ready to Move"},
	}
}

func ids(props []property.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterEmptyStateIsIdentity(t *testing.T) {
	props := fixture()
	assert.Equal(t, props, Filter(props, FilterState{}))
	assert.Equal(t, props, Filter(props, FilterState{Search: "   ", Configuration: []string{}, PropertyType: []string{""}}))
}

func TestFilterDimensions(t *testing.T) {
	tests := []struct {
		name string
		f    FilterState
		want []string
	}{
		{"search title", FilterState{Search: "palm"}, []string{"1"}},
		{"search city", FilterState{Search: "BENGALURU"}, []string{"3", "4", "5"}},
		{"search state", FilterState{Search: "karnat"}, []string{"3", "4", "5"}},
		{"search developer", FilterState{Search: "lodha"}, []string{"2"}},
		{"search location", FilterState{Search: " whitefield "}, []string{"3"}},
		{"search no match", FilterState{Search: "zzz"}, []string{}},
		{"configuration or", FilterState{Configuration: []string{"3 BHK", "4 BHK"}}, []string{"1", "2"}},
		{"configuration detail", FilterState{Configuration: []string{"2 BHK"}}, []string{"1", "4"}},
		{"property type or", FilterState{PropertyType: []string{"villa", "Plots"}}, []string{"2", "5"}},
		{"possession exact", FilterState{Possession: "Ready to Move"}, []string{"1", "3", "5"}},
		{"possession case matters", FilterState{Possession: "ready to move"}, []string{}},
		{"developer exact", FilterState{Developer: "Prestige"}, []string{"1", "4"}},
		{"budget min", FilterState{Budget: Budget{Min: "5500000"}}, []string{"2", "4"}},
		{"budget max inclusive", FilterState{Budget: Budget{Max: "5000000"}}, []string{"1", "5"}},
		{"budget range", FilterState{Budget: Budget{Min: "1500000", Max: "6000000"}}, []string{"1", "4", "5"}},
		{"budget invalid bound ignored", FilterState{Budget: Budget{Min: "lots"}}, []string{"1", "2", "3", "4", "5"}},
		{"and across dimensions", FilterState{Developer: "Prestige", PropertyType: []string{"Residential"}, Search: "lake"}, []string{"4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture(), tt.f)))
		})
	}
}

func TestFilterNonNumericPrice(t *testing.T) {
	props := fixture()

	assert.Contains(t, ids(Filter(props, FilterState{})), "3")
	assert.NotContains(t, ids(Filter(props, FilterState{Budget: Budget{Min: "0"}})), "3")
	assert.NotContains(t, ids(Filter(props, FilterState{Budget: Budget{Max: "999999999999"}})), "3")
}

func TestFilterScenarioA(t *testing.T) {
	catalog := []property.Property{
		{ID: "a", Configuration: []string{"2 BHK"}, Price: "5000000"},
		{ID: "b", Configuration: []string{"2 BHK"}, Price: "6000000"},
		{ID: "c", Configuration: []string{"3 BHK"}, Price: "7000000"},
		{ID: "d", Configuration: []string{"1 BHK"}, Price: "3000000"},
		{ID: "e", Configuration: []string{"4 BHK"}, Price: "9000000"},
	}
	got := Filter(catalog, FilterState{Configuration: []string{"2 BHK"}, Budget: Budget{Min: "5500000"}})
	require.Len(t, got, 1)
	assert.Equal(t, "6000000", got[0].Price)
}

func TestFilterSubsetProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := []string{"Residential", "Villa", "Plots", "Commercial"}
	configs := []string{"1 BHK", "2 BHK", "3 BHK"}
	prices := []string{"100", "2500", "abc", "", "99999"}

	var catalog []property.Property
	for i := 0; i < 60; i++ {
		catalog = append(catalog, property.Property{
			ID:            fmt.Sprint(i),
			Title:         fmt.Sprintf("Listing %d", i),
			PropertyType:  types[rng.Intn(len(types))],
			Configuration: []string{configs[rng.Intn(len(configs))]},
			Price:         prices[rng.Intn(len(prices))],
		})
	}

	states := []FilterState{
		{PropertyType: []string{"Villa", "Plots"}},
		{Configuration: []string{"2 BHK"}, Budget: Budget{Min: "200"}},
		{Search: "listing 1", Budget: Budget{Max: "2500"}},
	}
	for _, f := range states {
		got := Filter(catalog, f)
		pos := 0
		for _, g := range got {
			assert.True(t, Matches(&g, f), "result %s violates %+v", g.ID, f)
			for pos < len(catalog) && catalog[pos].ID != g.ID {
				pos++
			}
			require.Less(t, pos, len(catalog), "result %s not in input order", g.ID)
		}
	}
}

func TestFilterStateActiveAndEqual(t *testing.T) {
	assert.False(t, FilterState{}.Active())
	assert.False(t, FilterState{Search: " ", Budget: Budget{Min: "x"}}.Active())
	assert.True(t, FilterState{Budget: Budget{Max: "10"}}.Active())
	assert.True(t, FilterState{Configuration: []string{"2 BHK"}}.Active())

	a := FilterState{Search: "Pune", Configuration: []string{"2 BHK", "3 BHK"}, Budget: Budget{Min: "100"}}
	b := FilterState{Search: "pune ", Configuration: []string{"3 bhk", "2  BHK"}, Budget: Budget{Min: "100.00"}}
	assert.True(t, a.Equal(b))

	c := b
	c.Developer = "Lodha"
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(FilterState{Search: "Pune"}))
}

func TestParsePrice(t *testing.T) {
	for _, s := range []string{"5000000", " 42.5 ", "-1", "0"} {
		_, ok := ParsePrice(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "  ", "50 lakh", "1,000", "₹500"} {
		_, ok := ParsePrice(s)
		assert.False(t, ok, s)
	}
}
