// Package property provides the property domain model and data access.
package property

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type is the kind of property being listed.
type Type string

const (
	TypeResidential Type = "Residential"
	TypeCommercial  Type = "Commercial"
	TypeVilla       Type = "Villa"
	TypePlots       Type = "Plots"
	TypeLand        Type = "Land"
)

// Types lists every known property type in display order.
var Types = []Type{TypeResidential, TypeCommercial, TypeVilla, TypePlots, TypeLand}

// ValidType returns true if s names a known property type (case-insensitive).
func ValidType(s string) bool {
	for _, t := range Types {
		if strings.EqualFold(string(t), s) {
			return true
		}
	}
	return false
}

// Possession values used by the listing pages. Possession is stored as free
// text, these are only the values the admin UI offers.
const (
	PossessionReady      = "Ready to Move"
	PossessionOneYear    = "In 1 Year"
	PossessionTwoYears   = "In 2 Years"
	PossessionThreeYears = "In 3 Years"
)

// Address is the city/state part of a listing's location.
type Address struct {
	City  string `json:"city" bson:"city"`
	State string `json:"state" bson:"state"`
}

// ConfigurationDetail describes one unit layout offered by a property.
type ConfigurationDetail struct {
	BHKType         string `json:"bhkType" bson:"bhkType"`
	CarpetArea      string `json:"carpetArea" bson:"carpetArea"`
	CarpetAreaUnit  string `json:"carpetAreaUnit" bson:"carpetAreaUnit"`
	BuiltUpArea     string `json:"builtUpArea" bson:"builtUpArea"`
	BuiltUpAreaUnit string `json:"builtUpAreaUnit" bson:"builtUpAreaUnit"`
	Price           string `json:"price" bson:"price"`
}

// Property represents a listing in the catalog.
type Property struct {
	ID             string                `json:"id"`
	Slug           string                `json:"slug"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Overview       string                `json:"overview"`
	Developer      string                `json:"developer"`
	PropertyType   string                `json:"propertyType"`
	Location       string                `json:"location"`
	Address        Address               `json:"address"`
	Price          string                `json:"price"`
	Area           string                `json:"area"`
	AreaUnit       string                `json:"areaUnit"`
	Configuration  []string              `json:"configuration"`
	Configurations []ConfigurationDetail `json:"configurations"`
	Recommend      bool                  `json:"recommend"`
	Featured       bool                  `json:"featured"`
	NewProperty    bool                  `json:"newProperty"`
	Resale         bool                  `json:"resale"`
	Possession     string                `json:"possession"`
	PossessionDate string                `json:"possessionDate"`
	Images         []string              `json:"images"`
	Features       []string              `json:"features"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// normalize replaces nil slices with empty ones so that JSON consumers always
// see arrays.
func (p *Property) normalize() {
	if p.Configuration == nil {
		p.Configuration = []string{}
	}
	if p.Configurations == nil {
		p.Configurations = []ConfigurationDetail{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
}

// NewID returns a fresh property identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed property identifier.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
