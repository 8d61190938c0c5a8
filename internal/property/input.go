package property

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/evcraddock/realty/internal/apperr"
)

// Input carries every mutable field of a property for create.
type Input struct {
	Title          string
	Description    string
	Overview       string
	Developer      string
	PropertyType   string
	Location       string
	Address        Address
	Price          string
	Area           string
	AreaUnit       string
	Configuration  []string
	Configurations []ConfigurationDetail
	Recommend      bool
	Featured       bool
	NewProperty    bool
	Resale         bool
	Possession     string
	PossessionDate string
	Features       []string
	Images         []string
}

// Validate checks the input before it is written.
func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required"), validation.Length(1, 200)),
		validation.Field(&in.PropertyType, validation.By(propertyTypeRule)),
		validation.Field(&in.Price, validation.By(decimalRule)),
		validation.Field(&in.Area, validation.By(decimalRule)),
		validation.Field(&in.Images, validation.Required.Error("at least one image is required")),
	)
	return apperr.Validation(err)
}

func (in Input) trimmed() Input {
	for _, f := range []*string{
		&in.Title, &in.Description, &in.Overview, &in.Developer, &in.PropertyType, &in.Location,
		&in.Address.City, &in.Address.State, &in.Price, &in.Area, &in.AreaUnit,
		&in.Possession, &in.PossessionDate,
	} {
		*f = strings.TrimSpace(*f)
	}
	return in
}

func (in Input) property() *Property {
	p := &Property{
		Title:          in.Title,
		Description:    in.Description,
		Overview:       in.Overview,
		Developer:      in.Developer,
		PropertyType:   in.PropertyType,
		Location:       in.Location,
		Address:        in.Address,
		Price:          in.Price,
		Area:           in.Area,
		AreaUnit:       in.AreaUnit,
		Configuration:  in.Configuration,
		Configurations: in.Configurations,
		Recommend:      in.Recommend,
		Featured:       in.Featured,
		NewProperty:    in.NewProperty,
		Resale:         in.Resale,
		Possession:     in.Possession,
		PossessionDate: in.PossessionDate,
		Images:         in.Images,
		Features:       in.Features,
	}
	p.normalize()
	return p
}

// Update carries the fields to change on an existing property. Nil fields
// are left untouched. Images, when set, replace the stored list.
type Update struct {
	Title          *string
	Description    *string
	Overview       *string
	Developer      *string
	PropertyType   *string
	Location       *string
	City           *string
	State          *string
	Price          *string
	Area           *string
	AreaUnit       *string
	Configuration  []string
	Configurations []ConfigurationDetail
	Recommend      *bool
	Featured       *bool
	NewProperty    *bool
	Resale         *bool
	Possession     *string
	PossessionDate *string
	Features       []string
	Images         []string
}

// Validate checks only the fields that are present.
func (u Update) Validate() error {
	var errs validation.Errors = map[string]error{}
	if u.Title != nil {
		if err := validation.Validate(strings.TrimSpace(*u.Title), validation.Required.Error("title is required"), validation.Length(1, 200)); err != nil {
			errs["title"] = err
		}
	}
	if u.PropertyType != nil {
		if err := propertyTypeRule(*u.PropertyType); err != nil {
			errs["propertyType"] = err
		}
	}
	if u.Price != nil {
		if err := decimalRule(*u.Price); err != nil {
			errs["price"] = err
		}
	}
	if u.Area != nil {
		if err := decimalRule(*u.Area); err != nil {
			errs["area"] = err
		}
	}
	if u.Images != nil && len(u.Images) == 0 {
		errs["images"] = errors.New("at least one image is required")
	}
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation(errs)
}

// apply copies the present fields of u onto p.
func (u Update) apply(p *Property) {
	setString(&p.Title, u.Title)
	setString(&p.Description, u.Description)
	setString(&p.Overview, u.Overview)
	setString(&p.Developer, u.Developer)
	setString(&p.PropertyType, u.PropertyType)
	setString(&p.Location, u.Location)
	setString(&p.Address.City, u.City)
	setString(&p.Address.State, u.State)
	setString(&p.Price, u.Price)
	setString(&p.Area, u.Area)
	setString(&p.AreaUnit, u.AreaUnit)
	setString(&p.Possession, u.Possession)
	setString(&p.PossessionDate, u.PossessionDate)
	setBool(&p.Recommend, u.Recommend)
	setBool(&p.Featured, u.Featured)
	setBool(&p.NewProperty, u.NewProperty)
	setBool(&p.Resale, u.Resale)
	if u.Configuration != nil {
		p.Configuration = u.Configuration
	}
	if u.Configurations != nil {
		p.Configurations = u.Configurations
	}
	if u.Features != nil {
		p.Features = u.Features
	}
	if u.Images != nil {
		p.Images = u.Images
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func propertyTypeRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" || ValidType(s) {
		return nil
	}
	return errors.New("must be one of Residential, Commercial, Villa, Plots, Land")
}

func decimalRule(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("must be a decimal number")
	}
	return nil
}
