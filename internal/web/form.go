package web

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/evcraddock/realty/internal/apperr"
	"github.com/evcraddock/realty/internal/property"
)

// Multipart field names.
const (
	fieldImages         = "images"
	fieldExistingImages = "existingImages"
	fieldFile           = "file"
)

// propertyForm reads property fields out of a parsed multipart form.
type propertyForm struct {
	values map[string][]string
}

func newPropertyForm(f *multipart.Form) propertyForm {
	if f == nil {
		return propertyForm{values: map[string][]string{}}
	}
	return propertyForm{values: f.Value}
}

func (f propertyForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f propertyForm) get(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (f propertyForm) optString(key string) *string {
	if !f.has(key) {
		return nil
	}
	s := f.get(key)
	return &s
}

func (f propertyForm) optBool(key string) (*bool, error) {
	if !f.has(key) {
		return nil, nil
	}
	s := f.get(key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.Validationf("%s must be true or false", key)
	}
	return &b, nil
}

func (f propertyForm) bool(key string) (bool, error) {
	b, err := f.optBool(key)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

// list reads a field sent either repeated or as a single JSON array string.
// It returns nil when the field is absent.
func (f propertyForm) list(key string) ([]string, error) {
	raw, ok := f.values[key]
	if !ok {
		return nil, nil
	}
	out := []string{}
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var items []string
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				return nil, apperr.Validationf("%s must be a JSON array of strings", key)
			}
			for _, item := range items {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			continue
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// details reads the configurations JSON array. It returns nil when absent.
func (f propertyForm) details() ([]property.ConfigurationDetail, error) {
	if !f.has("configurations") {
		return nil, nil
	}
	raw := f.get("configurations")
	if raw == "" {
		return []property.ConfigurationDetail{}, nil
	}
	var out []property.ConfigurationDetail
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, apperr.Validationf("configurations must be a JSON array")
	}
	if out == nil {
		out = []property.ConfigurationDetail{}
	}
	return out, nil
}

// input builds a create request. Images are filled in by the caller.
func (f propertyForm) input() (property.Input, error) {
	in := property.Input{
		Title:          f.get("title"),
		Description:    f.get("description"),
		Overview:       f.get("overview"),
		Developer:      f.get("developer"),
		PropertyType:   f.get("propertyType"),
		Location:       f.get("location"),
		Address:        property.Address{City: f.get("city"), State: f.get("state")},
		Price:          f.get("price"),
		Area:           f.get("area"),
		AreaUnit:       f.get("areaUnit"),
		Possession:     f.get("possession"),
		PossessionDate: f.get("possessionDate"),
	}

	var err error
	if in.Configuration, err = f.list("configuration"); err != nil {
		return in, err
	}
	if in.Features, err = f.list("features"); err != nil {
		return in, err
	}
	if in.Configurations, err = f.details(); err != nil {
		return in, err
	}
	for key, dst := range map[string]*bool{
		"recommend":   &in.Recommend,
		"featured":    &in.Featured,
		"newProperty": &in.NewProperty,
		"resale":      &in.Resale,
	} {
		if *dst, err = f.bool(key); err != nil {
			return in, err
		}
	}
	return in, nil
}

// update builds a partial update from the fields present in the form.
// Images are filled in by the caller.
func (f propertyForm) update() (property.Update, error) {
	u := property.Update{
		Title:          f.optString("title"),
		Description:    f.optString("description"),
		Overview:       f.optString("overview"),
		Developer:      f.optString("developer"),
		PropertyType:   f.optString("propertyType"),
		Location:       f.optString("location"),
		City:           f.optString("city"),
		State:          f.optString("state"),
		Price:          f.optString("price"),
		Area:           f.optString("area"),
		AreaUnit:       f.optString("areaUnit"),
		Possession:     f.optString("possession"),
		PossessionDate: f.optString("possessionDate"),
	}

	var err error
	if u.Configuration, err = f.list("configuration"); err != nil {
		return u, err
	}
	if u.Features, err = f.list("features"); err != nil {
		return u, err
	}
	if u.Configurations, err = f.details(); err != nil {
		return u, err
	}
	for key, dst := range map[string]**bool{
		"recommend":   &u.Recommend,
		"featured":    &u.Featured,
		"newProperty": &u.NewProperty,
		"resale":      &u.Resale,
	} {
		if *dst, err = f.optBool(key); err != nil {
			return u, err
		}
	}
	return u, nil
}
