package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
	"github.com/evcraddock/realty/internal/property"
)

// propertyFlags collects the property fields shared by add and edit.
type propertyFlags struct {
	strings        map[string]*string
	bools          map[string]*bool
	configuration  []string
	features       []string
	configurations string
	images         []string
}

// string flag name -> form field name
var stringFields = map[string]string{
	"title":           "title",
	"description":     "description",
	"overview":        "overview",
	"developer":       "developer",
	"type":            "propertyType",
	"location":        "location",
	"city":            "city",
	"state":           "state",
	"price":           "price",
	"area":            "area",
	"area-unit":       "areaUnit",
	"possession":      "possession",
	"possession-date": "possessionDate",
}

var boolFields = map[string]string{
	"recommend": "recommend",
	"featured":  "featured",
	"new":       "newProperty",
	"resale":    "resale",
}

func bindPropertyFlags(cmd *cobra.Command) *propertyFlags {
	pf := &propertyFlags{strings: map[string]*string{}, bools: map[string]*bool{}}
	for name, field := range stringFields {
		pf.strings[name] = cmd.Flags().String(name, "", field)
	}
	for name, field := range boolFields {
		pf.bools[name] = cmd.Flags().Bool(name, false, field)
	}
	cmd.Flags().StringSliceVar(&pf.configuration, "bhk", nil, "configuration labels, e.g. \"2 BHK\" (repeatable)")
	cmd.Flags().StringArrayVar(&pf.features, "feature", nil, "feature (repeatable)")
	cmd.Flags().StringVar(&pf.configurations, "configurations", "", `unit layouts as a JSON array, e.g. '[{"bhkType":"2 BHK","price":"5000000"}]'`)
	cmd.Flags().StringArrayVarP(&pf.images, "image", "i", nil, "image file to upload (repeatable)")
	return pf
}

// form builds the request from the flags the user actually set.
func (pf *propertyFlags) form(cmd *cobra.Command) (client.PropertyForm, error) {
	form := client.PropertyForm{Fields: map[string]string{}, Images: pf.images}
	changed := cmd.Flags().Changed

	for name, v := range pf.strings {
		if changed(name) {
			form.Fields[stringFields[name]] = *v
		}
	}
	for name, v := range pf.bools {
		if changed(name) {
			form.Fields[boolFields[name]] = strconv.FormatBool(*v)
		}
	}
	if changed("bhk") {
		form.Configuration = nonNil(pf.configuration)
	}
	if changed("feature") {
		form.Features = nonNil(pf.features)
	}
	if changed("configurations") {
		var details []property.ConfigurationDetail
		if err := json.Unmarshal([]byte(pf.configurations), &details); err != nil {
			return form, fmt.Errorf("--configurations must be a JSON array: %w", err)
		}
		form.Configurations = nonNil(details)
	}
	return form, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func newAddCmd() *cobra.Command {
	var pf *propertyFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property",
		Long:  "Create a property listing. At least one --image is required; images are uploaded with the request. Requires 'realty login'.",
		Example: `  realty add --title "Sunrise Towers" --type Residential --city Pune \
    --price 5000000 --bhk "2 BHK" --bhk "3 BHK" --image front.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, pf)
		},
	}
	pf = bindPropertyFlags(cmd)
	if err := cmd.MarkFlagRequired("title"); err != nil {
		panic(err)
	}
	return cmd
}

func runAdd(cmd *cobra.Command, pf *propertyFlags) error {
	form, err := pf.form(cmd)
	if err != nil {
		return err
	}
	if len(form.Images) == 0 {
		return fmt.Errorf("at least one --image is required")
	}

	msg, err := newAPIClient().Create(cmd.Context(), form)
	if err != nil {
		return fmt.Errorf("adding property: %w", err)
	}
	invalidateCatalog(cmd.Context(), cmd.ErrOrStderr())

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"msg": msg})
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
