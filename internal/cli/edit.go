package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
)

func newEditCmd() *cobra.Command {
	var (
		pf            *propertyFlags
		keep          []string
		replaceImages bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a property",
		Long: `Update the fields given as flags; everything else is left as is. Changing the title also changes the slug.

Images are untouched unless --image, --keep-image or --replace-images is given. Then the stored list becomes the kept images followed by the new uploads.`,
		Example: `  realty edit 65f0c0ffee0000000000beef --price 5200000
  realty edit 65f0c0ffee0000000000beef --keep-image https://host/a.jpg --image new.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := pf.form(cmd)
			if err != nil {
				return err
			}
			if len(keep) > 0 || replaceImages {
				form.ExistingImages = nonNil(keep)
				form.KeepImages = true
			}
			return runEdit(cmd, args[0], form)
		},
	}
	pf = bindPropertyFlags(cmd)
	cmd.Flags().StringArrayVar(&keep, "keep-image", nil, "already hosted image URL to keep (repeatable)")
	cmd.Flags().BoolVar(&replaceImages, "replace-images", false, "drop every stored image not listed with --keep-image")
	return cmd
}

func runEdit(cmd *cobra.Command, id string, form client.PropertyForm) error {
	if len(form.Fields) == 0 && form.Configuration == nil && form.Features == nil &&
		form.Configurations == nil && len(form.Images) == 0 && !form.KeepImages {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	p, err := newAPIClient().Update(cmd.Context(), id, form)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}
	invalidateCatalog(cmd.Context(), cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, p)
	}
	fmt.Fprintln(out, "Property updated.")
	if p != nil {
		printPropertySummary(out, p)
	}
	return nil
}
