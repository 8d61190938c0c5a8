package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|slug>",
		Short: "Show property details",
		Long:  "Show full details for a property, looked up by id or slug, along with recommended properties.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := newAPIClient().Detail(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, d)
	}

	printPropertySummary(out, d.Property)
	if len(d.Recommended) > 0 {
		fmt.Fprintf(out, "\nRecommended (%d):\n", len(d.Recommended))
		for _, r := range d.Recommended {
			fmt.Fprintf(out, "  %s  %s  %s\n", r.Slug, r.Title, dash(formatPrice(r.Price)))
		}
	}
	return nil
}
