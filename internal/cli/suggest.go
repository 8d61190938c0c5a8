package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/catalog"
)

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Suggest search terms",
		Long:  "Suggest titles, developers, locations and cities matching the text. Uses the cached catalog when present and asks the server otherwise.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	c := newAPIClient()
	suggester := catalog.NewSuggester(newFetcher(cmd.ErrOrStderr(), c), c)

	labels := suggester.Suggest(cmd.Context(), strings.Join(args, " "))
	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string][]string{"suggestions": labels})
	}
	if len(labels) == 0 {
		fmt.Fprintln(out, "No suggestions.")
		return nil
	}
	for _, l := range labels {
		fmt.Fprintln(out, l)
	}
	return nil
}
