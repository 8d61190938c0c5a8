package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/catalog"
)

type listOptions struct {
	filter   catalog.FilterState
	page     int
	pageSize int
	refresh  bool
}

// bindFilterFlags registers the filter flags shared by list and search.
func bindFilterFlags(cmd *cobra.Command, f *catalog.FilterState) {
	cmd.Flags().StringVarP(&f.Search, "query", "q", "", "text matched against title, location, city, state and developer")
	cmd.Flags().StringSliceVar(&f.Configuration, "bhk", nil, "configuration labels, e.g. \"2 BHK\" (repeatable)")
	cmd.Flags().StringSliceVar(&f.PropertyType, "type", nil, "property types (repeatable)")
	cmd.Flags().StringVar(&f.Possession, "possession", "", "possession status, exact match")
	cmd.Flags().StringVar(&f.Developer, "developer", "", "developer name, exact match")
	cmd.Flags().StringVar(&f.Budget.Min, "min-price", "", "minimum price (inclusive)")
	cmd.Flags().StringVar(&f.Budget.Max, "max-price", "", "maximum price (inclusive)")
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "List properties from the catalog, optionally filtered. The catalog is cached locally for an hour; use --refresh to reload it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	bindFilterFlags(cmd, &opts.filter)
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", catalog.DefaultPageSize, "properties per page")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore the cached catalog")

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	filter, err := catalog.ParseFilterState(opts.filter.Values())
	if err != nil {
		return err
	}

	fetcher := newFetcher(cmd.ErrOrStderr(), newAPIClient())
	load := fetcher.Catalog
	if opts.refresh {
		load = fetcher.Refresh
	}
	props, err := load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}

	page := catalog.Paginate(catalog.Filter(props, filter), opts.page, opts.pageSize)
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), page)
	}
	return printPage(cmd.OutOrStdout(), page)
}
