// Package cli defines the cobra command tree for realty.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/cache"
	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/client"
)

var (
	flagFormat   string
	flagCacheDir string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "realty",
		Short:         "Browse and manage real-estate listings",
		Long:          "A tool to browse, search and manage a real-estate listing catalog. Run the API server with 'serve' and manage listings from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "catalog cache directory (default: ~/.cache/realty)")

	root.AddCommand(
		newServeCmd(),
		newHashPasswordCmd(),
		newListCmd(),
		newShowCmd(),
		newSuggestCmd(),
		newSearchCmd(),
		newAddCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newUploadCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newCacheCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the realty API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// openCatalogCache opens the on-disk catalog cache.
func openCatalogCache() (*cache.TTLCache, *cache.FileBackend, error) {
	dir := flagCacheDir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, nil, err
		}
	}
	backend, err := cache.NewFileBackend(dir)
	if err != nil {
		return nil, nil, err
	}
	return cache.New(backend, "properties", getCacheTTL()), backend, nil
}

// newFetcher returns a catalog fetcher backed by the API and the on-disk
// cache. A cache that cannot be opened is skipped.
func newFetcher(errOut io.Writer, c *client.Client) *catalog.Fetcher {
	ttl, _, err := openCatalogCache()
	if err != nil {
		fmt.Fprintf(errOut, "warning: catalog cache disabled: %v\n", err)
		return catalog.NewFetcher(c, nil)
	}
	return catalog.NewFetcher(c, ttl)
}

// invalidateCatalog drops the cached catalog after a mutation.
func invalidateCatalog(ctx context.Context, errOut io.Writer) {
	ttl, _, err := openCatalogCache()
	if err != nil {
		return
	}
	if err := ttl.Invalidate(ctx); err != nil {
		fmt.Fprintf(errOut, "warning: clearing catalog cache: %v\n", err)
	}
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
