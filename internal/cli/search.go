package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
	"github.com/evcraddock/realty/internal/search"
)

const searchHelp = `Type text to see suggestions. Commands:
  <enter>      search for the current text
  :N           pick suggestion N
  :next :prev  change page
  :page N      jump to page N
  :clear       reset the search and filters
  :quit        leave`

func newSearchCmd() *cobra.Command {
	var (
		filter   catalog.FilterState
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search interactively",
		Long:  "Start an interactive search over the catalog with live suggestions and paged results.\n\n" + searchHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := catalog.ParseFilterState(filter.Values()); err != nil {
				return err
			}
			c := newAPIClient()
			fetcher := newFetcher(cmd.ErrOrStderr(), c)
			sess := search.New(catalog.NewSuggester(fetcher, c),
				search.WithDebounce(0), search.WithPageSize(pageSize))
			sess.SetFilter(filter)
			return runSearch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sess, fetcher.Catalog)
		},
	}

	bindFilterFlags(cmd, &filter)
	cmd.Flags().IntVar(&pageSize, "page-size", catalog.DefaultPageSize, "properties per page")
	return cmd
}

type catalogLoader func(ctx context.Context) ([]property.Property, error)

// runSearch drives a session from line-oriented input until EOF or :quit.
func runSearch(ctx context.Context, in io.Reader, out io.Writer, sess *search.Session, load catalogLoader) error {
	showResults := func() {
		props, err := load(ctx)
		if err != nil {
			fmt.Fprintf(out, "Failed to load properties: %v\n", err)
			return
		}
		if err := printPage(out, sess.Results(props)); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	fmt.Fprintln(out, searchHelp)
	if sess.State() == search.Filtered {
		showResults()
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%s]> ", sess.State())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		view := sess.View()

		switch {
		case line == "":
			if view.Query == "" && !view.Filter.Active() {
				continue
			}
			sess.Submit(view.Query)
			showResults()

		case line == ":quit" || line == ":q":
			return nil

		case line == ":clear":
			sess.Clear()
			fmt.Fprintln(out, "Cleared.")

		case line == ":next" || line == ":prev":
			delta := 1
			if line == ":prev" {
				delta = -1
			}
			sess.SetPage(view.Page + delta)
			showResults()

		case strings.HasPrefix(line, ":page "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ":page ")))
			if err != nil {
				fmt.Fprintln(out, "usage: :page N")
				continue
			}
			sess.SetPage(n)
			showResults()

		case strings.HasPrefix(line, ":"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, ":"))
			if err != nil || n < 1 || n > len(view.Suggestions) {
				fmt.Fprintln(out, "unknown command; type :quit to leave")
				continue
			}
			sess.Select(view.Suggestions[n-1])
			showResults()

		default:
			res := sess.Type(ctx, line)
			if res.Stale {
				continue
			}
			if len(res.Suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions. Press enter to search.")
				continue
			}
			for i, s := range res.Suggestions {
				fmt.Fprintf(out, "  %d) %s\n", i+1, s)
			}
		}
	}
}
