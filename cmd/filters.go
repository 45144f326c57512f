package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

const completionTimeout = 5 * time.Second

// filterFlags are the catalog filters shared by browse and the products commands.
type filterFlags struct {
	category string
	supplier string
	minPrice string
	maxPrice string
	sort     string
	page     int
}

func (f *filterFlags) register(cmd *cobra.Command, withPage bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.category, "category", "c", "", "Only products in this category")
	flags.StringVarP(&f.supplier, "supplier", "s", "", "Only products from this supplier")
	flags.StringVar(&f.minPrice, "min-price", "", "Lowest price, inclusive")
	flags.StringVar(&f.maxPrice, "max-price", "", "Highest price, inclusive")
	flags.StringVar(&f.sort, "sort", string(catalog.SortNewest), "Order: new, price_asc, price_desc, name_asc")

	if withPage {
		flags.IntVarP(&f.page, "page", "p", 1, "Page to show, starting at 1")
	}

	registerFilterCompletion(cmd)
}

// state builds the filter state for the query words in args.
func (f *filterFlags) state(args []string) (browse.FilterState, error) {
	key, err := catalog.ParseSortKey(f.sort)
	if err != nil {
		return browse.FilterState{}, err
	}

	return browse.FilterState{
		Query:    strings.TrimSpace(strings.Join(args, " ")),
		Category: strings.TrimSpace(f.category),
		Supplier: strings.TrimSpace(f.supplier),
		MinPrice: strings.TrimSpace(f.minPrice),
		MaxPrice: strings.TrimSpace(f.maxPrice),
		Sort:     key,
		Page:     f.page,
	}.Normalize(), nil
}

func registerFilterCompletion(cmd *cobra.Command) {
	completions := map[string]func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective){
		"category": facetCompletion(func(f catalog.Facets) []string { return f.Categories }),
		"supplier": facetCompletion(func(f catalog.Facets) []string { return f.Suppliers }),
		"sort":     sortCompletion,
	}

	for name, fn := range completions {
		if err := cmd.RegisterFlagCompletionFunc(name, fn); err != nil {
			logger.Log.Warnf("Failed to register completion for --%s: %v", name, err)
		}
	}
}

// facetCompletion completes a flag from one of the catalog vocabularies.
func facetCompletion(pick func(catalog.Facets) []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		c, err := currentConfig(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		client, err := newCatalogClient(c)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()

		facets, err := client.Filters(ctx)
		if err != nil {
			logger.Log.Debugf("Facet completion failed: %v", err)

			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return matchPrefix(pick(facets), toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func sortCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	completions := make([]string, 0, len(catalog.SortKeys()))

	for _, key := range catalog.SortKeys() {
		if strings.HasPrefix(string(key), toComplete) {
			completions = append(completions, string(key)+"\t"+key.Label())
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

func matchPrefix(values []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	matches := make([]string, 0, len(values))

	for _, v := range values {
		if prefix == "" || strings.HasPrefix(strings.ToLower(v), prefix) {
			matches = append(matches, v)
		}
	}

	return matches
}
