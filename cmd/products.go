package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/output"
)

const defaultExportConcurrency = 4

var (
	productsListFilters   filterFlags
	productsExportFilters filterFlags

	productsOutputFormat string
	filtersOutputFormat  string
	productOutputFormat  string

	exportFormat      string
	exportPath        string
	exportConcurrency int
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"p"},
	Short:   "Query the catalog without the interactive browser",
}

var productsListCmd = &cobra.Command{
	Use:     "list [query]",
	Aliases: []string{"ls", "search"},
	Short:   "List one page of products",
	Long: `List one page of catalog products matching the query words and filters.
The page size comes from --page-size or browse.page_size.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := productsListFilters.state(args)
		if err != nil {
			return err
		}

		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		output.SetFormat(productsOutputFormat)

		return listProducts(cmd.Context(), cmd.OutOrStdout(), client, state, cfg.Browse.PageSize, productsOutputFormat)
	},
}

var productsFiltersCmd = &cobra.Command{
	Use:     "filters",
	Aliases: []string{"facets"},
	Short:   "Show the available categories and suppliers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		output.SetFormat(filtersOutputFormat)

		return showFacets(cmd.Context(), cmd.OutOrStdout(), client, filtersOutputFormat)
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		output.SetFormat(productOutputFormat)

		return showProduct(cmd.Context(), cmd.OutOrStdout(), client, args[0], productOutputFormat)
	},
}

var productsExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export every product matching the filters",
	Long: `Walk every page matching the query words and filters and write the products
as JSON, CSV or an Excel workbook. Pages are fetched --concurrency at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := productsExportFilters.state(args)
		if err != nil {
			return err
		}

		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		output.SetFormat(exportFormat)

		return exportProducts(cmd.Context(), cmd.OutOrStdout(), client, state, cfg.Browse.PageSize, exportConcurrency, exportFormat, exportPath)
	},
}

// listProducts prints the page of state, using the same request the browser would send.
func listProducts(ctx context.Context, w io.Writer, api catalog.Lister, state browse.FilterState, pageSize int, format string) error {
	req := state.Request(pageSize)
	logger.Log.Debugf("Listing products: %s", req.Encode())

	spin := output.NewSpinner(fmt.Sprintf("Loading page %d", state.Page))
	spin.Start()

	items, err := api.List(ctx, req)
	if err != nil {
		spin.Fail(catalog.UserMessage(err))

		return err
	}

	spin.Stop()

	if err := output.DisplayProducts(w, items, format); err != nil {
		return err
	}

	view := browse.Render(items, state.Page, req.Limit, false, "")
	if view.CanNext && !output.IsJSONMode() {
		pterm.Info.Printfln("More products on page %d (--page %d)", view.Page+1, view.Page+1)
	}

	return nil
}

type facetsAPI interface {
	Filters(ctx context.Context) (catalog.Facets, error)
}

func showFacets(ctx context.Context, w io.Writer, api facetsAPI, format string) error {
	facets, err := api.Filters(ctx)
	if err != nil {
		return fmt.Errorf("failed to load filters: %w", err)
	}

	return output.DisplayFacets(w, facets, format)
}

type productAPI interface {
	Product(ctx context.Context, slug string) (catalog.ProductSummary, error)
}

func showProduct(ctx context.Context, w io.Writer, api productAPI, slug, format string) error {
	p, err := api.Product(ctx, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return fmt.Errorf("product %q not found", slug)
		}

		return err
	}

	return output.DisplayProduct(w, p, format)
}

// exportProducts writes every product matching state, from the first page on.
// path, when set, receives the export instead of w.
func exportProducts(ctx context.Context, w io.Writer, api catalog.Lister, state browse.FilterState, pageSize, concurrency int, format, path string) error {
	switch format {
	case output.FormatJSON, output.FormatCSV:
	case output.FormatXLSX:
		if path == "" {
			return errors.New("--output is required for xlsx exports")
		}
	default:
		return fmt.Errorf("unsupported export format %q (json, csv, xlsx)", format)
	}

	state.Page = 1
	req := state.Request(pageSize)

	spin := output.NewSpinner("Exporting catalog")
	spin.Start()

	items, err := catalog.CollectPages(ctx, api, req, concurrency)
	if err != nil {
		spin.Fail("Export failed")

		return err
	}

	spin.Success(fmt.Sprintf("Collected %d product(s)", len(items)))

	if path == "" {
		return writeExport(w, items, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeExport(f, items, format); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Log.Infof("Wrote %d product(s) to %s", len(items), path)

	return nil
}

func writeExport(w io.Writer, items []catalog.ProductSummary, format string) error {
	var err error

	switch format {
	case output.FormatXLSX:
		err = output.WriteProductsXLSX(w, items)
	case output.FormatCSV:
		err = output.WriteProductsCSV(w, items)
	default:
		err = output.DisplayProducts(w, items, output.FormatJSON)
	}

	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	return nil
}

func init() {
	productsListFilters.register(productsListCmd, true)
	productsListCmd.Flags().StringVarP(&productsOutputFormat, "output", "o",
		output.DefaultFormat(output.FormatTable, []string{output.FormatTable, output.FormatText, output.FormatJSON, output.FormatCSV}),
		"Output format: table, text, json, csv")

	productsFiltersCmd.Flags().StringVarP(&filtersOutputFormat, "output", "o",
		output.DefaultFormat(output.FormatText, []string{output.FormatText, output.FormatJSON}),
		"Output format: text, json")

	productsShowCmd.Flags().StringVarP(&productOutputFormat, "output", "o",
		output.DefaultFormat(output.FormatText, []string{output.FormatText, output.FormatJSON}),
		"Output format: text, json")

	productsExportFilters.register(productsExportCmd, false)
	productsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", output.FormatJSON, "Export format: json, csv, xlsx")
	productsExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Write to this file instead of stdout")
	productsExportCmd.Flags().IntVar(&exportConcurrency, "concurrency", defaultExportConcurrency, "Pages fetched in parallel")

	productsCmd.AddCommand(productsListCmd, productsFiltersCmd, productsShowCmd, productsExportCmd)
	rootCmd.AddCommand(productsCmd)
}
