package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

const (
	currency         = "грн"
	defaultNameWidth = 40
	minNameWidth     = 16
	maxNameWidth     = 60
	// columns other than the name take roughly this many cells
	fixedColumnsWidth = 52
)

var productColumns = []string{"id", "name", "slug", "category", "supplier", "price", "image_url", "description"}

// FormatPrice renders a price with two decimals and the store currency.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + currency
}

// DisplayJSON writes data as indented JSON.
func DisplayJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

func nameWidth() int {
	width, ok := detectTerminalWidth()
	if !ok {
		return defaultNameWidth
	}

	return min(max(width-fixedColumnsWidth, minNameWidth), maxNameWidth)
}

// DisplayProducts renders a product page in the requested format.
// Supported formats:
//   - "json": the products as returned by the API
//   - "csv": one row per product with a header
//   - "text": a readable list
//   - "table" (default)
func DisplayProducts(w io.Writer, items []catalog.ProductSummary, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		if items == nil {
			items = []catalog.ProductSummary{}
		}

		return DisplayJSON(w, items)
	case FormatCSV:
		return WriteProductsCSV(w, items)
	case FormatText:
		return displayProductsText(w, items)
	default:
		return displayProductsTable(w, items)
	}
}

func displayProductsTable(w io.Writer, items []catalog.ProductSummary) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No products found.")

		return nil
	}

	width := nameWidth()
	data := pterm.TableData{{"ID", "Name", "Category", "Supplier", "Price"}}

	for _, p := range items {
		data = append(data, []string{
			strconv.FormatInt(p.ID, 10),
			Truncate(p.Name, width),
			dash(p.Category),
			dash(p.Supplier),
			FormatPrice(p.Price),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func displayProductsText(w io.Writer, items []catalog.ProductSummary) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No products found.")

		return nil
	}

	fmt.Fprintf(w, "Found %d product(s):\n\n", len(items))

	for _, p := range items {
		fmt.Fprintf(w, "- %s · %s\n", p.Name, FormatPrice(p.Price))
		fmt.Fprintf(w, "  Slug:     %s\n", p.Slug)

		if p.Category != "" {
			fmt.Fprintf(w, "  Category: %s\n", p.Category)
		}

		if p.Supplier != "" {
			fmt.Fprintf(w, "  Supplier: %s\n", p.Supplier)
		}
	}

	return nil
}

// DisplayProduct renders a single product with its full description.
func DisplayProduct(w io.Writer, p catalog.ProductSummary, format string) error {
	if strings.EqualFold(format, FormatJSON) {
		return DisplayJSON(w, p)
	}

	fmt.Fprintln(w, pterm.Bold.Sprint(p.Name))
	fmt.Fprintln(w)

	rows := [][2]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Slug", p.Slug},
		{"Price", FormatPrice(p.Price)},
		{"Category", dash(p.Category)},
		{"Supplier", dash(p.Supplier)},
	}

	if p.ImageURL != "" {
		rows = append(rows, [2]string{"Image", p.ImageURL})
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", padRight(row[0]+":", 10), row[1])
	}

	if desc := strings.TrimSpace(p.Description); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, desc)
	}

	return nil
}

// DisplayFacets renders the category and supplier vocabularies.
func DisplayFacets(w io.Writer, facets catalog.Facets, format string) error {
	if strings.EqualFold(format, FormatJSON) {
		return DisplayJSON(w, facets)
	}

	section := func(title string, values []string) {
		fmt.Fprintf(w, "%s (%d):\n", title, len(values))

		if len(values) == 0 {
			fmt.Fprintln(w, "  none")
		}

		for _, v := range values {
			fmt.Fprintf(w, "  - %s\n", v)
		}
	}

	section("Categories", facets.Categories)
	fmt.Fprintln(w)
	section("Suppliers", facets.Suppliers)

	return nil
}

func productRecord(p catalog.ProductSummary) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Slug,
		p.Category,
		p.Supplier,
		p.Price.String(),
		p.ImageURL,
		oneLine(p.Description),
	}
}

// WriteProductsCSV writes a header row and one record per product.
func WriteProductsCSV(w io.Writer, items []catalog.ProductSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(productColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range items {
		if err := cw.Write(productRecord(p)); err != nil {
			return fmt.Errorf("write csv row for %s: %w", p.Slug, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteProductsXLSX writes a single-sheet workbook with a bold header row.
// Prices are stored as numbers so the sheet can sum them.
func WriteProductsXLSX(w io.Writer, items []catalog.ProductSummary) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}

	header := sheet.AddRow()
	for _, name := range productColumns {
		cell := header.AddCell()
		cell.Value = name
		cell.GetStyle().Font.Bold = true
	}

	for _, p := range items {
		row := sheet.AddRow()

		for i, value := range productRecord(p) {
			cell := row.AddCell()

			switch productColumns[i] {
			case "id":
				cell.SetInt64(p.ID)
			case "price":
				cell.SetFloat(p.Price.InexactFloat64())
			default:
				cell.Value = value
			}
		}
	}

	sheet.SetColWidth(2, 3, 40)

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}

	return s
}
