package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/output"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	allCategories = "All categories"
	allSuppliers  = "All suppliers"
)

// highlightMatch highlights the first occurrence of the search term in the text.
// Returns the text with tview color markup for highlighting.
func highlightMatch(text, term string) string {
	termLower := strings.ToLower(strings.TrimSpace(term))
	if termLower == "" || text == "" {
		return tview.Escape(text)
	}

	idx := strings.Index(strings.ToLower(text), termLower)
	if idx < 0 || idx+len(termLower) > len(text) {
		return tview.Escape(text)
	}

	end := idx + len(termLower)

	return tview.Escape(text[:idx]) + "[yellow::b]" + tview.Escape(text[idx:end]) + "[-:-:-]" + tview.Escape(text[end:])
}

func productCells(p catalog.ProductSummary, query string) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		highlightMatch(p.Name, query),
		tview.Escape(orDash(p.Category)),
		tview.Escape(orDash(p.Supplier)),
		output.FormatPrice(p.Price),
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}

	return s
}

func resultsTitle(v browse.View) string {
	return fmt.Sprintf(" Products · page %d (%d) ", v.Page, len(v.Items))
}

// statusText summarizes the view for the bottom bar. The paging hints follow CanPrev and CanNext.
func statusText(v browse.View) string {
	var b strings.Builder

	switch {
	case v.Err != "":
		b.WriteString(" [red]" + tview.Escape(v.Err) + "[-]  [yellow]r[-] retry")
	case v.Busy:
		b.WriteString(" [yellow]Loading...[-]")
	case v.Empty:
		b.WriteString(" [yellow]No products match these filters[-]  [yellow]x[-] reset")
	default:
		b.WriteString(fmt.Sprintf(" [green]%d products[-]", len(v.Items)))
	}

	if v.CanPrev {
		b.WriteString("  [yellow]p[-] prev")
	}

	if v.CanNext {
		b.WriteString("  [yellow]n[-] next")
	}

	b.WriteString("  [yellow]Tab[-] filters  [yellow]d[-] details  [yellow]a[-] add to cart  [yellow]?[-] help")

	return b.String()
}

func progressText(v browse.View, frame int) string {
	if !v.Busy {
		return ""
	}

	return fmt.Sprintf("[yellow]%s page %d[-]", spinnerFrames[frame%len(spinnerFrames)], v.Page)
}

func detailText(p catalog.ProductSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[yellow::b]%s[-:-:-]\n\n", tview.Escape(p.Name))
	fmt.Fprintf(&b, "[white::b]Price:[-:-:-]    [aqua]%s[-]\n", output.FormatPrice(p.Price))
	fmt.Fprintf(&b, "[white::b]Category:[-:-:-] %s\n", tview.Escape(orDash(p.Category)))
	fmt.Fprintf(&b, "[white::b]Supplier:[-:-:-] %s\n", tview.Escape(orDash(p.Supplier)))
	fmt.Fprintf(&b, "[white::b]Slug:[-:-:-]     %s\n", tview.Escape(p.Slug))

	if p.ImageURL != "" {
		fmt.Fprintf(&b, "[white::b]Image:[-:-:-]    %s\n", tview.Escape(p.ImageURL))
	}

	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString("\n" + tview.Escape(desc) + "\n")
	}

	b.WriteString("\n[darkgray]a add to cart · Esc close[-]")

	return b.String()
}

func cartText(items []cart.Item) string {
	if len(items) == 0 {
		return "[yellow]Your cart is empty.[-]\n\n[darkgray]Press a on a product to add it. Esc closes.[-]"
	}

	var b strings.Builder

	b.WriteString("[yellow::b]Cart[-:-:-]\n\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%2d. %s\n     %d × %s = [aqua]%s[-]\n",
			i+1, tview.Escape(item.Name), item.Count, output.FormatPrice(item.Price), output.FormatPrice(item.Subtotal()))
	}

	fmt.Fprintf(&b, "\n[white::b]%d item(s), total %s[-:-:-]\n", cart.Count(items), output.FormatPrice(cart.Total(items)))
	b.WriteString("\n[darkgray]1-9 remove line · X clear cart · Esc close[-]")

	return b.String()
}

func helpText(sections []helpSection) string {
	var b strings.Builder

	b.WriteString("[yellow::b]Catalog Browser - Keyboard Shortcuts[-:-:-]\n")

	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n[yellow]%s[-]\n", section.title)

		for _, e := range section.entries {
			fmt.Fprintf(&b, "  [white]%-12s[-]  %s\n", tview.Escape(e.Key), e.Description)
		}
	}

	b.WriteString("\n[darkgray]Press Esc or ? to close this help[-]")

	return b.String()
}

type helpSection struct {
	title   string
	entries []HelpEntry
}

// facetOptions prepends the "any value" choice to a facet vocabulary.
func facetOptions(all string, values []string) []string {
	return append([]string{all}, values...)
}

// facetValue maps a dropdown index back to a filter value; index 0 means any.
func facetValue(values []string, index int) string {
	if index <= 0 || index > len(values) {
		return ""
	}

	return values[index-1]
}

// facetIndex is the dropdown index of value, 0 when it is empty or unknown.
func facetIndex(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i + 1
		}
	}

	return 0
}

func sortLabels() []string {
	keys := catalog.SortKeys()
	labels := make([]string, len(keys))

	for i, k := range keys {
		labels[i] = k.Label()
	}

	return labels
}

func sortIndex(key catalog.SortKey) int {
	for i, k := range catalog.SortKeys() {
		if k == key {
			return i
		}
	}

	return 0
}
