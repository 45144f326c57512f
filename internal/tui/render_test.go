package tui

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

func TestHighlightMatch(t *testing.T) {
	tests := []struct {
		name, text, term, want string
	}{
		{"no term", "Насіння томату", "", "Насіння томату"},
		{"cyrillic", "Насіння томату", "ТОМАТ", "Насіння [yellow::b]томат[-:-:-]у"},
		{"not found", "Секатор", "лопата", "Секатор"},
		{"escapes brackets", "Pot [XL]", "pot", "[yellow::b]Pot[-:-:-] [XL[]"},
		{"trims term", "Grow bag", "  bag ", "Grow [yellow::b]bag[-:-:-]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlightMatch(tt.text, tt.term))
		})
	}
}

func TestProductCells(t *testing.T) {
	p := catalog.ProductSummary{ID: 7, Name: "Шпагат", Price: decimal.RequireFromString("24.5")}

	assert.Equal(t, []string{"7", "Шпагат", "-", "-", "24.50 грн"}, productCells(p, ""))
}

func fullPage(n int) []catalog.ProductSummary {
	items := make([]catalog.ProductSummary, n)
	for i := range items {
		items[i] = catalog.ProductSummary{ID: int64(i + 1), Name: "p"}
	}

	return items
}

func TestStatusText(t *testing.T) {
	t.Run("full first page", func(t *testing.T) {
		s := statusText(browse.Render(fullPage(24), 1, 24, false, ""))

		assert.Contains(t, s, "24 products")
		assert.Contains(t, s, "n[-] next")
		assert.NotContains(t, s, "prev")
	})

	t.Run("short later page", func(t *testing.T) {
		s := statusText(browse.Render(fullPage(6), 2, 24, false, ""))

		assert.Contains(t, s, "p[-] prev")
		assert.NotContains(t, s, "n[-] next")
	})

	t.Run("error", func(t *testing.T) {
		s := statusText(browse.Render(nil, 1, 24, false, "Input should be a valid number"))

		assert.Contains(t, s, "[red]Input should be a valid number[-]")
		assert.Contains(t, s, "retry")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, statusText(browse.Render(nil, 1, 24, false, "")), "No products match")
	})

	t.Run("busy", func(t *testing.T) {
		v := browse.Render(nil, 3, 24, true, "")

		assert.Contains(t, statusText(v), "Loading")
		assert.Equal(t, "[yellow]⠙ page 3[-]", progressText(v, 1))
		assert.Empty(t, progressText(browse.Render(nil, 1, 24, false, ""), 1))
	})
}

func TestResultsTitle(t *testing.T) {
	assert.Equal(t, " Products · page 2 (6) ", resultsTitle(browse.Render(fullPage(6), 2, 24, false, "")))
}

func TestDetailText(t *testing.T) {
	p := catalog.ProductSummary{
		Name:        "Секатор садовий",
		Slug:        "секатор-садовий",
		Category:    "Інвентар",
		Price:       decimal.RequireFromString("349"),
		Description: "Сталеві леза",
	}

	text := detailText(p)

	assert.Contains(t, text, "Секатор садовий")
	assert.Contains(t, text, "349.00 грн")
	assert.Contains(t, text, "[white::b]Supplier:[-:-:-] -")
	assert.Contains(t, text, "Сталеві леза")
	assert.NotContains(t, text, "Image:")
}

func TestCartText(t *testing.T) {
	assert.Contains(t, cartText(nil), "Your cart is empty.")

	items := []cart.Item{
		{ProductID: 1, Name: "Субстрат", Price: decimal.RequireFromString("120"), Count: 2},
		{ProductID: 2, Name: "Насіння", Price: decimal.RequireFromString("43.5"), Count: 1},
	}

	text := cartText(items)

	assert.Contains(t, text, " 1. Субстрат")
	assert.Contains(t, text, "2 × 120.00 грн = [aqua]240.00 грн[-]")
	assert.Contains(t, text, "3 item(s), total 283.50 грн")
}

func TestHelpText(t *testing.T) {
	text := helpText([]helpSection{
		{title: "Results", entries: []HelpEntry{{Key: "n/→", Description: "Next page"}}},
		{title: "Empty"},
	})

	assert.Contains(t, text, "[yellow]Results[-]")
	assert.Contains(t, text, "Next page")
	assert.NotContains(t, text, "Empty")
}

func TestFacetOptions(t *testing.T) {
	values := []string{"Добрива", "Насіння"}
	options := facetOptions(allCategories, values)

	require.Len(t, options, 3)
	assert.Equal(t, allCategories, options[0])

	assert.Equal(t, "", facetValue(values, 0))
	assert.Equal(t, "Насіння", facetValue(values, 2))
	assert.Equal(t, "", facetValue(values, 3))

	assert.Equal(t, 2, facetIndex(values, "Насіння"))
	assert.Equal(t, 0, facetIndex(values, ""))
	assert.Equal(t, 0, facetIndex(values, "Інше"))
}

func TestSortOptions(t *testing.T) {
	labels := sortLabels()

	require.Len(t, labels, len(catalog.SortKeys()))
	assert.Equal(t, "Newest", labels[0])
	assert.Equal(t, 3, sortIndex(catalog.SortNameAsc))
	assert.Equal(t, 0, sortIndex(catalog.SortKey("bogus")))
}
