// Package devserver serves a local catalog API for trying the browser without a real backend.
package devserver

import (
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// Filter is a parsed listing request.
type Filter struct {
	Text     string
	Category string
	Supplier string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     catalog.SortKey
	Skip     int
	Limit    int
}

// Store is an immutable in-memory product table.
type Store struct {
	products []catalog.ProductSummary
	bySlug   map[string]int
}

// NewStore indexes products. The slice is copied.
func NewStore(products []catalog.ProductSummary) *Store {
	s := &Store{
		products: slices.Clone(products),
		bySlug:   make(map[string]int, len(products)),
	}

	for i, p := range s.products {
		s.bySlug[p.Slug] = i
	}

	return s
}

// Len is the number of products.
func (s *Store) Len() int { return len(s.products) }

// Search applies f and returns one page.
func (s *Store) Search(f Filter) []catalog.ProductSummary {
	text := strings.ToLower(strings.TrimSpace(f.Text))

	matched := make([]catalog.ProductSummary, 0, len(s.products))

	for _, p := range s.products {
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Name), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}

		if f.Category != "" && p.Category != f.Category {
			continue
		}

		if f.Supplier != "" && p.Supplier != f.Supplier {
			continue
		}

		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}

		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}

		matched = append(matched, p)
	}

	sort.SliceStable(matched, less(matched, f.Sort))

	if f.Skip >= len(matched) {
		return []catalog.ProductSummary{}
	}

	end := len(matched)
	if f.Limit > 0 && f.Skip+f.Limit < end {
		end = f.Skip + f.Limit
	}

	return matched[f.Skip:end]
}

// less orders by the sort key with newest id first on ties.
func less(items []catalog.ProductSummary, key catalog.SortKey) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := items[i], items[j]

		switch key {
		case catalog.SortPriceAsc:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c < 0
			}
		case catalog.SortPriceDesc:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c > 0
			}
		case catalog.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}

		return a.ID > b.ID
	}
}

// Facets lists distinct non-empty categories and suppliers, sorted.
func (s *Store) Facets() catalog.Facets {
	return catalog.Facets{
		Categories: distinct(s.products, func(p catalog.ProductSummary) string { return p.Category }),
		Suppliers:  distinct(s.products, func(p catalog.ProductSummary) string { return p.Supplier }),
	}
}

func distinct(products []catalog.ProductSummary, field func(catalog.ProductSummary) string) []string {
	seen := make(map[string]bool)
	out := []string{}

	for _, p := range products {
		v := field(p)
		if v == "" || seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	sort.Strings(out)

	return out
}

// Product looks a product up by slug.
func (s *Store) Product(slug string) (catalog.ProductSummary, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return catalog.ProductSummary{}, false
	}

	return s.products[i], true
}
