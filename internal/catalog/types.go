// Package catalog talks to the storefront's product catalog REST API.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the server-side ordering of a product listing.
type SortKey string

const (
	SortNewest    SortKey = "new"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
)

// SortKeys lists every supported ordering, default first.
func SortKeys() []SortKey {
	return []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc}
}

// Valid reports whether s is a known ordering.
func (s SortKey) Valid() bool {
	for _, k := range SortKeys() {
		if s == k {
			return true
		}
	}

	return false
}

// Label is the human readable name shown in selectors.
func (s SortKey) Label() string {
	switch s {
	case SortPriceAsc:
		return "Price: low to high"
	case SortPriceDesc:
		return "Price: high to low"
	case SortNameAsc:
		return "Name: A-Z"
	default:
		return "Newest"
	}
}

// ParseSortKey accepts a sort key name, treating an empty string as newest first.
func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return SortNewest, nil
	}

	if !key.Valid() {
		return SortNewest, fmt.Errorf("unknown sort order %q", raw)
	}

	return key, nil
}

// ProductSummary is one row of a catalog listing.
type ProductSummary struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Facets holds the category and supplier vocabularies in server order.
type Facets struct {
	Categories []string `json:"categories"`
	Suppliers  []string `json:"suppliers"`
}
