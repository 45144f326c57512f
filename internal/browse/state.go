// Package browse keeps catalog filter state and the displayed product page
// in sync with the remote catalog.
package browse

import (
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// FilterState is the full set of browsing inputs.
type FilterState struct {
	Query    string
	Category string
	Supplier string
	MinPrice string
	MaxPrice string
	Sort     catalog.SortKey
	Page     int
}

// DefaultState is the state after a reset: everything blank, newest first, page 1.
func DefaultState() FilterState {
	return FilterState{Sort: catalog.SortNewest, Page: 1}
}

// Normalize fills the zero sort key and clamps the page to 1.
func (s FilterState) Normalize() FilterState {
	if s.Sort == "" {
		s.Sort = catalog.SortNewest
	}

	if s.Page < 1 {
		s.Page = 1
	}

	return s
}

// IsDefault reports whether no filter is set and the first page is selected.
func (s FilterState) IsDefault() bool {
	return s.Normalize() == DefaultState()
}

// Request builds the listing request for this state.
func (s FilterState) Request(pageSize int) catalog.Query {
	s = s.Normalize()
	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}

	return catalog.Query{
		Text:     s.Query,
		Category: s.Category,
		Supplier: s.Supplier,
		MinPrice: s.MinPrice,
		MaxPrice: s.MaxPrice,
		Sort:     s.Sort,
		Skip:     (s.Page - 1) * pageSize,
		Limit:    pageSize,
	}
}
