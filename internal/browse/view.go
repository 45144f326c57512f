package browse

import (
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// View is everything a renderer needs to draw one page of results.
type View struct {
	Items    []catalog.ProductSummary
	Page     int
	PageSize int
	Busy     bool
	Err      string
	CanPrev  bool
	// CanNext is set only for a full page. A catalog whose size is an exact
	// multiple of the page size therefore offers one extra, empty page.
	CanNext bool
	// Empty marks a successful fetch that matched nothing.
	Empty bool
}

// Render derives the view from the last applied result.
func Render(items []catalog.ProductSummary, page, pageSize int, busy bool, errMsg string) View {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}

	return View{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Busy:     busy,
		Err:      errMsg,
		CanPrev:  page > 1,
		CanNext:  len(items) == pageSize,
		Empty:    len(items) == 0 && errMsg == "",
	}
}
