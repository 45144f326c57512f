package browse

import (
	"context"

	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

//go:generate mockgen -source=api.go -destination=browsemock/api_mock.go -package=browsemock

// API is the part of the catalog the browser reads from.
type API interface {
	List(ctx context.Context, q catalog.Query) ([]catalog.ProductSummary, error)
	Filters(ctx context.Context) (catalog.Facets, error)
}
