package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Lister is the listing half of the catalog API.
type Lister interface {
	List(ctx context.Context, q Query) ([]ProductSummary, error)
}

// CollectPages walks every page of q, fetching up to concurrency pages at a
// time. Walking stops after the first page that comes back short. Results
// keep listing order.
func CollectPages(ctx context.Context, api Lister, q Query, concurrency int) ([]ProductSummary, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}

	if q.Skip < 0 {
		q.Skip = 0
	}

	var all []ProductSummary

	for batch := 0; ; batch++ {
		pages := make([][]ProductSummary, concurrency)

		var (
			mu   sync.Mutex
			last = -1
		)

		g, gctx := errgroup.WithContext(ctx)

		for i := 0; i < concurrency; i++ {
			page := q
			page.Skip = q.Skip + (batch*concurrency+i)*q.Limit

			g.Go(func() error {
				items, err := api.List(gctx, page)
				if err != nil {
					return err
				}

				pages[i] = items

				if len(items) < page.Limit {
					mu.Lock()
					if last == -1 || i < last {
						last = i
					}
					mu.Unlock()
				}

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		end := concurrency
		if last >= 0 {
			end = last + 1
		}

		for _, items := range pages[:end] {
			all = append(all, items...)
		}

		if last >= 0 {
			return all, nil
		}
	}
}
