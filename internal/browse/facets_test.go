package browse_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/browse/browsemock"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"go.uber.org/mock/gomock"
)

func TestFacetLoaderFetchesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := browsemock.NewMockAPI(ctrl)

	api.EXPECT().
		Filters(gomock.Any()).
		Return(catalog.Facets{Categories: []string{"Добрива", "Насіння"}, Suppliers: []string{"Agro"}}, nil).
		Times(1)

	loader := browse.NewFacetLoader(api)
	assert.False(t, loader.Loaded())
	assert.Empty(t, loader.Facets().Categories)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facets := loader.Load(context.Background())
			assert.Equal(t, []string{"Добрива", "Насіння"}, facets.Categories)
		}()
	}
	wg.Wait()

	assert.True(t, loader.Loaded())
	assert.Equal(t, []string{"Agro"}, loader.Facets().Suppliers)
}

func TestFacetLoaderSwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := browsemock.NewMockAPI(ctrl)

	api.EXPECT().
		Filters(gomock.Any()).
		Return(catalog.Facets{}, errors.New("connection refused")).
		Times(1)

	loader := browse.NewFacetLoader(api)

	facets := loader.Load(context.Background())
	assert.NotNil(t, facets.Categories)
	assert.NotNil(t, facets.Suppliers)
	assert.Empty(t, facets.Categories)
	assert.Empty(t, facets.Suppliers)

	// No retry after a failure.
	loader.Load(context.Background())
	assert.True(t, loader.Loaded())
}

func TestBrowserDoesNotRefetchFacetsOnFilterChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := browsemock.NewMockAPI(ctrl)

	api.EXPECT().Filters(gomock.Any()).Return(catalog.Facets{Categories: []string{"Інвентар"}}, nil).Times(1)
	api.EXPECT().List(gomock.Any(), gomock.Any()).Return([]catalog.ProductSummary{}, nil).Times(4)

	b := browse.New(context.Background(), api, browse.DefaultState(), browse.Options{})
	defer b.Close()

	b.Mount()
	b.Wait()

	b.SetCategory("Інвентар")
	b.Wait()
	b.SetSort(catalog.SortPriceAsc)
	b.Wait()
	b.SetMaxPrice("500")
	b.Wait()

	assert.Equal(t, []string{"Інвентар"}, b.Facets().Categories)
}
