package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

func seedStore(t *testing.T) *Store {
	t.Helper()

	products, err := SeedProducts()
	require.NoError(t, err)

	return NewStore(products)
}

func newTestClient(t *testing.T, cfg Config) *catalog.Client {
	t.Helper()

	srv := httptest.NewServer(NewRouter(seedStore(t), cfg))
	t.Cleanup(srv.Close)

	client, err := catalog.NewClient(srv.URL, catalog.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return client
}

func ids(items []catalog.ProductSummary) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}

	return out
}

func TestSeedProducts(t *testing.T) {
	products, err := SeedProducts()
	require.NoError(t, err)
	require.Len(t, products, 30)

	first := products[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "насіння-томату-бичаче-серце", first.Slug)
	assert.Equal(t, "Насіння", first.Category)
	assert.True(t, decimal.RequireFromString("24.5").Equal(first.Price), first.Price.String())

	dup := products[27]
	assert.Equal(t, "насіння-томату-бичаче-серце-2", dup.Slug)

	twine := products[26]
	assert.Empty(t, twine.Supplier)
	assert.Empty(t, twine.ImageURL)
	assert.Equal(t, "Інше", twine.Category)
}

func TestParseSeed(t *testing.T) {
	products, err := ParseSeed([]byte(`[
		{"name": "  "},
		{"name": "Грунт для кактусів", "price": "abc"},
		{"name": "Лоток", "price": null}
	]`))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Ґрунти/Субстрати", products[0].Category)
	assert.True(t, products[0].Price.IsZero())
	assert.Equal(t, int64(2), products[1].ID)
	assert.Equal(t, "Інвентар", products[1].Category)

	_, err = ParseSeed([]byte(`{`))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Агроволокно біле 3,2 x 10 м": "агроволокно-біле-32-x-10-м",
		"Горщик торф'яний 8 см":       "горщик-торфяний-8-см",
		"  --Tomato__Seeds--  ":       "tomato-seeds",
		"!!!":                         "product",
	}

	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestStoreSearch(t *testing.T) {
	store := seedStore(t)
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)

		return &d
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{
			name:   "text matches name or description case-insensitively",
			filter: Filter{Text: "  ТОМАТ "},
			want:   []int64{28, 27, 8, 1},
		},
		{
			name:   "inclusive price range sorted by price",
			filter: Filter{MinPrice: price("100"), MaxPrice: price("150"), Sort: catalog.SortPriceAsc},
			want:   []int64{10, 24, 15, 19},
		},
		{
			name:   "equal bounds keep the exact price",
			filter: Filter{MinPrice: price("145"), MaxPrice: price("145")},
			want:   []int64{19},
		},
		{
			name:   "category and supplier are exact",
			filter: Filter{Category: "Насіння", Supplier: "Семко"},
			want:   []int64{28, 4, 3},
		},
		{
			name:   "price descending",
			filter: Filter{Sort: catalog.SortPriceDesc, Limit: 3},
			want:   []int64{23, 20, 29},
		},
		{
			name:   "skip past the end",
			filter: Filter{Skip: 30},
			want:   []int64{},
		},
		{
			name:   "last partial page",
			filter: Filter{Skip: 28, Limit: 5},
			want:   []int64{2, 1},
		},
		{
			name:   "unknown sort falls back to newest",
			filter: Filter{Sort: "popular", Limit: 2},
			want:   []int64{30, 29},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(store.Search(tt.filter)))
		})
	}
}

func TestStoreSearchTieBreak(t *testing.T) {
	store := NewStore([]catalog.ProductSummary{
		{ID: 1, Name: "b", Slug: "b1", Price: decimal.NewFromInt(5)},
		{ID: 2, Name: "a", Slug: "a", Price: decimal.NewFromInt(5)},
		{ID: 3, Name: "b", Slug: "b3", Price: decimal.NewFromInt(1)},
	})

	assert.Equal(t, []int64{3, 2, 1}, ids(store.Search(Filter{Sort: catalog.SortPriceAsc})))
	assert.Equal(t, []int64{2, 1, 3}, ids(store.Search(Filter{Sort: catalog.SortPriceDesc})))
	assert.Equal(t, []int64{2, 3, 1}, ids(store.Search(Filter{Sort: catalog.SortNameAsc})))
}

func TestStoreFacets(t *testing.T) {
	facets := seedStore(t).Facets()

	assert.Equal(t, []string{"Інвентар", "Інше", "Добрива", "ЗЗР", "Насіння", "Ґрунти/Субстрати"}, facets.Categories)
	assert.Len(t, facets.Suppliers, 10)
	assert.NotContains(t, facets.Suppliers, "")
	assert.IsIncreasing(t, facets.Suppliers)
}

func TestHandlerListing(t *testing.T) {
	client := newTestClient(t, Config{})
	ctx := context.Background()

	page, err := client.List(ctx, catalog.Query{})
	require.NoError(t, err)
	require.Len(t, page, catalog.DefaultPageSize)
	assert.Equal(t, int64(30), page[0].ID)

	page, err = client.List(ctx, catalog.Query{Sort: catalog.SortNameAsc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Інсектицид Актара 1,4 г", page[0].Name)

	page, err = client.List(ctx, catalog.Query{MinPrice: "10.5", MaxPrice: "12", Limit: 200})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, decimal.NewFromInt(12).Equal(page[0].Price))
}

func TestHandlerValidation(t *testing.T) {
	srv := httptest.NewServer(NewRouter(seedStore(t), Config{BasePath: "/api/products"}))
	defer srv.Close()

	tests := map[string]string{
		"bad min price": "min_price=abc",
		"bad max price": "max_price=1,5",
		"negative skip": "skip=-1",
		"zero limit":    "limit=0",
		"huge limit":    "limit=201",
		"text limit":    "limit=ten",
	}

	for name, query := range tests {
		t.Run(name, func(t *testing.T) {
			resp, err := srv.Client().Get(srv.URL + "/api/products?" + query)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}

	client, err := catalog.NewClient(srv.URL, catalog.WithHTTPClient(srv.Client()), catalog.WithCatalogPath("/api/products"))
	require.NoError(t, err)

	_, err = client.List(context.Background(), catalog.Query{MinPrice: "cheap"})
	require.Error(t, err)
	assert.Equal(t, "Input should be a valid number, unable to parse string as a number", catalog.UserMessage(err))
}

func TestHandlerProductAndFilters(t *testing.T) {
	client := newTestClient(t, Config{})
	ctx := context.Background()

	p, err := client.Product(ctx, "секатор-садовий")
	require.NoError(t, err)
	assert.Equal(t, int64(23), p.ID)
	assert.Equal(t, "Fiskars", p.Supplier)

	_, err = client.Product(ctx, "no-such-thing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Equal(t, "Product not found", catalog.UserMessage(err))

	facets, err := client.Filters(ctx)
	require.NoError(t, err)
	assert.Len(t, facets.Categories, 6)
}

func TestRequestIDEcho(t *testing.T) {
	srv := httptest.NewServer(NewRouter(seedStore(t), Config{}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/catalog/filters", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "abc-123", resp.Header.Get(catalog.RequestIDHeader))
}

func TestBrowserAgainstDevServer(t *testing.T) {
	client := newTestClient(t, Config{Latency: 5 * time.Millisecond})

	b := browse.New(context.Background(), client, browse.DefaultState(), browse.Options{})
	defer b.Close()

	b.Mount()
	b.Wait()

	view := b.View()
	require.Empty(t, view.Err)
	assert.Len(t, view.Items, 24)
	assert.True(t, view.CanNext)
	assert.False(t, view.CanPrev)
	assert.Len(t, b.Facets().Categories, 6)

	require.True(t, b.NextPage())
	b.Wait()

	view = b.View()
	assert.Equal(t, 2, view.Page)
	assert.Len(t, view.Items, 6)
	assert.False(t, view.CanNext)
	assert.True(t, view.CanPrev)

	state := b.SetCategory("Насіння")
	assert.Equal(t, 1, state.Page)
	b.Wait()

	view = b.View()
	assert.Len(t, view.Items, 8)
	assert.False(t, view.CanNext)

	b.SetMinPrice("oops")
	b.Wait()

	view = b.View()
	assert.Empty(t, view.Items)
	assert.Contains(t, view.Err, "valid number")

	b.Reset()
	b.Wait()
	assert.Len(t, b.View().Items, 24)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- Serve(ctx, listener, seedStore(t), Config{BasePath: "/catalog"}) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/catalog/filters")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.True(t, err == nil || errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
