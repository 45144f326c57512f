package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)

	return client
}

func TestClientList(t *testing.T) {
	var gotPath, gotQuery, gotRequestID, gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get(RequestIDHeader)
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 7, "name": "Tomato seeds", "slug": "tomato-seeds", "price": 12.5, "category": "seeds", "supplier": null},
			{"id": 3, "name": "Shovel", "slug": "shovel", "price": "349.00", "image_url": "/uploads/shovel.png"}
		]`))
	})

	products, err := client.List(context.Background(), Query{Category: "seeds", Limit: 24})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "/catalog", gotPath)
	assert.Equal(t, "category=seeds&skip=0&limit=24", gotQuery)
	assert.NotEmpty(t, gotRequestID)
	assert.Empty(t, gotAuth)

	assert.Equal(t, int64(7), products[0].ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(products[0].Price))
	assert.Equal(t, "seeds", products[0].Category)
	assert.Empty(t, products[0].Supplier)
	assert.True(t, decimal.RequireFromString("349").Equal(products[1].Price))
	assert.Equal(t, "/uploads/shovel.png", products[1].ImageURL)
}

func TestClientListEmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	products, err := client.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestClientCatalogPathAndToken(t *testing.T) {
	var gotPath, gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"categories": ["Насіння", "Добрива"], "suppliers": ["Agro"]}`))
	}, WithCatalogPath("api/products/"), WithToken("secret-token"))

	facets, err := client.Filters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/products/filters", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, []string{"Насіння", "Добрива"}, facets.Categories)
	assert.Equal(t, []string{"Agro"}, facets.Suppliers)
}

func TestClientErrorMessages(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "json detail", status: http.StatusUnprocessableEntity, body: `{"detail": "min_price must be a number"}`, expected: "min_price must be a number"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail": [{"msg": "bad limit"}, {"msg": "bad skip"}]}`, expected: "bad limit; bad skip"},
		{name: "plain text", status: http.StatusInternalServerError, body: "database is down", expected: "database is down"},
		{name: "empty body", status: http.StatusBadGateway, body: "", expected: "HTTP 502"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.List(context.Background(), Query{})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.expected, UserMessage(err))
		})
	}
}

func TestClientProductNotFound(t *testing.T) {
	var gotPath string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Product not found"}`))
	})

	_, err := client.Product(context.Background(), "missing-rose")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "/catalog/missing-rose", gotPath)

	_, err = client.Product(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestClientProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 1, "name": "Compost", "slug": "compost", "description": "Rich", "price": 80}`))
	})

	product, err := client.Product(context.Background(), "compost")
	require.NoError(t, err)
	assert.Equal(t, "Compost", product.Name)
	assert.Equal(t, "Rich", product.Description)
}

func TestClientNetworkFailureUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(url)
	require.NoError(t, err)

	_, err = client.List(context.Background(), Query{})
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, UserMessage(err))
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond))

	_, err := client.List(context.Background(), Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, UserMessage(err), "timed out")
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, WithRateLimit(0.001, 1))

	_, err := client.List(context.Background(), Query{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = client.List(ctx, Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestClientDoesNotMutateCallerTransport(t *testing.T) {
	base := &http.Client{}

	_, err := NewClient("http://localhost:8000", WithHTTPClient(base), WithToken("t"))
	require.NoError(t, err)
	assert.Nil(t, base.Transport)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "ftp://example.com", "http://"} {
		_, err := NewClient(raw)
		assert.Error(t, err, raw)
	}
}

type pagedLister struct {
	mu    sync.Mutex
	total int
	calls []Query
}

func (p *pagedLister) List(_ context.Context, q Query) ([]ProductSummary, error) {
	p.mu.Lock()
	p.calls = append(p.calls, q)
	p.mu.Unlock()

	var out []ProductSummary
	for i := q.Skip; i < q.Skip+q.Limit && i < p.total; i++ {
		out = append(out, ProductSummary{ID: int64(i)})
	}

	return out, nil
}

func TestCollectPages(t *testing.T) {
	testCases := []struct {
		name        string
		total       int
		concurrency int
	}{
		{name: "empty catalog", total: 0, concurrency: 3},
		{name: "exact multiple of page size", total: 20, concurrency: 2},
		{name: "partial last page", total: 23, concurrency: 4},
		{name: "sequential walk", total: 11, concurrency: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lister := &pagedLister{total: tc.total}

			items, err := CollectPages(context.Background(), lister, Query{Category: "seeds", Limit: 5}, tc.concurrency)
			require.NoError(t, err)
			require.Len(t, items, tc.total)

			for i, item := range items {
				assert.Equal(t, int64(i), item.ID)
			}

			for _, call := range lister.calls {
				assert.Equal(t, "seeds", call.Category)
				assert.Equal(t, 5, call.Limit)
			}
		})
	}
}

type failingLister struct{}

func (failingLister) List(context.Context, Query) ([]ProductSummary, error) {
	return nil, errors.New("boom")
}

func TestCollectPagesError(t *testing.T) {
	_, err := CollectPages(context.Background(), failingLister{}, Query{}, 2)
	require.EqualError(t, err, "boom")
}
