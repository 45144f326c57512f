package cart

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/storage"
)

type tickingClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *tickingClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur = c.cur.Add(time.Second)

	return c.cur
}

func newClock() func() time.Time {
	c := &tickingClock{cur: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}

	return c.now
}

func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()

	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			s := NewMemoryStore()
			s.now = newClock()

			return s
		},
		"sqlite": func(t *testing.T) Store {
			db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "cart.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			s := NewSQLiteStore(db, "")
			s.now = newClock()

			return s
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })

			s := NewRedisStore(client, "test:cart", 0)
			s.now = newClock()

			return s
		},
	}
}

func seedProduct(id int64, name, price string) catalog.ProductSummary {
	return catalog.ProductSummary{
		ID:    id,
		Name:  name,
		Slug:  name,
		Price: decimal.RequireFromString(price),
	}
}

func TestStoreContract(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			items, err := store.Items(ctx)
			require.NoError(t, err)
			assert.Empty(t, items)

			seeds := seedProduct(7, "tomato-seeds", "12.50")
			shovel := seedProduct(3, "shovel", "349")

			require.NoError(t, store.Add(ctx, FromProduct(seeds, 1)))
			require.NoError(t, store.Add(ctx, FromProduct(shovel, 0)))
			require.NoError(t, store.Add(ctx, FromProduct(seeds, 2)))

			items, err = store.Items(ctx)
			require.NoError(t, err)
			require.Len(t, items, 2)

			assert.Equal(t, int64(7), items[0].ProductID, "first added comes first")
			assert.Equal(t, 3, items[0].Count)
			assert.Equal(t, "tomato-seeds", items[0].Name)
			assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].Price))
			assert.Equal(t, 1, items[1].Count)

			assert.True(t, decimal.RequireFromString("386.5").Equal(Total(items)), Total(items).String())
			assert.Equal(t, 4, Count(items))

			require.NoError(t, store.Remove(ctx, 7))
			assert.ErrorIs(t, store.Remove(ctx, 7), ErrItemNotFound)

			items, err = store.Items(ctx)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "shovel", items[0].Slug)

			require.NoError(t, store.Clear(ctx))

			items, err = store.Items(ctx)
			require.NoError(t, err)
			assert.Empty(t, items)

			assert.ErrorIs(t, store.Add(ctx, FromProduct(seeds, -1)), ErrInvalidCount)
		})
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			product := seedProduct(1, "compost", "80")

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, store.Add(ctx, FromProduct(product, 1)))
				}()
			}
			wg.Wait()

			items, err := store.Items(ctx)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, 10, items[0].Count)
		})
	}
}

func TestSQLiteStoreKeysAreIsolated(t *testing.T) {
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mine := NewSQLiteStore(db, "mine")
	theirs := NewSQLiteStore(db, "theirs")

	require.NoError(t, mine.Add(ctx, FromProduct(seedProduct(1, "rake", "120"), 1)))

	items, err := theirs.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, theirs.Clear(ctx))

	items, err = mine.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisStore(client, "ttl:cart", time.Hour)
	require.NoError(t, store.Add(ctx, FromProduct(seedProduct(5, "hose", "410"), 1)))

	assert.Equal(t, time.Hour, mr.TTL("ttl:cart:items"))
	assert.Equal(t, time.Hour, mr.TTL("ttl:cart:qty"))

	mr.FastForward(2 * time.Hour)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemSubtotal(t *testing.T) {
	item := Item{Price: decimal.RequireFromString("0.10"), Count: 3}
	assert.True(t, decimal.RequireFromString("0.3").Equal(item.Subtotal()))
	assert.True(t, Total(nil).IsZero())
}
