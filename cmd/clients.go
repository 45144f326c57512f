package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/config"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/storage"
	"github.com/zelena-gryadka/gryadka/internal/version"
)

const logFileName = "gryadka.log"

func newCatalogClient(c *config.Config) (*catalog.Client, error) {
	opts := []catalog.Option{
		catalog.WithCatalogPath(c.API.CatalogPath),
		catalog.WithUserAgent(version.UserAgent()),
		catalog.WithTimeout(c.API.Timeout),
	}

	if c.API.Token != "" {
		opts = append(opts, catalog.WithToken(c.API.Token))
	}

	if c.API.RateLimit > 0 {
		opts = append(opts, catalog.WithRateLimit(c.API.RateLimit, c.API.RateBurst))
	}

	client, err := catalog.NewClient(c.API.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	logger.Log.Debugf("Using catalog API at %s", client.BaseURL())

	return client, nil
}

func openStorage(ctx context.Context, c *config.Config) (*storage.DB, error) {
	if c.Storage.Path != "" {
		return storage.Open(ctx, c.Storage.Path)
	}

	return storage.OpenDefault(ctx)
}

// logFilePath puts the TUI log next to the database.
func logFilePath(db *storage.DB) string {
	return filepath.Join(filepath.Dir(db.Path()), logFileName)
}

// openCart returns the configured cart store and a function releasing what it opened.
// db backs the sqlite store and may be nil for the other backends.
func openCart(c *config.Config, db *storage.DB) (cart.Store, func(), error) {
	switch c.Cart.Backend {
	case config.BackendMemory:
		logger.Log.Debug("Using in-memory cart; it is lost on exit")

		return cart.NewMemoryStore(), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: c.Cart.RedisAddr})
		logger.Log.Debugf("Using Redis cart %s at %s", c.Cart.RedisKey, c.Cart.RedisAddr)

		return cart.NewRedisStore(client, c.Cart.RedisKey, c.Cart.TTL), func() { _ = client.Close() }, nil
	default:
		if db == nil {
			return nil, nil, fmt.Errorf("cart backend %q needs the local database", c.Cart.Backend)
		}

		return cart.NewSQLiteStore(db, cart.DefaultKey), func() {}, nil
	}
}
