package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(&v2CartItems{})
}

// v2CartItems adds the cart table. Carts are keyed so several can share one file.
type v2CartItems struct{}

func (m *v2CartItems) Version() int {
	return 2
}

func (m *v2CartItems) Description() string {
	return "Add cart items table"
}

func (m *v2CartItems) Up(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cart_items (
			cart_key TEXT NOT NULL,
			product_id INTEGER NOT NULL,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			image_url TEXT,
			description TEXT,
			count INTEGER NOT NULL DEFAULT 1,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (cart_key, product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cart_items_added_at ON cart_items(cart_key, added_at)`,
	}

	return ExecStatements(ctx, db, statements)
}
