package cart

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/storage"
)

// DefaultKey names the cart when none is configured.
const DefaultKey = "default"

// SQLiteStore keeps a cart in the local database.
type SQLiteStore struct {
	db  *storage.DB
	key string
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore stores the cart named key in db.
func NewSQLiteStore(db *storage.DB, key string) *SQLiteStore {
	if key == "" {
		key = DefaultKey
	}

	return &SQLiteStore{db: db, key: key, now: time.Now}
}

func (s *SQLiteStore) Items(ctx context.Context) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, slug, name, price, image_url, description, count, added_at
		FROM cart_items WHERE cart_key = ?
		ORDER BY added_at, product_id`, s.key)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []Item{}

	for rows.Next() {
		var (
			item        Item
			price       string
			image, desc sql.NullString
			addedAt     int64
		)

		if err := rows.Scan(&item.ProductID, &item.Slug, &item.Name, &price, &image, &desc, &item.Count, &addedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		item.Price, err = decimal.NewFromString(price)
		if err != nil {
			logger.Log.Warnf("Cart item %d has an unreadable price %q", item.ProductID, price)

			item.Price = decimal.Zero
		}

		item.ImageURL = image.String
		item.Description = desc.String
		item.AddedAt = time.Unix(0, addedAt)
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, item Item) error {
	item, err := prepare(item, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO cart_items (cart_key, product_id, slug, name, price, image_url, description, count, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cart_key, product_id) DO UPDATE SET
			count = count + excluded.count`,
		s.key, item.ProductID, item.Slug, item.Name, item.Price.String(), item.ImageURL, item.Description, item.Count, item.AddedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("add cart item %d: %w", item.ProductID, err)
	}

	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, productID int64) error {
	result, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_key = ? AND product_id = ?`, s.key, productID)
	if err != nil {
		return fmt.Errorf("remove cart item %d: %w", productID, err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_key = ?`, s.key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
