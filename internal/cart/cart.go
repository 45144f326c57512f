// Package cart keeps the shopping cart behind a small persistence interface.
package cart

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// ErrItemNotFound is returned when removing a product that is not in the cart.
var ErrItemNotFound = errors.New("cart: item not found")

// ErrInvalidCount is returned for an Add with a non-positive count.
var ErrInvalidCount = errors.New("cart: count must be positive")

// Item is one cart line.
type Item struct {
	ProductID   int64           `json:"product_id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Description string          `json:"description,omitempty"`
	Count       int             `json:"count"`
	AddedAt     time.Time       `json:"added_at"`
}

// Subtotal is price times count.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Count)))
}

// FromProduct builds a cart line for count units of p.
func FromProduct(p catalog.ProductSummary, count int) Item {
	return Item{
		ProductID:   p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Count:       count,
	}
}

// Store persists a single cart.
type Store interface {
	// Items lists the cart in the order products were first added.
	Items(ctx context.Context) ([]Item, error)
	// Add puts item in the cart, or increases the count of a line already there.
	Add(ctx context.Context, item Item) error
	// Remove drops the whole line for productID.
	Remove(ctx context.Context, productID int64) error
	// Clear empties the cart.
	Clear(ctx context.Context) error
}

// Total sums every line's subtotal.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return total
}

// Count is the number of units across all lines.
func Count(items []Item) int {
	n := 0
	for _, item := range items {
		n += item.Count
	}

	return n
}

func prepare(item Item, now time.Time) (Item, error) {
	if item.Count == 0 {
		item.Count = 1
	}

	if item.Count < 0 {
		return Item{}, ErrInvalidCount
	}

	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}

	return item, nil
}

func sortByAdded(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ProductID < items[j].ProductID
		}

		return items[i].AddedAt.Before(items[j].AddedAt)
	})
}
