package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the cart in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items map[int64]Item
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]Item), now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Items(context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}

	sortByAdded(out)

	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, item Item) error {
	item, err := prepare(item, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[item.ProductID]; ok {
		existing.Count += item.Count
		s.items[item.ProductID] = existing

		return nil
	}

	s.items[item.ProductID] = item

	return nil
}

func (s *MemoryStore) Remove(_ context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[productID]; !ok {
		return ErrItemNotFound
	}

	delete(s.items, productID)

	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.items = make(map[int64]Item)
	s.mu.Unlock()

	return nil
}
