package browse

import (
	"sync"

	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// Holder owns the current FilterState. Every filter setter moves back to
// page 1 in the same update, even when the value is unchanged. Values are
// stored as given, without validation.
type Holder struct {
	mu    sync.Mutex
	state FilterState
}

// NewHolder starts from initial, normalized.
func NewHolder(initial FilterState) *Holder {
	return &Holder{state: initial.Normalize()}
}

// State returns a copy of the current state.
func (h *Holder) State() FilterState {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

// update applies fn under the lock and reports the resulting state and whether it changed.
func (h *Holder) update(fn func(s *FilterState)) (FilterState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.state
	next := prev
	fn(&next)
	h.state = next.Normalize()

	return h.state, h.state != prev
}

func (h *Holder) setFilter(field func(s *FilterState) *string, value string) (FilterState, bool) {
	return h.update(func(s *FilterState) {
		*field(s) = value
		s.Page = 1
	})
}

func (h *Holder) SetQuery(v string) (FilterState, bool) {
	return h.setFilter(func(s *FilterState) *string { return &s.Query }, v)
}

func (h *Holder) SetCategory(v string) (FilterState, bool) {
	return h.setFilter(func(s *FilterState) *string { return &s.Category }, v)
}

func (h *Holder) SetSupplier(v string) (FilterState, bool) {
	return h.setFilter(func(s *FilterState) *string { return &s.Supplier }, v)
}

func (h *Holder) SetMinPrice(v string) (FilterState, bool) {
	return h.setFilter(func(s *FilterState) *string { return &s.MinPrice }, v)
}

func (h *Holder) SetMaxPrice(v string) (FilterState, bool) {
	return h.setFilter(func(s *FilterState) *string { return &s.MaxPrice }, v)
}

// SetSort changes the ordering; an empty key means newest first.
func (h *Holder) SetSort(key catalog.SortKey) (FilterState, bool) {
	if key == "" {
		key = catalog.SortNewest
	}

	return h.update(func(s *FilterState) {
		s.Sort = key
		s.Page = 1
	})
}

// SetPage moves to page n, clamped to 1. Filters are untouched.
func (h *Holder) SetPage(n int) (FilterState, bool) {
	return h.update(func(s *FilterState) {
		s.Page = n
	})
}

// Reset restores DefaultState in one update.
func (h *Holder) Reset() (FilterState, bool) {
	return h.update(func(s *FilterState) {
		*s = DefaultState()
	})
}
