package browse

import (
	"context"
	"sync"

	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

// FacetSource provides the category and supplier vocabularies.
type FacetSource interface {
	Filters(ctx context.Context) (catalog.Facets, error)
}

// FacetLoader fetches facets at most once. A failed fetch leaves empty
// vocabularies and is never retried.
type FacetLoader struct {
	src    FacetSource
	once   sync.Once
	mu     sync.RWMutex
	facets catalog.Facets
	loaded bool
}

func NewFacetLoader(src FacetSource) *FacetLoader {
	return &FacetLoader{src: src, facets: emptyFacets()}
}

func emptyFacets() catalog.Facets {
	return catalog.Facets{Categories: []string{}, Suppliers: []string{}}
}

// Load performs the fetch on first use; later calls return the stored result.
// Concurrent callers wait for the first fetch to finish.
func (l *FacetLoader) Load(ctx context.Context) catalog.Facets {
	l.once.Do(func() {
		facets, err := l.src.Filters(ctx)
		if err != nil {
			logger.Log.Debugf("Facet load failed, selectors stay empty: %v", err)

			facets = emptyFacets()
		}

		if facets.Categories == nil {
			facets.Categories = []string{}
		}

		if facets.Suppliers == nil {
			facets.Suppliers = []string{}
		}

		l.mu.Lock()
		l.facets = facets
		l.loaded = true
		l.mu.Unlock()
	})

	return l.Facets()
}

// Facets returns the vocabularies without triggering a fetch.
func (l *FacetLoader) Facets() catalog.Facets {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.facets
}

// Loaded reports whether the single fetch has completed, successfully or not.
func (l *FacetLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.loaded
}
