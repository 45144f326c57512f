package browse

import (
	"context"
	"sync"
	"time"

	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

// Options tune a Browser. Zero values give a 24-item page, no debounce and no timeout.
type Options struct {
	PageSize      int
	QueryDebounce time.Duration
	FetchTimeout  time.Duration
	// OnUpdate receives every snapshot, possibly from a fetch goroutine.
	OnUpdate func(Snapshot)
	// OnFacets receives the vocabularies once the facet load has finished.
	OnFacets func(catalog.Facets)
}

// Browser ties filter state, result synchronization and facet loading together.
// Every setter that changes the state triggers exactly one fetch.
type Browser struct {
	opts    Options
	holder  *Holder
	syncer  *Synchronizer
	facets  *FacetLoader
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	mount   sync.Once
	facetWG sync.WaitGroup
}

// New builds a browser starting from initial. Nothing is fetched until Mount.
func New(ctx context.Context, api API, initial FilterState, opts Options) *Browser {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.PageSize < 1 {
		opts.PageSize = catalog.DefaultPageSize
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Browser{
		opts:   opts,
		holder: NewHolder(initial),
		syncer: NewSynchronizer(ctx, api, opts.PageSize, opts.FetchTimeout, opts.OnUpdate),
		facets: NewFacetLoader(api),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Mount loads facets and the first page. Calling it again does nothing.
func (b *Browser) Mount() {
	b.mount.Do(func() {
		b.facetWG.Add(1)

		go func() {
			defer b.facetWG.Done()

			facets := b.facets.Load(b.ctx)
			if b.opts.OnFacets != nil {
				b.opts.OnFacets(facets)
			}
		}()

		b.Refresh()
	})
}

// Refresh re-fetches the current state even if nothing changed.
func (b *Browser) Refresh() {
	b.mu.Lock()
	snap, ok := b.syncer.schedule(b.holder.State(), 0)
	b.mu.Unlock()

	b.syncer.notify(snap, ok)
}

// apply runs a holder mutation and schedules a fetch when it changed the state.
// The lock keeps the order of fetches equal to the order of state changes.
func (b *Browser) apply(change func() (FilterState, bool), delay time.Duration) FilterState {
	b.mu.Lock()

	state, changed := change()
	if !changed {
		b.mu.Unlock()

		return state
	}

	snap, ok := b.syncer.schedule(state, delay)
	b.mu.Unlock()

	b.syncer.notify(snap, ok)

	return state
}

// SetQuery updates the search text, waiting QueryDebounce before fetching.
func (b *Browser) SetQuery(v string) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetQuery(v) }, b.opts.QueryDebounce)
}

func (b *Browser) SetCategory(v string) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetCategory(v) }, 0)
}

func (b *Browser) SetSupplier(v string) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetSupplier(v) }, 0)
}

func (b *Browser) SetMinPrice(v string) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetMinPrice(v) }, 0)
}

func (b *Browser) SetMaxPrice(v string) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetMaxPrice(v) }, 0)
}

func (b *Browser) SetSort(key catalog.SortKey) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetSort(key) }, 0)
}

func (b *Browser) SetPage(n int) FilterState {
	return b.apply(func() (FilterState, bool) { return b.holder.SetPage(n) }, 0)
}

// NextPage advances one page when the current view allows it.
func (b *Browser) NextPage() bool {
	if !b.View().CanNext {
		return false
	}

	b.SetPage(b.holder.State().Page + 1)

	return true
}

// PrevPage goes back one page when not on the first.
func (b *Browser) PrevPage() bool {
	page := b.holder.State().Page
	if page <= 1 {
		return false
	}

	b.SetPage(page - 1)

	return true
}

// Reset clears every filter and returns to page 1 in one change.
func (b *Browser) Reset() FilterState {
	return b.apply(b.holder.Reset, 0)
}

// State returns the current filter state.
func (b *Browser) State() FilterState {
	return b.holder.State()
}

// Snapshot returns the latest synchronization state.
func (b *Browser) Snapshot() Snapshot {
	return b.syncer.Snapshot()
}

// View renders the latest snapshot.
func (b *Browser) View() View {
	return b.syncer.Snapshot().View()
}

// Facets returns the loaded vocabularies, empty until the load finishes.
func (b *Browser) Facets() catalog.Facets {
	return b.facets.Facets()
}

// PageSize is the number of products per page.
func (b *Browser) PageSize() int {
	return b.opts.PageSize
}

// Wait blocks until the facet load and every scheduled fetch have finished.
func (b *Browser) Wait() {
	b.facetWG.Wait()
	b.syncer.Wait()
}

// Close cancels outstanding work and waits for it to stop.
func (b *Browser) Close() {
	b.cancel()
	b.syncer.Close()
	b.facetWG.Wait()
}
