package browse

import (
	"context"
	"sync"
	"time"

	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

// Snapshot is the synchronizer's state after a change. Version grows with
// every snapshot; listeners may be called from several goroutines and should
// ignore a snapshot older than one already drawn.
type Snapshot struct {
	Version  uint64
	State    FilterState
	Request  catalog.Query
	PageSize int
	Items    []catalog.ProductSummary
	Err      string
	Busy     bool
}

// View renders the snapshot.
func (s Snapshot) View() View {
	return Render(s.Items, s.State.Page, s.PageSize, s.Busy, s.Err)
}

// Synchronizer issues one listing fetch per state change. Only the most
// recently issued fetch may update the results: earlier ones are cancelled
// and, should they still complete, discarded.
type Synchronizer struct {
	api      catalog.Lister
	pageSize int
	timeout  time.Duration
	listener func(Snapshot)

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	closed bool

	version uint64
	state   FilterState
	request catalog.Query
	items   []catalog.ProductSummary
	errMsg  string
	busy    bool
}

// NewSynchronizer creates a synchronizer whose fetches live under ctx.
// A positive timeout bounds each fetch. listener may be nil.
func NewSynchronizer(ctx context.Context, api catalog.Lister, pageSize int, timeout time.Duration, listener func(Snapshot)) *Synchronizer {
	if ctx == nil {
		ctx = context.Background()
	}

	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}

	syncCtx, stop := context.WithCancel(ctx)

	return &Synchronizer{
		api:      api,
		pageSize: pageSize,
		timeout:  timeout,
		listener: listener,
		ctx:      syncCtx,
		stop:     stop,
		state:    DefaultState(),
		items:    []catalog.ProductSummary{},
	}
}

// PageSize is the limit sent with every request.
func (s *Synchronizer) PageSize() int {
	return s.pageSize
}

// schedule registers state as the latest request and starts its fetch, after
// delay when positive. The change counts as the latest request immediately.
// The returned snapshot must be passed to notify once the caller holds no locks.
func (s *Synchronizer) schedule(state FilterState, delay time.Duration) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, false
	}

	s.supersedeLocked()

	s.seq++
	seq := s.seq
	state = state.Normalize()
	req := state.Request(s.pageSize)

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	s.state = state
	s.request = req
	s.busy = true
	s.errMsg = ""

	s.wg.Add(1)

	if delay > 0 {
		s.timer = time.AfterFunc(delay, func() {
			s.fetch(ctx, seq, req)
		})
	} else {
		go s.fetch(ctx, seq, req)
	}

	return s.snapshotLocked(), true
}

// supersedeLocked cancels the in-flight fetch and any pending delayed one.
func (s *Synchronizer) supersedeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.timer != nil {
		if s.timer.Stop() {
			// The timer never fired, so its fetch never ran.
			s.wg.Done()
		}

		s.timer = nil
	}
}

func (s *Synchronizer) fetch(ctx context.Context, seq uint64, req catalog.Query) {
	defer s.wg.Done()

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	items, err := s.api.List(fetchCtx, req)

	s.mu.Lock()

	if seq != s.seq || s.closed {
		s.mu.Unlock()
		logger.Log.Debugf("Discarding superseded catalog response #%d", seq)

		return
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.timer = nil
	s.busy = false

	if err != nil {
		logger.Log.Debugf("Catalog fetch #%d failed: %v", seq, err)
		s.items = []catalog.ProductSummary{}
		s.errMsg = catalog.UserMessage(err)
	} else {
		s.items = items
		s.errMsg = ""
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap, true)
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	s.version++

	return Snapshot{
		Version:  s.version,
		State:    s.state,
		Request:  s.request,
		PageSize: s.pageSize,
		Items:    s.items,
		Err:      s.errMsg,
		Busy:     s.busy,
	}
}

func (s *Synchronizer) notify(snap Snapshot, ok bool) {
	if ok && s.listener != nil {
		s.listener(snap)
	}
}

// Snapshot returns the current state without bumping the version.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Version:  s.version,
		State:    s.state,
		Request:  s.request,
		PageSize: s.pageSize,
		Items:    s.items,
		Err:      s.errMsg,
		Busy:     s.busy,
	}
}

// Wait blocks until no fetch is running or pending.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// Close cancels every fetch. Results that arrive afterwards are dropped.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.supersedeLocked()
		s.busy = false
	}
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
}
