package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/sail"
)

var ErrSyncClosed = errors.New("bridge: sync closed")

// Sync keeps the explicit source of a store equal to the export of a graph.
//
// Graph changes are coalesced and re-exported by a single worker goroutine.
// Each export diffs the graph against the explicit source and applies the
// difference in one transaction. Other writers may still approve into the
// explicit source; statements the graph does not hold are deprecated by the
// next export, so writers sharing a store with a Sync must also write the
// graph.
type Sync struct {
	g     *graph.Graph
	store *sail.Store

	pending chan struct{}
	waiters chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	remove  func()
	once    sync.Once
}

// NewSync starts synchronizing g into store. An initial export is queued.
func NewSync(g *graph.Graph, store *sail.Store) *Sync {
	s := &Sync{
		g:       g,
		store:   store,
		pending: make(chan struct{}, 1),
		waiters: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.remove = g.AddListener(func(graph.Event) { s.signal() })
	s.signal()
	go s.run()
	return s
}

func (s *Sync) signal() {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

func (s *Sync) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case <-s.pending:
			s.export()
		case w := <-s.waiters:
			select {
			case <-s.pending:
			default:
			}
			s.export()
			close(w)
		}
	}
}

func (s *Sync) export() {
	defer prometheus.NewTimer(syncSeconds).ObserveDuration()
	m := ExportModel(s.g.Read())
	cur := s.store.Explicit().Model()
	tx := sail.NewTransaction()
	for _, st := range cur.Statements() {
		if !m.Contains(st) {
			tx.Deprecate(st)
		}
	}
	for _, st := range m.Statements() {
		if !cur.Contains(st) {
			tx.Approve(st)
		}
	}
	if tx.Len() == 0 {
		return
	}
	sink, err := s.store.Explicit().Sink(sail.None)
	if err != nil {
		clog.Errorf("bridge: sync: %v", err)
		return
	}
	defer sink.Close()
	if err := sink.Apply(tx); err != nil {
		clog.Errorf("bridge: sync: %v", err)
		return
	}
	syncRuns.Inc()
	if clog.V(2) {
		clog.Infof("bridge: sync applied %d changes", tx.Len())
	}
}

// Refresh re-exports the graph and waits until the store reflects it.
func (s *Sync) Refresh(ctx context.Context) error {
	w := make(chan struct{})
	select {
	case s.waiters <- w:
	case <-s.done:
		return ErrSyncClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops listening to the graph and waits for the worker to exit.
func (s *Sync) Close() error {
	s.once.Do(func() {
		s.remove()
		close(s.quit)
	})
	<-s.done
	return nil
}
