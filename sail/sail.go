// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sail implements a minimal in-memory RDF store exposed through
// forkable sources, writable sinks and readable datasets.
//
// Only the None isolation level is implemented. The other levels exist so
// callers can request them; doing so fails with ErrIsolationNotImplemented.
package sail

import (
	"errors"
	"fmt"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

// IsolationLevel is the transactional visibility contract requested of a
// sink or dataset.
type IsolationLevel int

const (
	None IsolationLevel = iota
	ReadUncommitted
	ReadCommitted
	SnapshotRead
	Snapshot
	Serializable
)

func (l IsolationLevel) String() string {
	switch l {
	case None:
		return "none"
	case ReadUncommitted:
		return "read-uncommitted"
	case ReadCommitted:
		return "read-committed"
	case SnapshotRead:
		return "snapshot-read"
	case Snapshot:
		return "snapshot"
	case Serializable:
		return "serializable"
	}
	return fmt.Sprintf("isolation(%d)", int(l))
}

var (
	ErrIsolationNotImplemented = errors.New("isolation level not implemented")
	ErrClosed                  = errors.New("sail: closed")
)

func checkLevel(l IsolationLevel) error {
	if l != None {
		return fmt.Errorf("%v: %w", l, ErrIsolationNotImplemented)
	}
	return nil
}

// Source is a forkable origin of sinks and datasets over one model.
type Source struct {
	model *Model
}

// NewSource wraps a model. A nil model is replaced by an empty one.
func NewSource(m *Model) *Source {
	if m == nil {
		m = NewModel()
	}
	return &Source{model: m}
}

// Model returns the live model behind the source.
func (s *Source) Model() *Model { return s.model }

// Fork returns a new source backed by a copy of the current model.
// Later changes to either source are not visible to the other.
func (s *Source) Fork() *Source {
	forks.Inc()
	return &Source{model: s.model.Clone()}
}

// Sink returns a writer bound to the live model.
func (s *Source) Sink(level IsolationLevel) (*Sink, error) {
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	return &Sink{model: s.model, level: level}, nil
}

// Dataset returns a reader over the live model.
func (s *Source) Dataset(level IsolationLevel) (*Dataset, error) {
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	return &Dataset{model: s.model}, nil
}

// Sink mutates a model. At isolation level None every change is applied
// immediately, so Prepare and Flush have nothing to do.
type Sink struct {
	model  *Model
	level  IsolationLevel
	closed bool
}

func (s *Sink) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Level returns the isolation level the sink was opened with.
func (s *Sink) Level() IsolationLevel { return s.level }

// Prepare is a no-op at isolation level None.
func (s *Sink) Prepare() error { return s.check() }

// Flush is a no-op at isolation level None.
func (s *Sink) Flush() error { return s.check() }

// Approve adds a statement. Adding an existing statement is a no-op.
// Malformed terms are rejected with a triple.ValueError.
func (s *Sink) Approve(subj, pred, obj, ctx quad.Value) error {
	if err := s.check(); err != nil {
		return err
	}
	st, err := triple.New(subj, pred, obj, ctx)
	if err != nil {
		return err
	}
	if s.model.Add(st) {
		approvedStatements.Inc()
	}
	return nil
}

// ApproveStatement adds an already validated statement.
func (s *Sink) ApproveStatement(st triple.Statement) error {
	if err := s.check(); err != nil {
		return err
	}
	if !st.IsValid() {
		return &DeltaError{Delta: Delta{Statement: st, Action: Approve}, Err: triple.ErrInvalidSubject}
	}
	if s.model.Add(st) {
		approvedStatements.Inc()
	}
	return nil
}

// Deprecate removes a statement. Removing a missing statement is a no-op.
func (s *Sink) Deprecate(st triple.Statement) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.model.Remove(st) {
		deprecatedStatements.Inc()
	}
	return nil
}

// Apply runs the deltas of a transaction in order.
func (s *Sink) Apply(tx *Transaction) error {
	if err := s.check(); err != nil {
		return err
	}
	for _, d := range tx.Deltas {
		switch {
		case d.Action != Approve && d.Action != Deprecate:
			return &DeltaError{Delta: d, Err: ErrInvalidAction}
		case !d.Statement.IsValid():
			return &DeltaError{Delta: d, Err: triple.ErrInvalidSubject}
		}
	}
	s.model.mu.Lock()
	defer s.model.mu.Unlock()
	for _, d := range tx.Deltas {
		if d.Action == Approve {
			if s.model.add(d.Statement) {
				approvedStatements.Inc()
			}
		} else if s.model.remove(d.Statement) {
			deprecatedStatements.Inc()
		}
	}
	if clog.V(2) {
		clog.Infof("sail: applied %d deltas", len(tx.Deltas))
	}
	return nil
}

// Clear removes all statements in the given contexts, or every statement
// when none is given.
func (s *Sink) Clear(ctxs ...quad.Value) error {
	if err := s.check(); err != nil {
		return err
	}
	n := s.model.Clear(ctxs...)
	deprecatedStatements.Add(float64(n))
	return nil
}

// Observe records a read dependency for conflict detection.
// At isolation level None nothing is recorded.
func (s *Sink) Observe(subj, pred, obj quad.Value, ctxs ...quad.Value) error {
	return s.check()
}

func (s *Sink) SetNamespace(prefix, iri string) error {
	if err := s.check(); err != nil {
		return err
	}
	s.model.ns.Register(prefix, iri)
	return nil
}

func (s *Sink) RemoveNamespace(prefix string) error {
	if err := s.check(); err != nil {
		return err
	}
	s.model.ns.Remove(prefix)
	return nil
}

func (s *Sink) ClearNamespaces() error {
	if err := s.check(); err != nil {
		return err
	}
	s.model.ns.Clear()
	return nil
}

// Close releases the sink. Further calls fail with ErrClosed.
func (s *Sink) Close() error {
	s.closed = true
	return nil
}

// Dataset reads a model.
type Dataset struct {
	model *Model
}

// GetStatements returns the statements matching a pattern; nil terms are
// wildcards. See Model.Match for context semantics.
func (d *Dataset) GetStatements(subj, pred, obj quad.Value, ctxs ...quad.Value) []triple.Statement {
	return d.model.Match(subj, pred, obj, ctxs...)
}

// ContextIDs returns the named contexts in use.
func (d *Dataset) ContextIDs() []quad.Value {
	return d.model.Contexts()
}

// Namespace returns the IRI bound to prefix.
func (d *Dataset) Namespace(prefix string) (string, bool) {
	return d.model.ns.Lookup(prefix)
}

// Namespaces lists the namespace bindings.
func (d *Dataset) Namespaces() []voc.Namespace {
	return d.model.ns.List()
}

func (d *Dataset) Close() error { return nil }
