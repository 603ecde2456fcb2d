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

// Package graph is an in-memory property graph: vertices and directed or
// undirected transactions (edges) carrying typed attributes.
//
// Readers see immutable snapshots. Writers work on a private copy that
// replaces the current state on Commit, after which change listeners are
// notified. Only one write transaction is open at a time.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cayleygraph/rdfsail/clog"
)

// ElementType identifies the kind of element an attribute belongs to.
type ElementType int

const (
	GraphElement ElementType = iota
	VertexElement
	TransactionElement
)

func (et ElementType) String() string {
	switch et {
	case GraphElement:
		return "graph"
	case VertexElement:
		return "vertex"
	case TransactionElement:
		return "transaction"
	}
	return fmt.Sprintf("element(%d)", int(et))
}

// Attribute types.
const (
	StringType  = "string"
	IntegerType = "integer"
	BooleanType = "boolean"
	ObjectType  = "object"
)

// NotFound is returned by lookups that find nothing.
const NotFound = -1

// GraphID is the element id of the graph itself, used with graph attributes.
const GraphID = 0

var (
	ErrTxClosed    = errors.New("graph: write transaction closed")
	ErrNoSuchElem  = errors.New("graph: no such element")
	ErrNoSuchAttr  = errors.New("graph: no such attribute")
	ErrAttrExists  = errors.New("graph: attribute exists")
	ErrBadEndpoint = errors.New("graph: transaction endpoint is not a vertex")
)

// Attribute describes a typed attribute of one element type.
type Attribute struct {
	ID          int
	Element     ElementType
	Type        string
	Name        string
	Description string
}

// Reader gives read access to a graph.
type Reader interface {
	VertexCount() int
	// VertexAt returns the id of the vertex at a position in [0, VertexCount).
	VertexAt(pos int) int
	TransactionCount() int
	TransactionAt(pos int) int
	TransactionSource(tx int) int
	TransactionDestination(tx int) int
	TransactionDirected(tx int) bool

	AttributeCount(et ElementType) int
	AttributeAt(et ElementType, pos int) int
	Attribute(id int) (Attribute, bool)
	// AttributeID returns NotFound if there is no attribute with that name.
	AttributeID(et ElementType, name string) int

	// StringValue returns the value as a string, or "" if unset.
	StringValue(attr, elem int) string
	ObjectValue(attr, elem int) interface{}

	ModCount() int64
}

// Writer is a Reader that can modify the graph.
type Writer interface {
	Reader
	AddVertex() int
	RemoveVertex(v int) error
	AddTransaction(src, dst int, directed bool) (int, error)
	AddAttribute(et ElementType, typ, name, description string) (int, error)
	// EnsureAttribute returns the id of the named attribute, creating it if absent.
	EnsureAttribute(et ElementType, typ, name, description string) int
	SetStringValue(attr, elem int, v string) error
	SetObjectValue(attr, elem int, v interface{}) error
}

// Copier is implemented by object values that must not be shared between
// a snapshot and a write transaction.
type Copier interface {
	Copy() interface{}
}

// Event is delivered to listeners after a write transaction commits.
type Event struct {
	Name     string
	ModCount int64
}

// Listener receives change events. It is called synchronously from Commit
// and must not block or write to the graph.
type Listener func(Event)

// Graph is a property graph with snapshot reads and serialized writes.
type Graph struct {
	mu  sync.RWMutex
	cur *state

	wmu sync.Mutex

	lmu       sync.Mutex
	nextL     int
	listeners map[int]Listener
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{cur: newState(), listeners: make(map[int]Listener)}
}

// Read returns an immutable snapshot of the current state.
func (g *Graph) Read() Reader {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cur
}

// Write opens a named write transaction, waiting for any other writer to
// finish. It must be closed with Commit or Rollback.
func (g *Graph) Write(name string) *WriteTx {
	g.wmu.Lock()
	g.mu.RLock()
	st := g.cur.clone()
	g.mu.RUnlock()
	return &WriteTx{state: st, g: g, name: name}
}

// AddListener registers a change listener and returns a function removing it.
func (g *Graph) AddListener(l Listener) (remove func()) {
	g.lmu.Lock()
	id := g.nextL
	g.nextL++
	g.listeners[id] = l
	g.lmu.Unlock()
	return func() {
		g.lmu.Lock()
		delete(g.listeners, id)
		g.lmu.Unlock()
	}
}

func (g *Graph) notify(ev Event) {
	g.lmu.Lock()
	ls := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		ls = append(ls, l)
	}
	g.lmu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

// WriteTx is an open write transaction. It is not safe for concurrent use.
type WriteTx struct {
	*state
	g    *Graph
	name string
	done bool
}

// Name returns the transaction name.
func (tx *WriteTx) Name() string { return tx.name }

// Commit publishes the changes and notifies listeners.
func (tx *WriteTx) Commit() error {
	if tx.done {
		return ErrTxClosed
	}
	tx.done = true
	tx.state.modCount++
	ev := Event{Name: tx.name, ModCount: tx.state.modCount}
	tx.g.mu.Lock()
	tx.g.cur = tx.state
	tx.g.mu.Unlock()
	tx.g.wmu.Unlock()
	if clog.V(2) {
		clog.Infof("graph: committed %q (mod %d)", tx.name, ev.ModCount)
	}
	tx.g.notify(ev)
	return nil
}

// Rollback discards the changes. Calling it after Commit is a no-op.
func (tx *WriteTx) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	tx.g.wmu.Unlock()
}
