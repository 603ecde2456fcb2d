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

package sail

import (
	"sort"
	"sync"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

type entry struct {
	st  triple.Statement
	seq uint64
}

var directions = [...]quad.Direction{quad.Subject, quad.Predicate, quad.Object, quad.Label}

type directionIndex map[string]map[triple.Key]*entry

func (di directionIndex) add(term string, e *entry, k triple.Key) {
	m, ok := di[term]
	if !ok {
		m = make(map[triple.Key]*entry)
		di[term] = m
	}
	m[k] = e
}

func (di directionIndex) remove(term string, k triple.Key) {
	if m, ok := di[term]; ok {
		delete(m, k)
		if len(m) == 0 {
			delete(di, term)
		}
	}
}

// Model is an in-memory set of statements plus namespace bindings.
//
// All methods are safe for concurrent use: readers share a read lock and
// every mutation holds the write lock for its whole duration, so there is
// a single writer at any time. Statements are returned in insertion order.
type Model struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[triple.Key]*entry
	index   [len(directions)]directionIndex
	ns      *voc.Namespaces
}

// NewModel creates a model holding the given statements and the default
// namespace bindings.
func NewModel(stmts ...triple.Statement) *Model {
	m := newModel(voc.Default())
	for _, st := range stmts {
		m.add(st)
	}
	return m
}

func newModel(ns *voc.Namespaces) *Model {
	m := &Model{
		entries: make(map[triple.Key]*entry),
		ns:      ns,
	}
	for i := range m.index {
		m.index[i] = make(directionIndex)
	}
	return m
}

func terms(st triple.Statement) [len(directions)]string {
	q := st.Quad()
	var out [len(directions)]string
	for i, d := range directions {
		if v := q.Get(d); v != nil {
			out[i] = triple.TermKey(v)
		}
	}
	return out
}

func (m *Model) add(st triple.Statement) bool {
	k := st.Key()
	if _, ok := m.entries[k]; ok {
		return false
	}
	m.seq++
	e := &entry{st: st, seq: m.seq}
	m.entries[k] = e
	for i, t := range terms(st) {
		if t != "" {
			m.index[i].add(t, e, k)
		}
	}
	return true
}

func (m *Model) remove(st triple.Statement) bool {
	k := st.Key()
	e, ok := m.entries[k]
	if !ok {
		return false
	}
	delete(m.entries, k)
	for i, t := range terms(e.st) {
		if t != "" {
			m.index[i].remove(t, k)
		}
	}
	return true
}

// Add inserts a statement. It returns false if the statement was already present.
func (m *Model) Add(st triple.Statement) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(st)
}

// AddAll inserts statements and returns how many were new.
func (m *Model) AddAll(stmts []triple.Statement) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, st := range stmts {
		if m.add(st) {
			n++
		}
	}
	return n
}

// Remove deletes a statement. It returns false if the statement was not present.
func (m *Model) Remove(st triple.Statement) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(st)
}

// Contains reports whether the statement is in the model.
func (m *Model) Contains(st triple.Statement) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[st.Key()]
	return ok
}

// Len returns the number of statements.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Statements returns a snapshot of all statements.
func (m *Model) Statements() []triple.Statement {
	return m.Match(nil, nil, nil)
}

// Match returns a snapshot of the statements matching a pattern. A nil term
// matches anything. With no contexts, statements from every context match;
// otherwise the statement context must equal one of ctxs, where a nil entry
// stands for the default (unnamed) context.
func (m *Model) Match(s, p, o quad.Value, ctxs ...quad.Value) []triple.Statement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.match(s, p, o, ctxs)
}

func (m *Model) match(s, p, o quad.Value, ctxs []quad.Value) []triple.Statement {
	want := [len(directions)]string{}
	bound := false
	for i, v := range []quad.Value{s, p, o} {
		if v != nil {
			want[i] = triple.TermKey(v)
			bound = true
		}
	}
	if len(ctxs) == 1 && ctxs[0] != nil {
		want[3] = triple.TermKey(ctxs[0])
		bound = true
	}

	var candidates map[triple.Key]*entry
	if bound {
		// pick the narrowest index
		for i, t := range want {
			if t == "" {
				continue
			}
			c := m.index[i][t]
			if len(c) == 0 {
				return nil
			}
			if candidates == nil || len(c) < len(candidates) {
				candidates = c
			}
		}
	} else {
		candidates = m.entries
	}

	var ctxKeys map[string]bool
	if len(ctxs) > 0 {
		ctxKeys = make(map[string]bool, len(ctxs))
		for _, c := range ctxs {
			ctxKeys[triple.TermKey(c)] = true
		}
	}

	out := make([]*entry, 0, len(candidates))
	for _, e := range candidates {
		ts := terms(e.st)
		ok := true
		for i := 0; i < 3 && ok; i++ {
			if want[i] != "" && ts[i] != want[i] {
				ok = false
			}
		}
		if ok && ctxKeys != nil && !ctxKeys[ts[3]] {
			ok = false
		}
		if ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	res := make([]triple.Statement, len(out))
	for i, e := range out {
		res[i] = e.st
	}
	return res
}

// Clear removes every statement in the given contexts, or all statements
// when no context is given. It returns the number of removed statements.
func (m *Model) Clear(ctxs ...quad.Value) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(ctxs) == 0 {
		n := len(m.entries)
		m.entries = make(map[triple.Key]*entry)
		for i := range m.index {
			m.index[i] = make(directionIndex)
		}
		return n
	}
	n := 0
	for _, st := range m.match(nil, nil, nil, ctxs) {
		if m.remove(st) {
			n++
		}
	}
	return n
}

// Contexts returns the distinct named contexts in use, in first-use order.
func (m *Model) Contexts() []quad.Value {
	var out []quad.Value
	seen := make(map[string]bool)
	for _, st := range m.Statements() {
		c := st.Context()
		if c == nil {
			continue
		}
		k := triple.TermKey(c)
		if !seen[k] {
			seen[k] = true
			out = append(out, c)
		}
	}
	return out
}

// Clone returns an independent copy of the model, including its namespaces.
func (m *Model) Clone() *Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns := &voc.Namespaces{}
	m.ns.CloneTo(ns)
	c := newModel(ns)
	for _, st := range m.match(nil, nil, nil, nil) {
		c.add(st)
	}
	return c
}

// Namespaces returns the namespace bindings of the model.
func (m *Model) Namespaces() *voc.Namespaces {
	return m.ns
}
