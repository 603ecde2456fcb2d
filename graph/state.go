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

package graph

import (
	"fmt"
	"strconv"
)

type edge struct {
	src, dst int
	directed bool
}

// state is one version of the graph. Published states are never modified.
type state struct {
	nextID   int
	vertices []int
	vpos     map[int]int
	txs      []int
	tpos     map[int]int
	edges    map[int]edge

	attrs  []Attribute
	byName [3]map[string]int
	values map[int]map[int]interface{}

	modCount int64
}

var _ Writer = (*state)(nil)

func newState() *state {
	s := &state{
		nextID: GraphID + 1,
		vpos:   make(map[int]int),
		tpos:   make(map[int]int),
		edges:  make(map[int]edge),
		values: make(map[int]map[int]interface{}),
	}
	for i := range s.byName {
		s.byName[i] = make(map[string]int)
	}
	return s
}

func (s *state) clone() *state {
	c := &state{
		nextID:   s.nextID,
		vertices: append([]int(nil), s.vertices...),
		vpos:     make(map[int]int, len(s.vpos)),
		txs:      append([]int(nil), s.txs...),
		tpos:     make(map[int]int, len(s.tpos)),
		edges:    make(map[int]edge, len(s.edges)),
		attrs:    append([]Attribute(nil), s.attrs...),
		values:   make(map[int]map[int]interface{}, len(s.values)),
		modCount: s.modCount,
	}
	for k, v := range s.vpos {
		c.vpos[k] = v
	}
	for k, v := range s.tpos {
		c.tpos[k] = v
	}
	for k, v := range s.edges {
		c.edges[k] = v
	}
	for i, m := range s.byName {
		c.byName[i] = make(map[string]int, len(m))
		for k, v := range m {
			c.byName[i][k] = v
		}
	}
	for a, m := range s.values {
		cm := make(map[int]interface{}, len(m))
		for e, v := range m {
			if cp, ok := v.(Copier); ok {
				v = cp.Copy()
			}
			cm[e] = v
		}
		c.values[a] = cm
	}
	return c
}

func (s *state) VertexCount() int          { return len(s.vertices) }
func (s *state) VertexAt(pos int) int      { return s.vertices[pos] }
func (s *state) TransactionCount() int     { return len(s.txs) }
func (s *state) TransactionAt(pos int) int { return s.txs[pos] }
func (s *state) ModCount() int64           { return s.modCount }

func (s *state) TransactionSource(tx int) int {
	if e, ok := s.edges[tx]; ok {
		return e.src
	}
	return NotFound
}

func (s *state) TransactionDestination(tx int) int {
	if e, ok := s.edges[tx]; ok {
		return e.dst
	}
	return NotFound
}

func (s *state) TransactionDirected(tx int) bool {
	return s.edges[tx].directed
}

func (s *state) AttributeCount(et ElementType) int {
	if int(et) < 0 || int(et) >= len(s.byName) {
		return 0
	}
	return len(s.byName[et])
}

func (s *state) AttributeAt(et ElementType, pos int) int {
	n := 0
	for _, a := range s.attrs {
		if a.Element != et {
			continue
		}
		if n == pos {
			return a.ID
		}
		n++
	}
	return NotFound
}

func (s *state) Attribute(id int) (Attribute, bool) {
	if id < 0 || id >= len(s.attrs) {
		return Attribute{}, false
	}
	return s.attrs[id], true
}

func (s *state) AttributeID(et ElementType, name string) int {
	if int(et) < 0 || int(et) >= len(s.byName) {
		return NotFound
	}
	if id, ok := s.byName[et][name]; ok {
		return id
	}
	return NotFound
}

func (s *state) ObjectValue(attr, elem int) interface{} {
	return s.values[attr][elem]
}

func (s *state) StringValue(attr, elem int) string {
	switch v := s.ObjectValue(attr, elem).(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (s *state) AddVertex() int {
	id := s.nextID
	s.nextID++
	s.vpos[id] = len(s.vertices)
	s.vertices = append(s.vertices, id)
	return id
}

func (s *state) RemoveVertex(v int) error {
	pos, ok := s.vpos[v]
	if !ok {
		return fmt.Errorf("vertex %d: %w", v, ErrNoSuchElem)
	}
	var keep []int
	for _, tx := range s.txs {
		e := s.edges[tx]
		if e.src == v || e.dst == v {
			delete(s.edges, tx)
			s.clearValues(tx)
			continue
		}
		keep = append(keep, tx)
	}
	s.txs = keep
	s.tpos = make(map[int]int, len(keep))
	for i, tx := range keep {
		s.tpos[tx] = i
	}
	s.vertices = append(s.vertices[:pos], s.vertices[pos+1:]...)
	delete(s.vpos, v)
	for i := pos; i < len(s.vertices); i++ {
		s.vpos[s.vertices[i]] = i
	}
	s.clearValues(v)
	return nil
}

func (s *state) clearValues(elem int) {
	for _, m := range s.values {
		delete(m, elem)
	}
}

func (s *state) AddTransaction(src, dst int, directed bool) (int, error) {
	if _, ok := s.vpos[src]; !ok {
		return NotFound, fmt.Errorf("source %d: %w", src, ErrBadEndpoint)
	}
	if _, ok := s.vpos[dst]; !ok {
		return NotFound, fmt.Errorf("destination %d: %w", dst, ErrBadEndpoint)
	}
	id := s.nextID
	s.nextID++
	s.tpos[id] = len(s.txs)
	s.txs = append(s.txs, id)
	s.edges[id] = edge{src: src, dst: dst, directed: directed}
	return id, nil
}

func (s *state) AddAttribute(et ElementType, typ, name, description string) (int, error) {
	if int(et) < 0 || int(et) >= len(s.byName) {
		return NotFound, fmt.Errorf("element type %v: %w", et, ErrNoSuchElem)
	}
	if _, ok := s.byName[et][name]; ok {
		return NotFound, fmt.Errorf("%v attribute %q: %w", et, name, ErrAttrExists)
	}
	id := len(s.attrs)
	s.attrs = append(s.attrs, Attribute{
		ID: id, Element: et, Type: typ, Name: name, Description: description,
	})
	s.byName[et][name] = id
	return id, nil
}

func (s *state) EnsureAttribute(et ElementType, typ, name, description string) int {
	if id := s.AttributeID(et, name); id != NotFound {
		return id
	}
	id, err := s.AddAttribute(et, typ, name, description)
	if err != nil {
		return NotFound
	}
	return id
}

func (s *state) exists(et ElementType, elem int) bool {
	switch et {
	case GraphElement:
		return elem == GraphID
	case VertexElement:
		_, ok := s.vpos[elem]
		return ok
	case TransactionElement:
		_, ok := s.tpos[elem]
		return ok
	}
	return false
}

func (s *state) SetObjectValue(attr, elem int, v interface{}) error {
	a, ok := s.Attribute(attr)
	if !ok {
		return fmt.Errorf("attribute %d: %w", attr, ErrNoSuchAttr)
	}
	if !s.exists(a.Element, elem) {
		return fmt.Errorf("%v %d: %w", a.Element, elem, ErrNoSuchElem)
	}
	m, ok := s.values[attr]
	if !ok {
		m = make(map[int]interface{})
		s.values[attr] = m
	}
	if v == nil {
		delete(m, elem)
	} else {
		m[elem] = v
	}
	return nil
}

func (s *state) SetStringValue(attr, elem int, v string) error {
	a, ok := s.Attribute(attr)
	if !ok {
		return fmt.Errorf("attribute %d: %w", attr, ErrNoSuchAttr)
	}
	var val interface{} = v
	switch a.Type {
	case IntegerType:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		val = n
	case BooleanType:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		val = b
	}
	if v == "" {
		val = nil
	}
	return s.SetObjectValue(attr, elem, val)
}
