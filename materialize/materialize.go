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

// Package materialize turns derived statements and remote query results
// into records and merges them onto a graph.
package materialize

import (
	"strconv"
	"strings"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/remote"
	"github.com/cayleygraph/rdfsail/triple"
)

// Layer masks of the elements added by each kind of producer.
const (
	InferenceLayer = 9
	RemoteRDFLayer = 5
	UtilLayer      = 3
)

const countProperty = "count"

// Materializer builds records with a fixed layer mask.
type Materializer struct {
	LayerMask int
	Types     bridge.TypeMap
	Map       *bridge.RDFMap
}

func New(layerMask int) *Materializer {
	return &Materializer{LayerMask: layerMask}
}

func (m *Materializer) importer() *bridge.Importer {
	im := &bridge.Importer{Types: m.Types, Map: m.Map}
	if m.Map != nil && im.Types == nil {
		im.Types = m.Map.TypeMap()
	}
	return im
}

// Statements classifies stmts into a new batch of records, literal values
// and blank nodes.
func (m *Materializer) Statements(stmts []triple.Statement) *bridge.Batch {
	b := m.importer().Import(stmts, m.LayerMask)
	materialized.WithLabelValues("statement").Add(float64(len(stmts)))
	if clog.V(2) {
		clog.Infof("materialize: %d statements, %d records, %d literals, %d blank",
			len(stmts), b.Records.Len(), b.Literals.Len(), b.BlankNodes.Len())
	}
	return b
}

func (m *Materializer) vertex(rs *recordstore.Store, prefix string, id interface{}) {
	s := remote.FormatValue(id)
	rs.Set(prefix+graph.VertexIdentifier.Name, s)
	rs.Set(prefix+graph.VertexLabel.Name, s)
	rs.Set(prefix+graph.VertexLayerMask.Name, strconv.Itoa(m.LayerMask))
}

func properties(rs *recordstore.Store, prefix string, el remote.Element) {
	for _, name := range el.PropertyNames() {
		if name == countProperty {
			continue
		}
		if v, ok := el.Property(name); ok {
			rs.Set(prefix+strings.ToUpper(name), v)
		}
	}
}

// Elements converts remote elements into records. Entities become vertex
// records with their properties upper-cased; edges become records linking
// their source and destination.
func (m *Materializer) Elements(els []remote.Element) *recordstore.Store {
	rs := recordstore.New()
	for _, el := range els {
		if el.IsEdge() {
			if el.Source == nil || el.Destination == nil {
				clog.Warningf("materialize: edge %q without endpoints, dropping", el.Group)
				continue
			}
			rs.Add()
			m.vertex(rs, recordstore.Source, el.Source)
			m.vertex(rs, recordstore.Destination, el.Destination)
			if d := el.DirectedType(); d != "" {
				rs.Set(recordstore.Transaction+recordstore.Directed, strings.ToLower(d))
			}
			if el.Group != "" {
				rs.Set(recordstore.Transaction+graph.TransactionIdentifier.Name, el.Group)
				rs.Set(recordstore.Transaction+graph.TransactionType.Name, el.Group)
			}
			rs.Set(recordstore.Transaction+graph.TransactionLayerMask.Name, strconv.Itoa(m.LayerMask))
			properties(rs, recordstore.Transaction, el)
			materialized.WithLabelValues("edge").Inc()
			continue
		}
		if el.Vertex == nil {
			clog.Warningf("materialize: entity %q without vertex, dropping", el.Group)
			continue
		}
		rs.Add()
		m.vertex(rs, recordstore.Source, el.Vertex)
		if c, ok := el.Property(countProperty); ok {
			rs.Set(recordstore.Source+graph.VertexOccurrences.Name, c)
		}
		properties(rs, recordstore.Source, el)
		materialized.WithLabelValues("entity").Inc()
	}
	return rs
}

// Apply merges a batch onto the graph.
func (m *Materializer) Apply(w graph.Writer, b *bridge.Batch) recordstore.Stats {
	return b.Apply(w)
}
