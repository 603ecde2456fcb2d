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

// Package bridge maps a property graph to RDF statements and back.
//
// A vertex becomes the subject of its rdf:type statements (one per entry of
// RDF_types) and of one literal statement per value of every attribute
// whose name is an IRI. A transaction becomes one statement whose predicate
// is the transaction's rdf_identifier. Statements involving blank nodes are
// never turned into vertices or transactions; they live in a set stored as
// a graph attribute.
//
// Multiple literal values of one predicate are stored as a single comma
// separated attribute value. A literal that itself contains a comma cannot
// be told apart from two values and is split on export.
package bridge

import (
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

// LocalNS is the namespace of vertices whose identifier is not an IRI.
const LocalNS = "http://consty.local#/"

// Separator joins multiple literal or type values in one attribute.
const Separator = ","

// ResourceIRI returns the IRI for an rdf_identifier value, placing
// identifiers that are not IRIs in LocalNS.
func ResourceIRI(id string) quad.IRI {
	id = strings.TrimSpace(id)
	if triple.IsIRI(id) {
		return quad.IRI(id)
	}
	return quad.IRI(LocalNS + id)
}

type exporter struct {
	r     graph.Reader
	m     *sail.Model
	rdfID int
	ident int
}

// ExportModel builds a model holding every statement the graph encodes,
// including its blank node set.
func ExportModel(r graph.Reader) *sail.Model {
	e := &exporter{
		r:     r,
		m:     sail.NewModel(),
		rdfID: graph.VertexRDFIdentifier.Get(r),
		ident: graph.VertexIdentifier.Get(r),
	}
	for i := 0; i < r.VertexCount(); i++ {
		e.vertex(r.VertexAt(i))
	}
	for i := 0; i < r.TransactionCount(); i++ {
		e.transaction(r.TransactionAt(i))
	}
	n := e.m.AddAll(BlankNodes(r).Statements())
	exportedStatements.Add(float64(e.m.Len()))
	if clog.V(2) {
		clog.Infof("bridge: exported %d statements (%d blank) from %d vertices, %d transactions",
			e.m.Len(), n, r.VertexCount(), r.TransactionCount())
	}
	return e.m
}

func (e *exporter) subject(v int) quad.IRI {
	id := e.r.StringValue(e.rdfID, v)
	if id == "" {
		id = e.r.StringValue(e.ident, v)
	}
	if id == "" {
		id = strconv.Itoa(v)
	}
	return ResourceIRI(id)
}

func (e *exporter) add(s, p, o quad.Value) {
	st, err := triple.New(s, p, o, nil)
	if err != nil {
		clog.Warningf("bridge: skipping statement: %v", err)
		return
	}
	e.m.Add(st)
}

func (e *exporter) vertex(v int) {
	subj := e.subject(v)
	for i := 0; i < e.r.AttributeCount(graph.VertexElement); i++ {
		attr := e.r.AttributeAt(graph.VertexElement, i)
		a, ok := e.r.Attribute(attr)
		if !ok || !triple.IsIRI(a.Name) {
			continue
		}
		val := e.r.StringValue(attr, v)
		if val == "" {
			continue
		}
		for _, part := range strings.Split(val, Separator) {
			if part == "" {
				continue
			}
			e.add(subj, quad.IRI(a.Name), quad.String(part))
		}
	}
	types := e.r.StringValue(graph.VertexRDFTypes.Get(e.r), v)
	for _, typ := range strings.Split(types, Separator) {
		if typ = strings.TrimSpace(typ); typ != "" {
			e.add(subj, voc.RDFType, ResourceIRI(typ))
		}
	}
}

func (e *exporter) transaction(tx int) {
	pred := strings.TrimSpace(e.r.StringValue(graph.TransactionRDFIdentifier.Get(e.r), tx))
	if pred == "" {
		clog.Warningf("bridge: transaction %d has no rdf_identifier, skipping", tx)
		return
	}
	src, dst := e.r.TransactionSource(tx), e.r.TransactionDestination(tx)
	e.add(e.subject(src), ResourceIRI(pred), e.subject(dst))
}
