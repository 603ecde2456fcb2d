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

// Package triple defines the statement model shared by the store, the graph
// bridge and the inference pipelines.
//
// A Statement is a (subject, predicate, object, context) fact built from
// quad values. Subjects and contexts are resources (IRI or blank node),
// predicates are IRIs, objects are resources or literals.
package triple

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
)

var (
	ErrInvalidSubject   = errors.New("subject must be an IRI or a blank node")
	ErrInvalidPredicate = errors.New("predicate must be a valid IRI")
	ErrInvalidObject    = errors.New("object must be set")
	ErrInvalidContext   = errors.New("context must be an IRI or a blank node")
)

// ValueError reports a statement term rejected at construction.
type ValueError struct {
	Dir   quad.Direction
	Value quad.Value
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %v %v: %v", e.Dir, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// Flags records how the terms of a statement were classified at construction.
type Flags uint8

const (
	BlankSubject Flags = 1 << iota
	BlankObject
	LiteralObject
	UnknownObject
)

// Statement is an immutable RDF statement. The zero value is not valid;
// use New or FromQuad.
//
// Statements are comparable, but two statements whose literal objects differ
// only in datatype or language are equal by Key, not by ==.
type Statement struct {
	subject   quad.Value
	predicate quad.IRI
	object    quad.Value
	context   quad.Value
	flags     Flags
}

// New validates and classifies a statement. Context may be nil.
func New(s, p, o, c quad.Value) (Statement, error) {
	var st Statement
	switch KindOf(s) {
	case IRI:
		st.subject = s
	case Blank:
		st.subject = s
		st.flags |= BlankSubject
	default:
		return Statement{}, &ValueError{Dir: quad.Subject, Value: s, Err: ErrInvalidSubject}
	}
	iri, ok := p.(quad.IRI)
	if !ok || !IsIRI(string(iri)) {
		return Statement{}, &ValueError{Dir: quad.Predicate, Value: p, Err: ErrInvalidPredicate}
	}
	st.predicate = iri
	switch KindOf(o) {
	case IRI:
	case Blank:
		st.flags |= BlankObject
	case Literal:
		st.flags |= LiteralObject
	default:
		if o == nil {
			return Statement{}, &ValueError{Dir: quad.Object, Value: o, Err: ErrInvalidObject}
		}
		st.flags |= UnknownObject
	}
	st.object = o
	if c != nil {
		switch KindOf(c) {
		case IRI, Blank:
			st.context = c
		default:
			return Statement{}, &ValueError{Dir: quad.Label, Value: c, Err: ErrInvalidContext}
		}
	}
	return st, nil
}

// Must is like New but panics on invalid input.
func Must(s, p, o, c quad.Value) Statement {
	st, err := New(s, p, o, c)
	if err != nil {
		panic(err)
	}
	return st
}

// FromQuad converts a quad into a statement.
func FromQuad(q quad.Quad) (Statement, error) {
	return New(q.Subject, q.Predicate, q.Object, q.Label)
}

// Quad returns the statement as a quad.
func (s Statement) Quad() quad.Quad {
	return quad.Quad{Subject: s.subject, Predicate: s.predicate, Object: s.object, Label: s.context}
}

func (s Statement) Subject() quad.Value { return s.subject }
func (s Statement) Predicate() quad.IRI { return s.predicate }
func (s Statement) Object() quad.Value  { return s.object }
func (s Statement) Context() quad.Value { return s.context }
func (s Statement) Flags() Flags        { return s.flags }
func (s Statement) BlankSubject() bool  { return s.flags&BlankSubject != 0 }
func (s Statement) BlankObject() bool   { return s.flags&BlankObject != 0 }
func (s Statement) LiteralObject() bool { return s.flags&LiteralObject != 0 }
func (s Statement) UnknownObject() bool { return s.flags&UnknownObject != 0 }
func (s Statement) HasBlankNode() bool  { return s.flags&(BlankSubject|BlankObject) != 0 }
func (s Statement) IsValid() bool       { return s.subject != nil && s.predicate != "" }
func (s Statement) ObjectKind() Kind    { return KindOf(s.object) }

// WithContext returns a copy of the statement in another context.
func (s Statement) WithContext(c quad.Value) (Statement, error) {
	return New(s.subject, s.predicate, s.object, c)
}

// Key is the identity of a statement used for set membership.
type Key string

// Key returns the identity of the statement. IRIs compare by exact string,
// blank nodes by label and literals by their normalized lexical form.
func (s Statement) Key() Key {
	var b strings.Builder
	writeKey(&b, s.subject)
	b.WriteByte(0)
	writeKey(&b, s.predicate)
	b.WriteByte(0)
	writeKey(&b, s.object)
	b.WriteByte(0)
	if s.context != nil {
		writeKey(&b, s.context)
	}
	return Key(b.String())
}

// TermKey returns the identity of a single term, as used inside Statement.Key.
func TermKey(v quad.Value) string {
	var b strings.Builder
	writeKey(&b, v)
	return b.String()
}

func writeKey(b *strings.Builder, v quad.Value) {
	switch KindOf(v) {
	case IRI:
		b.WriteByte('<')
		b.WriteString(string(v.(quad.IRI)))
	case Blank:
		b.WriteString("_:")
		b.WriteString(string(v.(quad.BNode)))
	case Literal:
		b.WriteByte('"')
		b.WriteString(LexicalForm(v))
	default:
		if v != nil {
			b.WriteByte('?')
			b.WriteString(v.String())
		}
	}
}

// Equal reports whether two statements have the same Key.
func (s Statement) Equal(o Statement) bool {
	return s.Key() == o.Key()
}

// String returns the statement in N-Quads form.
func (s Statement) String() string {
	return s.Quad().NQuad()
}

// Sort orders statements by their N-Quads form.
func Sort(stmts []Statement) {
	sort.Slice(stmts, func(i, j int) bool {
		return stmts[i].String() < stmts[j].String()
	})
}

// Unique drops statements with a Key seen earlier in the slice, keeping order.
func Unique(stmts []Statement) []Statement {
	seen := make(map[Key]struct{}, len(stmts))
	out := stmts[:0:0]
	for _, st := range stmts {
		k := st.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, st)
	}
	return out
}

// Quads converts statements into quads.
func Quads(stmts []Statement) []quad.Quad {
	out := make([]quad.Quad, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, st.Quad())
	}
	return out
}
