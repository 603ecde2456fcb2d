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

package triple

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// Kind is the concrete kind of a statement term.
type Kind int

const (
	Unknown Kind = iota
	IRI
	Blank
	Literal
)

func (k Kind) String() string {
	switch k {
	case IRI:
		return "iri"
	case Blank:
		return "blank"
	case Literal:
		return "literal"
	}
	return "unknown"
}

// KindOf classifies a quad value.
func KindOf(v quad.Value) Kind {
	switch v.(type) {
	case quad.IRI:
		return IRI
	case quad.BNode:
		return Blank
	case quad.String, quad.TypedString, quad.LangString,
		quad.Int, quad.Float, quad.Bool, quad.Time:
		return Literal
	}
	return Unknown
}

var (
	schemeRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:.`)
	badIRIRune = regexp.MustCompile("[\x00-\x20<>\"{}|\\\\^`]")
)

// IsIRI reports whether s is an absolute IRI: it has a scheme, a non-empty
// remainder and none of the characters N-Triples forbids inside an IRI.
func IsIRI(s string) bool {
	return schemeRe.MatchString(s) && !badIRIRune.MatchString(s)
}

// LexicalForm returns the plain string form of a value, without quotes,
// datatype or language tag.
func LexicalForm(v quad.Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case quad.String:
		return string(v)
	case quad.TypedString:
		return string(v.Value)
	case quad.LangString:
		return string(v.Value)
	case quad.IRI:
		return string(v)
	case quad.BNode:
		return string(v)
	case quad.Int:
		return strconv.FormatInt(int64(v), 10)
	case quad.Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case quad.Bool:
		return strconv.FormatBool(bool(v))
	case quad.Time:
		return time.Time(v).UTC().Format(time.RFC3339Nano)
	}
	return v.String()
}

// NormalizeIRI returns the key used to match a resource with a graph vertex.
func NormalizeIRI(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LocalName returns the part of an IRI after the last '#', '/' or ':'.
// IRIs with no such separator, or ending with one, are returned unchanged.
func LocalName(iri string) string {
	i := strings.LastIndexAny(iri, "#/:")
	if i < 0 || i == len(iri)-1 {
		return iri
	}
	return iri[i+1:]
}

const termProbe = "<urn:rdfsail:s> <urn:rdfsail:p> %s ."

// ParseTerm parses a single term in N-Quads syntax, such as <http://a>, _:b1
// or "x"^^<http://www.w3.org/2001/XMLSchema#string>.
func ParseTerm(s string) (quad.Value, error) {
	q, err := nquads.Parse(fmt.Sprintf(termProbe, strings.TrimSpace(s)))
	if err != nil {
		return nil, fmt.Errorf("cannot parse term %q: %w", s, err)
	}
	return q.Object, nil
}

// FormatTerm returns the N-Quads form of a term.
func FormatTerm(v quad.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
