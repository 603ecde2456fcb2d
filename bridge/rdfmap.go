package bridge

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/voc"
	"github.com/cayleygraph/rdfsail/voc/owl"
)

// RDFMap describes how an RDF source maps onto graph records: namespace
// prefixes to bind, predicates copied to extra record keys and RDF types
// resolved to vertex types.
//
//	name: countries
//	prefixes:
//	  foaf: http://xmlns.com/foaf/0.1/
//	predicates:
//	  foaf:name: source.Country
//	types:
//	  foaf:Person: Person
type RDFMap struct {
	Name       string            `yaml:"name"`
	Prefixes   map[string]string `yaml:"prefixes"`
	Predicates map[string]string `yaml:"predicates"`
	Types      map[string]string `yaml:"types"`

	expanded map[string]string
}

// DefaultRDFMap maps rdf:type to the vertex Type attribute.
func DefaultRDFMap() *RDFMap {
	m := &RDFMap{
		Name: "default",
		Prefixes: map[string]string{
			"owl":  owl.NS,
			"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
			"skos": "http://www.w3.org/2004/02/skos/core#",
		},
		Predicates: map[string]string{
			string(voc.RDFType): recordstore.Source + "Type",
		},
	}
	m.expand()
	return m
}

// LoadRDFMap reads a YAML map.
func LoadRDFMap(r io.Reader) (*RDFMap, error) {
	var m RDFMap
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("cannot decode rdf map: %w", err)
	}
	for _, key := range m.Predicates {
		if !strings.HasPrefix(key, recordstore.Source) && !strings.HasPrefix(key, recordstore.Destination) &&
			!strings.HasPrefix(key, recordstore.Transaction) {
			return nil, fmt.Errorf("rdf map %q: record key %q has no element prefix", m.Name, key)
		}
	}
	m.expand()
	return &m, nil
}

// OpenRDFMap reads a YAML map from a file.
func OpenRDFMap(path string) (*RDFMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadRDFMap(f)
}

func (m *RDFMap) namespaces() *voc.Namespaces {
	ns := voc.Default()
	for p, iri := range m.Prefixes {
		ns.Register(p, iri)
	}
	return ns
}

func (m *RDFMap) expand() {
	ns := m.namespaces()
	m.expanded = make(map[string]string, len(m.Predicates))
	for p, key := range m.Predicates {
		m.expanded[ns.FullIRI(p)] = key
	}
}

// Key returns the extra record key for a predicate IRI.
func (m *RDFMap) Key(predicate string) (string, bool) {
	if m == nil {
		return "", false
	}
	k, ok := m.expanded[predicate]
	return k, ok
}

// TypeMap returns the type resolutions with prefixed names expanded.
func (m *RDFMap) TypeMap() TypeMap {
	if m == nil {
		return nil
	}
	ns := m.namespaces()
	tm := make(TypeMap, len(m.Types))
	for iri, typ := range m.Types {
		tm[ns.FullIRI(iri)] = typ
	}
	return tm
}

// Bind registers the map's prefixes in ns.
func (m *RDFMap) Bind(ns *voc.Namespaces) {
	if m == nil {
		return
	}
	for p, iri := range m.Prefixes {
		ns.Register(p, iri)
	}
}

// Importer returns an importer applying the map.
func (m *RDFMap) Importer() *Importer {
	return &Importer{Types: m.TypeMap(), Map: m}
}
