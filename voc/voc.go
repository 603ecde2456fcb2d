// Package voc implements RDF namespace (vocabulary) bindings.
//
// A Namespaces value holds prefix bindings for one model. The package level
// functions operate on a shared registry seeded with the well-known
// vocabularies used across rdfsail.
package voc

import (
	"sort"
	"strings"
	"sync"

	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/cayleygraph/quad/voc/xsd"
)

// Namespace is a single prefix binding. Prefix never carries the trailing colon.
type Namespace struct {
	Prefix string `json:"prefix"`
	IRI    string `json:"iri"`
}

// Namespaces is a set of prefix bindings safe for concurrent use.
// The zero value is ready to use.
type Namespaces struct {
	mu       sync.RWMutex
	prefixes map[string]string
}

func trimPrefix(pref string) string {
	return strings.TrimSuffix(pref, ":")
}

// Register associates a given prefix with a base vocabulary IRI.
// A prefix may be given with or without the trailing colon.
func (n *Namespaces) Register(pref string, ns string) {
	n.mu.Lock()
	if n.prefixes == nil {
		n.prefixes = make(map[string]string)
	}
	n.prefixes[trimPrefix(pref)] = ns
	n.mu.Unlock()
}

// Remove drops the binding for a prefix. Removing a missing prefix is a no-op.
func (n *Namespaces) Remove(pref string) {
	n.mu.Lock()
	delete(n.prefixes, trimPrefix(pref))
	n.mu.Unlock()
}

// Clear drops all bindings.
func (n *Namespaces) Clear() {
	n.mu.Lock()
	n.prefixes = nil
	n.mu.Unlock()
}

// Lookup returns the namespace IRI bound to a prefix.
func (n *Namespaces) Lookup(pref string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ns, ok := n.prefixes[trimPrefix(pref)]
	return ns, ok
}

// Len returns the number of bindings.
func (n *Namespaces) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.prefixes)
}

// ShortIRI replaces the longest matching namespace IRI with its prefix.
//
//	ShortIRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type") // returns "rdf:type"
func (n *Namespaces) ShortIRI(iri string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	best, bestNS := "", ""
	for pref, ns := range n.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = pref, ns
		}
	}
	if bestNS == "" {
		return iri
	}
	return best + ":" + iri[len(bestNS):]
}

// FullIRI replaces a known prefix in IRI with its full vocabulary IRI.
//
//	FullIRI("rdf:type") // returns "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
func (n *Namespaces) FullIRI(iri string) string {
	i := strings.Index(iri, ":")
	if i < 0 {
		return iri
	}
	if ns, ok := n.Lookup(iri[:i]); ok {
		return ns + iri[i+1:]
	}
	return iri
}

// List enumerates all bindings sorted by prefix.
func (n *Namespaces) List() []Namespace {
	n.mu.RLock()
	out := make([]Namespace, 0, len(n.prefixes))
	for pref, ns := range n.prefixes {
		out = append(out, Namespace{Prefix: pref, IRI: ns})
	}
	n.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// CloneTo copies all bindings into dst.
func (n *Namespaces) CloneTo(dst *Namespaces) {
	for _, ns := range n.List() {
		dst.Register(ns.Prefix, ns.IRI)
	}
}

var global Namespaces

func init() {
	RegisterPrefix(rdf.Prefix, rdf.NS)
	RegisterPrefix(rdfs.Prefix, rdfs.NS)
	RegisterPrefix(xsd.Prefix, xsd.NS)
}

// RegisterPrefix associates a given prefix with a base vocabulary IRI in the shared registry.
func RegisterPrefix(pref string, ns string) { global.Register(pref, ns) }

// ShortIRI shortens an IRI using the shared registry.
func ShortIRI(iri string) string { return global.ShortIRI(iri) }

// FullIRI expands a prefixed IRI using the shared registry.
func FullIRI(iri string) string { return global.FullIRI(iri) }

// List enumerates the shared registry.
func List() []Namespace { return global.List() }

// Default copies the shared registry into a fresh set of bindings.
func Default() *Namespaces {
	n := &Namespaces{}
	global.CloneTo(n)
	return n
}
