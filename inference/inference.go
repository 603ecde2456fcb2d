// Package inference derives new statements from a model.
//
// RDFS entailment rules:
//
//	1.  (x p y) -> (p rdf:type rdf:Property)
//	2.  (p rdfs:domain c), (x p y) -> (x rdf:type c)
//	3.  (p rdfs:range c), (x p y) -> (y rdf:type c)
//	4a. (x p y) -> (x rdf:type rdfs:Resource)
//	4b. (x p y) -> (y rdf:type rdfs:Resource)
//	5.  (p rdfs:subPropertyOf q), (q rdfs:subPropertyOf r) -> (p rdfs:subPropertyOf r)
//	6.  (p rdf:type rdf:Property) -> (p rdfs:subPropertyOf p)
//	7.  (p rdfs:subPropertyOf q), (x p y) -> (x q y)
//	8.  (c rdf:type rdfs:Class) -> (c rdfs:subClassOf rdfs:Resource)
//	9.  (c rdfs:subClassOf d), (x rdf:type c) -> (x rdf:type d)
//	10. (c rdf:type rdfs:Class) -> (c rdfs:subClassOf c)
//	11. (c rdfs:subClassOf d), (d rdfs:subClassOf e) -> (c rdfs:subClassOf e)
//	12. (p rdf:type rdfs:ContainerMembershipProperty) -> (p rdfs:subPropertyOf rdfs:member)
//	13. (x rdf:type rdfs:Datatype) -> (x rdfs:subClassOf rdfs:Literal)
//
// Literals never become subjects, so rules 3 and 4b skip literal objects.
package inference

import (
	"context"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// Inferencer derives statements from a model. Only statements that are not
// already in the model are returned.
type Inferencer interface {
	Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error)
}

// Func adapts a function to the Inferencer interface.
type Func func(ctx context.Context, m *sail.Model) ([]triple.Statement, error)

func (f Func) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	return f(ctx, m)
}

// NewRDFSChain returns the standard RDFS pipeline: schema caching RDFS,
// then the direct type hierarchy, then de-duplication.
func NewRDFSChain() Inferencer {
	return NewDeduping(NewDirectTypeHierarchy(NewSchemaCachingRDFS()))
}

// collector gathers statements not present in a base model, once each.
type collector struct {
	base *sail.Model
	seen map[triple.Key]struct{}
	out  []triple.Statement
}

func newCollector(base *sail.Model) *collector {
	return &collector{base: base, seen: make(map[triple.Key]struct{})}
}

func (c *collector) add(s, p, o quad.Value) {
	st, err := triple.New(s, p, o, nil)
	if err != nil {
		return
	}
	if c.base.Contains(st) {
		return
	}
	k := st.Key()
	if _, ok := c.seen[k]; ok {
		return
	}
	c.seen[k] = struct{}{}
	c.out = append(c.out, st)
}
