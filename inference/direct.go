package inference

import (
	"context"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
	"github.com/cayleygraph/rdfsail/voc/sesame"
)

var (
	directType          = quad.IRI(sesame.DirectType)
	directSubClassOf    = quad.IRI(sesame.DirectSubClassOf)
	directSubPropertyOf = quad.IRI(sesame.DirectSubPropertyOf)
)

// DirectTypeHierarchy wraps an inferencer and adds the sesame direct type,
// direct sub class and direct sub property statements over its closure.
type DirectTypeHierarchy struct {
	Inner Inferencer
}

func NewDirectTypeHierarchy(inner Inferencer) *DirectTypeHierarchy {
	return &DirectTypeHierarchy{Inner: inner}
}

func (d *DirectTypeHierarchy) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	var out []triple.Statement
	if d.Inner != nil {
		var err error
		out, err = d.Inner.Infer(ctx, m)
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := m.Clone()
	full.AddAll(out)
	schema := SchemaOf(full.Statements())
	c := newCollector(full)

	for _, cl := range schema.Classes() {
		for _, sup := range directSupers(cl.Name(), schema.SuperClasses) {
			c.add(cl.Name(), directSubClassOf, sup)
		}
	}
	for _, p := range schema.Properties() {
		for _, sup := range directSupers(p.Name(), schema.SuperProperties) {
			c.add(p.Name(), directSubPropertyOf, sup)
		}
	}

	types := make(map[string][]quad.Value)
	var subjects []quad.Value
	for _, st := range full.Match(nil, voc.RDFType, nil) {
		if st.LiteralObject() {
			continue
		}
		k := triple.TermKey(st.Subject())
		if _, ok := types[k]; !ok {
			subjects = append(subjects, st.Subject())
		}
		types[k] = append(types[k], st.Object())
	}
	for _, x := range subjects {
		ts := types[triple.TermKey(x)]
		for _, t := range ts {
			if isDirect(t, ts, schema.SuperClasses) {
				c.add(x, directType, t)
			}
		}
	}
	inferred.WithLabelValues("direct").Add(float64(len(c.out)))
	return append(out, c.out...), nil
}

func contains(vals []quad.Value, v quad.Value) bool {
	for _, w := range vals {
		if w == v {
			return true
		}
	}
	return false
}

// strictlyBelow reports whether a is below b and not equivalent to it.
func strictlyBelow(a, b quad.Value, supers func(quad.Value) []quad.Value) bool {
	return a != b && contains(supers(a), b) && !contains(supers(b), a)
}

// directSupers returns the super nodes of n that have no other super node
// of n strictly between them and n.
func directSupers(n quad.Value, supers func(quad.Value) []quad.Value) []quad.Value {
	all := supers(n)
	var out []quad.Value
	for _, s := range all {
		if !strictlyBelow(n, s, supers) {
			continue
		}
		direct := true
		for _, mid := range all {
			if mid != s && strictlyBelow(n, mid, supers) && strictlyBelow(mid, s, supers) {
				direct = false
				break
			}
		}
		if direct {
			out = append(out, s)
		}
	}
	return out
}

// isDirect reports whether t is a most specific type among ts.
func isDirect(t quad.Value, ts []quad.Value, supers func(quad.Value) []quad.Value) bool {
	for _, o := range ts {
		if o != t && strictlyBelow(o, t, supers) {
			return false
		}
	}
	return true
}
