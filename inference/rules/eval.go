package rules

import (
	"context"
	"fmt"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// Binding maps variable names to values.
type Binding map[string]quad.Value

func (b Binding) clone() Binding {
	c := make(Binding, len(b)+3)
	for k, v := range b {
		c[k] = v
	}
	return c
}

func (b Binding) resolve(t Term) quad.Value {
	if t.IsVar() {
		return b[t.Var]
	}
	return t.Value
}

// bind extends b with the value of t, failing on a conflicting binding.
func (b Binding) bind(t Term, v quad.Value) bool {
	if !t.IsVar() {
		return true
	}
	if cur, ok := b[t.Var]; ok {
		return triple.TermKey(cur) == triple.TermKey(v)
	}
	b[t.Var] = v
	return true
}

// Solve returns the solutions of the WHERE clause over m.
func (q *Query) Solve(ctx context.Context, m *sail.Model) ([]Binding, error) {
	return q.Where.solve(ctx, m, []Binding{{}})
}

func (g *Group) solve(ctx context.Context, m *sail.Model, in []Binding) ([]Binding, error) {
	cur := in
	for _, p := range g.Patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur = p.join(m, cur)
		if len(cur) == 0 {
			return nil, nil
		}
	}
	for _, alts := range g.Unions {
		var next []Binding
		for _, alt := range alts {
			res, err := alt.solve(ctx, m, cur)
			if err != nil {
				return nil, err
			}
			next = append(next, res...)
		}
		cur = next
		if len(cur) == 0 {
			return nil, nil
		}
	}
	if len(g.Filters) == 0 {
		return cur, nil
	}
	out := cur[:0:0]
	for _, b := range cur {
		if g.accept(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (g *Group) accept(b Binding) bool {
	for _, f := range g.Filters {
		l, r := b.resolve(f.Left), b.resolve(f.Right)
		if l == nil || r == nil {
			return false
		}
		if (triple.TermKey(l) == triple.TermKey(r)) == f.Negate {
			return false
		}
	}
	return true
}

func (p Pattern) join(m *sail.Model, in []Binding) []Binding {
	var out []Binding
	for _, b := range in {
		s, pr, o := b.resolve(p.Subject), b.resolve(p.Predicate), b.resolve(p.Object)
		if pr != nil {
			if _, ok := pr.(quad.IRI); !ok {
				continue
			}
		}
		for _, st := range m.Match(s, pr, o) {
			nb := b.clone()
			if nb.bind(p.Subject, st.Subject()) &&
				nb.bind(p.Predicate, st.Predicate()) &&
				nb.bind(p.Object, st.Object()) {
				out = append(out, nb)
			}
		}
	}
	return out
}

// Construct instantiates the template once per solution. Duplicates are
// kept. Template blank nodes get fresh labels per solution, and template
// triples with unbound variables or invalid terms are skipped.
func (q *Query) Construct(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	sols, err := q.Solve(ctx, m)
	if err != nil {
		return nil, err
	}
	var out []triple.Statement
	for i, b := range sols {
		bnodes := make(map[quad.BNode]quad.BNode)
		value := func(t Term) quad.Value {
			v := b.resolve(t)
			if bn, ok := v.(quad.BNode); ok && !t.IsVar() {
				nb, ok := bnodes[bn]
				if !ok {
					nb = quad.BNode(fmt.Sprintf("%s_%d", bn, i))
					bnodes[bn] = nb
				}
				return nb
			}
			return v
		}
		for _, p := range q.Template {
			s, pr, o := value(p.Subject), value(p.Predicate), value(p.Object)
			if s == nil || pr == nil || o == nil {
				continue
			}
			st, err := triple.New(s, pr, o, nil)
			if err != nil {
				continue
			}
			out = append(out, st)
		}
	}
	return out, nil
}
