package owl

import (
	"context"
	"fmt"
	"os"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
	owlvoc "github.com/cayleygraph/rdfsail/voc/owl"
)

var (
	equivalentClass    = quad.IRI(owlvoc.EquivalentClass)
	equivalentProperty = quad.IRI(owlvoc.EquivalentProperty)
	inverseOf          = quad.IRI(owlvoc.InverseOf)
	datatypeProperty   = quad.IRI(owlvoc.DatatypeProperty)
	functional         = quad.IRI(owlvoc.FunctionalProperty)
	inverseFunctional  = quad.IRI(owlvoc.InverseFunctionalProperty)
	transitive         = quad.IRI(owlvoc.TransitiveProperty)
	symmetric          = quad.IRI(owlvoc.SymmetricProperty)
)

// DefaultRuleRounds bounds the fixpoint iteration of a RuleOracle.
const DefaultRuleRounds = 64

// RuleOracle is an in-process reasoner covering a subset of the OWL 2 RL
// rules, grouped by the axiom categories they produce.
type RuleOracle struct {
	MaxRounds int
}

func (o *RuleOracle) Reason(ctx context.Context, req Request) error {
	f := formatByName(req.Format)
	if f == nil || f.Reader == nil || f.Writer == nil {
		return fmt.Errorf("owl: unsupported document format %q", req.Format)
	}
	in, err := readDocument(req.Input, f)
	if err != nil {
		return err
	}
	m := sail.NewModel(in...)
	n, err := o.Closure(ctx, m, req.Categories)
	if err != nil {
		return err
	}
	if clog.V(2) {
		clog.Infof("owl: rule oracle derived %d statements", n)
	}
	if err := writeDocument(req.Output, f, m.Statements()); err != nil {
		os.Remove(req.Output)
		return err
	}
	return nil
}

// Closure adds to m everything the enabled categories derive and returns
// the number of statements added.
func (o *RuleOracle) Closure(ctx context.Context, m *sail.Model, cats []Category) (int, error) {
	rounds := o.MaxRounds
	if rounds <= 0 {
		rounds = DefaultRuleRounds
	}
	enabled := newCategorySet(cats)
	total := 0
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		d := &deriver{m: m}
		for _, c := range AllCategories {
			if enabled[c] {
				ruleSets[c](d)
			}
		}
		added := m.AddAll(d.out)
		total += added
		if added == 0 {
			return total, nil
		}
	}
	clog.Warningf("owl: rule oracle stopped after %d rounds", rounds)
	return total, nil
}

type deriver struct {
	m   *sail.Model
	out []triple.Statement
}

func (d *deriver) add(s, p, o quad.Value) {
	st, err := triple.New(s, p, o, nil)
	if err != nil || d.m.Contains(st) {
		return
	}
	d.out = append(d.out, st)
}

func (d *deriver) has(s, p, o quad.Value) bool {
	return len(d.m.Match(s, p, o)) != 0
}

func (d *deriver) isA(s quad.Value, class quad.IRI) bool {
	return d.has(s, voc.RDFType, class)
}

// transitive closes the relation p, restricted to subjects accepted by keep.
func (d *deriver) transitive(p quad.IRI, keep func(quad.Value) bool) {
	for _, ab := range d.m.Match(nil, p, nil) {
		if keep != nil && !keep(ab.Subject()) {
			continue
		}
		for _, bc := range d.m.Match(ab.Object(), p, nil) {
			d.add(ab.Subject(), p, bc.Object())
		}
	}
}

func (d *deriver) isDataProperty(p quad.Value) bool {
	return d.isA(p, datatypeProperty)
}

func (d *deriver) isObjectProperty(p quad.Value) bool {
	return !d.isDataProperty(p)
}

var ruleSets = map[Category]func(d *deriver){
	SubClass: func(d *deriver) {
		d.transitive(voc.RDFSSubClassOf, nil)
		for _, st := range d.m.Match(nil, equivalentClass, nil) {
			d.add(st.Subject(), voc.RDFSSubClassOf, st.Object())
			d.add(st.Object(), voc.RDFSSubClassOf, st.Subject())
		}
	},
	ClassAssertion: func(d *deriver) {
		for _, sc := range d.m.Match(nil, voc.RDFSSubClassOf, nil) {
			for _, x := range d.m.Match(nil, voc.RDFType, sc.Subject()) {
				d.add(x.Subject(), voc.RDFType, sc.Object())
			}
		}
		for _, eq := range d.m.Match(nil, equivalentClass, nil) {
			for _, x := range d.m.Match(nil, voc.RDFType, eq.Subject()) {
				d.add(x.Subject(), voc.RDFType, eq.Object())
			}
			for _, x := range d.m.Match(nil, voc.RDFType, eq.Object()) {
				d.add(x.Subject(), voc.RDFType, eq.Subject())
			}
		}
	},
	DataPropertyCharacteristic: func(d *deriver) {
		for _, sp := range d.m.Match(nil, voc.RDFSSubPropertyOf, nil) {
			if d.isDataProperty(sp.Subject()) && d.isA(sp.Object(), functional) {
				d.add(sp.Subject(), voc.RDFType, functional)
			}
		}
	},
	ObjectPropertyCharacteristic: func(d *deriver) {
		for _, sp := range d.m.Match(nil, voc.RDFSSubPropertyOf, nil) {
			p, q := sp.Subject(), sp.Object()
			if !d.isObjectProperty(p) {
				continue
			}
			if d.isA(q, functional) {
				d.add(p, voc.RDFType, functional)
			}
			if d.isA(q, inverseFunctional) {
				d.add(p, voc.RDFType, inverseFunctional)
			}
		}
		for _, inv := range d.m.Match(nil, inverseOf, nil) {
			p, q := inv.Subject(), inv.Object()
			for _, pair := range [][2]quad.Value{{p, q}, {q, p}} {
				a, b := pair[0], pair[1]
				if d.isA(a, functional) {
					d.add(b, voc.RDFType, inverseFunctional)
				}
				if d.isA(a, inverseFunctional) {
					d.add(b, voc.RDFType, functional)
				}
				if d.isA(a, symmetric) {
					d.add(b, voc.RDFType, symmetric)
				}
				if d.isA(a, transitive) {
					d.add(b, voc.RDFType, transitive)
				}
			}
		}
	},
	EquivalentClass: func(d *deriver) {
		for _, st := range d.m.Match(nil, equivalentClass, nil) {
			d.add(st.Object(), equivalentClass, st.Subject())
		}
		for _, st := range d.m.Match(nil, voc.RDFSSubClassOf, nil) {
			a, b := st.Subject(), st.Object()
			if triple.TermKey(a) != triple.TermKey(b) && d.has(b, voc.RDFSSubClassOf, a) {
				d.add(a, equivalentClass, b)
			}
		}
	},
	PropertyAssertion: func(d *deriver) {
		for _, sp := range d.m.Match(nil, voc.RDFSSubPropertyOf, nil) {
			q, ok := sp.Object().(quad.IRI)
			if !ok {
				continue
			}
			for _, x := range d.m.Match(nil, sp.Subject(), nil) {
				d.add(x.Subject(), q, x.Object())
			}
		}
		for _, eq := range d.m.Match(nil, equivalentProperty, nil) {
			for _, pair := range [][2]quad.Value{{eq.Subject(), eq.Object()}, {eq.Object(), eq.Subject()}} {
				q, ok := pair[1].(quad.IRI)
				if !ok {
					continue
				}
				for _, x := range d.m.Match(nil, pair[0], nil) {
					d.add(x.Subject(), q, x.Object())
				}
			}
		}
		for _, inv := range d.m.Match(nil, inverseOf, nil) {
			p, pok := inv.Subject().(quad.IRI)
			q, qok := inv.Object().(quad.IRI)
			if !pok || !qok {
				continue
			}
			for _, x := range d.m.Match(nil, p, nil) {
				d.add(x.Object(), q, x.Subject())
			}
			for _, x := range d.m.Match(nil, q, nil) {
				d.add(x.Object(), p, x.Subject())
			}
		}
		for _, st := range d.m.Match(nil, voc.RDFType, symmetric) {
			p := st.Subject()
			for _, x := range d.m.Match(nil, p, nil) {
				d.add(x.Object(), p, x.Subject())
			}
		}
		for _, st := range d.m.Match(nil, voc.RDFType, transitive) {
			if p, ok := st.Subject().(quad.IRI); ok {
				d.transitive(p, nil)
			}
		}
	},
	InverseObjectProperties: func(d *deriver) {
		for _, st := range d.m.Match(nil, inverseOf, nil) {
			d.add(st.Object(), inverseOf, st.Subject())
		}
	},
	SubDataProperty: func(d *deriver) {
		subProperty(d, d.isDataProperty)
	},
	SubObjectProperty: func(d *deriver) {
		subProperty(d, d.isObjectProperty)
	},
}

func subProperty(d *deriver, keep func(quad.Value) bool) {
	d.transitive(voc.RDFSSubPropertyOf, keep)
	for _, st := range d.m.Match(nil, equivalentProperty, nil) {
		if keep(st.Subject()) {
			d.add(st.Subject(), voc.RDFSSubPropertyOf, st.Object())
		}
		if keep(st.Object()) {
			d.add(st.Object(), voc.RDFSSubPropertyOf, st.Subject())
		}
	}
}
