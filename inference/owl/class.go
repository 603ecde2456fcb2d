package owl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
	owlvoc "github.com/cayleygraph/rdfsail/voc/owl"
)

var (
	ErrClassNotFound    = errors.New("owl: class not found")
	ErrPropertyNotFound = errors.New("owl: property not found")
	ErrNoRestriction    = errors.New("owl: no matching restriction")
)

var (
	restriction    = quad.IRI(owlvoc.Restriction)
	onProperty     = quad.IRI(owlvoc.OnProperty)
	cardinality    = quad.IRI(owlvoc.Cardinality)
	maxCardinality = quad.IRI(owlvoc.MaxCardinality)
)

// Class is an OWL class described by a model.
type Class struct {
	m          *sail.Model
	Identifier quad.Value
}

// GetClass returns the class named by identifier. The class must appear in
// at least one statement of m.
func GetClass(m *sail.Model, identifier quad.Value) (Class, error) {
	if len(m.Match(identifier, nil, nil)) == 0 && len(m.Match(nil, nil, identifier)) == 0 {
		return Class{}, fmt.Errorf("%w: %v", ErrClassNotFound, identifier)
	}
	return Class{m: m, Identifier: identifier}, nil
}

func objects(stmts []triple.Statement) []quad.Value {
	out := make([]quad.Value, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, st.Object())
	}
	return out
}

func subjects(stmts []triple.Statement) []quad.Value {
	out := make([]quad.Value, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, st.Subject())
	}
	return out
}

// Properties returns the properties whose domain is the class.
func (c Class) Properties() []Property {
	var out []Property
	for _, s := range subjects(c.m.Match(nil, voc.RDFSDomain, c.Identifier)) {
		if iri, ok := s.(quad.IRI); ok {
			out = append(out, Property{m: c.m, Identifier: iri})
		}
	}
	return out
}

// SubClasses returns the direct sub classes of the class.
func (c Class) SubClasses() []Class {
	var out []Class
	for _, s := range subjects(c.m.Match(nil, voc.RDFSSubClassOf, c.Identifier)) {
		out = append(out, Class{m: c.m, Identifier: s})
	}
	return out
}

// ParentClasses returns the direct super classes, restrictions included.
func (c Class) ParentClasses() []quad.Value {
	return objects(c.m.Match(c.Identifier, voc.RDFSSubClassOf, nil))
}

// Restrictions returns the restrictions the class is a sub class of.
func (c Class) Restrictions() []quad.Value {
	var out []quad.Value
	for _, p := range c.ParentClasses() {
		if len(c.m.Match(p, voc.RDFType, restriction)) != 0 {
			out = append(out, p)
		}
	}
	return out
}

func (c Class) restrictionValue(property Property, kind quad.IRI) (int64, error) {
	for _, r := range c.Restrictions() {
		if len(c.m.Match(r, onProperty, property.Identifier)) == 0 {
			continue
		}
		vals := objects(c.m.Match(r, kind, nil))
		if len(vals) == 0 {
			continue
		}
		n, err := strconv.ParseInt(triple.LexicalForm(vals[0]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("owl: invalid %v value %v: %w", kind, vals[0], err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %v %v %v", ErrNoRestriction, c.Identifier, kind, property.Identifier)
}

// CardinalityOf returns the exact cardinality of property on the class.
func (c Class) CardinalityOf(property Property) (int64, error) {
	return c.restrictionValue(property, cardinality)
}

// MaxCardinalityOf returns the maximum cardinality of property on the class.
func (c Class) MaxCardinalityOf(property Property) (int64, error) {
	return c.restrictionValue(property, maxCardinality)
}

// Property is an OWL property described by a model.
type Property struct {
	m          *sail.Model
	Identifier quad.IRI
}

// GetProperty returns the property named by identifier.
func GetProperty(m *sail.Model, identifier quad.IRI) (Property, error) {
	if len(m.Match(identifier, nil, nil)) == 0 && len(m.Match(nil, identifier, nil)) == 0 {
		return Property{}, fmt.Errorf("%w: %v", ErrPropertyNotFound, identifier)
	}
	return Property{m: m, Identifier: identifier}, nil
}

// Range returns the declared range of the property.
func (p Property) Range() (quad.Value, error) {
	if st := p.m.Match(p.Identifier, voc.RDFSRange, nil); len(st) != 0 {
		return st[0].Object(), nil
	}
	return nil, fmt.Errorf("owl: no range for %v", p.Identifier)
}

// Domain returns the declared domain of the property.
func (p Property) Domain() (quad.Value, error) {
	if st := p.m.Match(p.Identifier, voc.RDFSDomain, nil); len(st) != 0 {
		return st[0].Object(), nil
	}
	return nil, fmt.Errorf("owl: no domain for %v", p.Identifier)
}
