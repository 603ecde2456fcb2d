// Package owl contains constants of the Web Ontology Language (OWL)
package owl

import "github.com/cayleygraph/rdfsail/voc"

func init() {
	voc.RegisterPrefix(Prefix, NS)
}

const (
	NS     = `http://www.w3.org/2002/07/owl#`
	Prefix = `owl:`
)

// Classes
const (
	Class                     = NS + "Class"
	Thing                     = NS + "Thing"
	Nothing                   = NS + "Nothing"
	Ontology                  = NS + "Ontology"
	Restriction               = NS + "Restriction"
	ObjectProperty            = NS + "ObjectProperty"
	DatatypeProperty          = NS + "DatatypeProperty"
	NamedIndividual           = NS + "NamedIndividual"
	FunctionalProperty        = NS + "FunctionalProperty"
	InverseFunctionalProperty = NS + "InverseFunctionalProperty"
	TransitiveProperty        = NS + "TransitiveProperty"
	SymmetricProperty         = NS + "SymmetricProperty"
	AsymmetricProperty        = NS + "AsymmetricProperty"
	ReflexiveProperty         = NS + "ReflexiveProperty"
	IrreflexiveProperty       = NS + "IrreflexiveProperty"
)

// Properties
const (
	UnionOf              = NS + "unionOf"
	IntersectionOf       = NS + "intersectionOf"
	OnProperty           = NS + "onProperty"
	Cardinality          = NS + "cardinality"
	MinCardinality       = NS + "minCardinality"
	MaxCardinality       = NS + "maxCardinality"
	EquivalentClass      = NS + "equivalentClass"
	EquivalentProperty   = NS + "equivalentProperty"
	InverseOf            = NS + "inverseOf"
	SameAs               = NS + "sameAs"
	DifferentFrom        = NS + "differentFrom"
	DisjointWith         = NS + "disjointWith"
	AllValuesFrom        = NS + "allValuesFrom"
	SomeValuesFrom       = NS + "someValuesFrom"
	HasValue             = NS + "hasValue"
	PropertyChainAxiom   = NS + "propertyChainAxiom"
	PropertyDisjointWith = NS + "propertyDisjointWith"
)
