package voc

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/cayleygraph/quad/voc/xsd"
)

// Expanded IRIs of the RDF and RDFS terms used by the reasoners and the
// graph bridge. Statements always carry full IRIs.
var (
	RDFType     = quad.IRI(rdf.Type).Full()
	RDFProperty = quad.IRI(rdf.Property).Full()

	RDFSResource                    = quad.IRI(rdfs.Resource).Full()
	RDFSClass                       = quad.IRI(rdfs.Class).Full()
	RDFSLiteral                     = quad.IRI(rdfs.Literal).Full()
	RDFSDatatype                    = quad.IRI(rdfs.Datatype).Full()
	RDFSSubClassOf                  = quad.IRI(rdfs.SubClassOf).Full()
	RDFSSubPropertyOf               = quad.IRI(rdfs.SubPropertyOf).Full()
	RDFSDomain                      = quad.IRI(rdfs.Domain).Full()
	RDFSRange                       = quad.IRI(rdfs.Range).Full()
	RDFSMember                      = quad.IRI(rdfs.NS + "member")
	RDFSContainerMembershipProperty = quad.IRI(rdfs.NS + "ContainerMembershipProperty")

	XSDString = quad.IRI(xsd.String).Full()
)
