package graph

// Concept is a well-known attribute shared by the bridge, the materializer
// and the plugins.
type Concept struct {
	Element     ElementType
	Type        string
	Name        string
	Description string
}

// Ensure returns the attribute id, creating the attribute if absent.
func (c Concept) Ensure(w Writer) int {
	return w.EnsureAttribute(c.Element, c.Type, c.Name, c.Description)
}

// Get returns the attribute id or NotFound.
func (c Concept) Get(r Reader) int {
	return r.AttributeID(c.Element, c.Name)
}

// Vertex and transaction type values.
const (
	UnknownType     = "Unknown"
	CorrelationType = "Correlation"
)

var (
	VertexIdentifier    = Concept{VertexElement, StringType, "Identifier", "A unique identifier for the node"}
	VertexLabel         = Concept{VertexElement, StringType, "Label", "The label of the node"}
	VertexType          = Concept{VertexElement, StringType, "Type", "The type of the node"}
	VertexRDFIdentifier = Concept{VertexElement, StringType, "rdf_identifier", "The RDF identifier of the node"}
	VertexRDFTypes      = Concept{VertexElement, StringType, "RDF_types", "The RDF types of the node"}
	VertexLayerMask     = Concept{VertexElement, IntegerType, "layer_mask", "The layers the node belongs to"}
	VertexOccurrences   = Concept{VertexElement, IntegerType, "COUNT", "Number of times the node was seen by a remote source"}

	TransactionIdentifier    = Concept{TransactionElement, StringType, "Identifier", "A unique identifier for the transaction"}
	TransactionType          = Concept{TransactionElement, StringType, "Type", "The type of the transaction"}
	TransactionRDFIdentifier = Concept{TransactionElement, StringType, "rdf_identifier", "The RDF identifier of the transaction"}
	TransactionLayerMask     = Concept{TransactionElement, IntegerType, "layer_mask", "The layers the transaction belongs to"}

	GraphBlankNodes = Concept{GraphElement, ObjectType, "rdf_blank_nodes", "RDF Blank Nodes"}
)

// LiteralAttribute describes the vertex attribute holding literal values of
// one predicate.
func LiteralAttribute(predicate string) Concept {
	return Concept{VertexElement, StringType, predicate, "Auto-Generated RDF Predicate IRI"}
}
