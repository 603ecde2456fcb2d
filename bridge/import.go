package bridge

import (
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

// TypeMap resolves RDF type IRIs to vertex types.
type TypeMap map[string]string

// Resolve returns the vertex type for an RDF type IRI.
func (m TypeMap) Resolve(iri string) (string, bool) {
	t, ok := m[iri]
	return t, ok && t != ""
}

// LiteralKey identifies the literal values of one predicate on one subject.
type LiteralKey struct {
	Predicate string
	Subject   string
}

// LiteralEntry is an accumulated literal value.
type LiteralEntry struct {
	LiteralKey
	Value string
}

// LiteralAccumulator merges literal values per (predicate, subject) in
// encounter order. The zero value is ready to use.
type LiteralAccumulator struct {
	index   map[LiteralKey]int
	entries []LiteralEntry
}

func NewLiteralAccumulator() *LiteralAccumulator {
	return &LiteralAccumulator{}
}

// Add appends a value and returns the merged value for the key.
func (a *LiteralAccumulator) Add(predicate, subject, value string) string {
	k := LiteralKey{Predicate: predicate, Subject: subject}
	if a.index == nil {
		a.index = make(map[LiteralKey]int)
	}
	if i, ok := a.index[k]; ok {
		a.entries[i].Value += Separator + value
		return a.entries[i].Value
	}
	a.index[k] = len(a.entries)
	a.entries = append(a.entries, LiteralEntry{LiteralKey: k, Value: value})
	return value
}

// Value returns the merged value for a key.
func (a *LiteralAccumulator) Value(predicate, subject string) (string, bool) {
	i, ok := a.index[LiteralKey{Predicate: predicate, Subject: subject}]
	if !ok {
		return "", false
	}
	return a.entries[i].Value, true
}

func (a *LiteralAccumulator) Len() int { return len(a.entries) }

// Entries returns the accumulated values in first-seen key order.
func (a *LiteralAccumulator) Entries() []LiteralEntry {
	return append([]LiteralEntry(nil), a.entries...)
}

// Importer turns statements into graph records.
type Importer struct {
	// Types resolves rdf:type objects to vertex types.
	Types TypeMap
	// Map optionally copies mapped predicates to extra record keys.
	Map *RDFMap
}

var defaultImporter Importer

// ImportStatement classifies one statement with the default importer.
func ImportStatement(rs *recordstore.Store, st triple.Statement, acc *LiteralAccumulator, bnodes *BlankNodeSet, layerMask int) {
	defaultImporter.ImportStatement(rs, st, acc, bnodes, layerMask)
}

func setVertex(rs *recordstore.Store, prefix string, iri quad.IRI, mask string) {
	id := strings.TrimPrefix(string(iri), LocalNS)
	if len(id) == len(iri) {
		id = triple.LocalName(id)
	}
	rs.Set(prefix+graph.VertexRDFIdentifier.Name, triple.NormalizeIRI(string(iri)))
	rs.Set(prefix+graph.VertexIdentifier.Name, id)
	rs.Set(prefix+graph.VertexLabel.Name, id)
	rs.Set(prefix+graph.VertexLayerMask.Name, mask)
}

// ImportStatement classifies st and records it:
//
//   - statements with a blank subject or object go to bnodes only;
//   - literal objects are accumulated in acc and produce a vertex record;
//   - rdf:type statements produce a vertex record carrying RDF_types;
//   - IRI objects produce source, destination and transaction records.
//
// Objects of any other kind are logged and dropped.
func (im *Importer) ImportStatement(rs *recordstore.Store, st triple.Statement, acc *LiteralAccumulator, bnodes *BlankNodeSet, layerMask int) {
	if st.HasBlankNode() {
		bnodes.Add(st)
		importedStatements.WithLabelValues("blank").Inc()
		return
	}
	subj, ok := st.Subject().(quad.IRI)
	if !ok {
		clog.Warningf("bridge: unsupported subject %v, dropping", st.Subject())
		importedStatements.WithLabelValues("dropped").Inc()
		return
	}
	mask := strconv.Itoa(layerMask)
	pred := string(st.Predicate())
	switch {
	case st.UnknownObject():
		clog.Warningf("bridge: unknown object type %T in %v, dropping", st.Object(), st)
		importedStatements.WithLabelValues("dropped").Inc()
	case st.LiteralObject():
		lit := triple.LexicalForm(st.Object())
		val := acc.Add(pred, triple.NormalizeIRI(string(subj)), lit)
		rs.Add()
		setVertex(rs, recordstore.Source, subj, mask)
		rs.Set(recordstore.Source+pred, val)
		if key, ok := im.Map.Key(pred); ok {
			rs.Set(key, lit)
		}
		importedStatements.WithLabelValues("literal").Inc()
	case st.Predicate() == voc.RDFType:
		typ := string(st.Object().(quad.IRI))
		rs.Add()
		setVertex(rs, recordstore.Source, subj, mask)
		rs.Set(recordstore.Source+graph.VertexRDFTypes.Name, typ)
		if resolved, ok := im.Types.Resolve(typ); ok {
			rs.Set(recordstore.Source+graph.VertexType.Name, resolved)
		} else if key, ok := im.Map.Key(pred); ok {
			rs.Set(key, triple.LocalName(typ))
		}
		importedStatements.WithLabelValues("type").Inc()
	default:
		obj := st.Object().(quad.IRI)
		rs.Add()
		setVertex(rs, recordstore.Source, subj, mask)
		setVertex(rs, recordstore.Destination, obj, mask)
		rs.Set(recordstore.Transaction+graph.TransactionRDFIdentifier.Name, pred)
		rs.Set(recordstore.Transaction+graph.TransactionIdentifier.Name, triple.LocalName(pred))
		rs.Set(recordstore.Transaction+graph.TransactionType.Name, graph.CorrelationType)
		rs.Set(recordstore.Transaction+graph.TransactionLayerMask.Name, mask)
		rs.Set(recordstore.Transaction+recordstore.Directed, "true")
		importedStatements.WithLabelValues("edge").Inc()
	}
}

// FinalizeLiteralAttributes writes every accumulated literal value to the
// vertex whose rdf_identifier matches its subject, in an attribute named
// after the predicate. It must run after the whole batch was imported.
func FinalizeLiteralAttributes(w graph.Writer, acc *LiteralAccumulator) int {
	rdfID := graph.VertexRDFIdentifier.Ensure(w)
	byID := make(map[string]int, w.VertexCount())
	for i := 0; i < w.VertexCount(); i++ {
		v := w.VertexAt(i)
		if id := w.StringValue(rdfID, v); id != "" {
			byID[id] = v
		}
	}
	n := 0
	for _, e := range acc.Entries() {
		v, ok := byID[e.Subject]
		if !ok {
			clog.Warningf("bridge: no vertex for %q, dropping %s value", e.Subject, e.Predicate)
			continue
		}
		attr := graph.LiteralAttribute(e.Predicate).Ensure(w)
		if err := w.SetStringValue(attr, v, e.Value); err != nil {
			clog.Warningf("bridge: cannot set %s on %q: %v", e.Predicate, e.Subject, err)
			continue
		}
		n++
	}
	return n
}

// Batch is the result of importing a set of statements.
type Batch struct {
	Records    *recordstore.Store
	Literals   *LiteralAccumulator
	BlankNodes *BlankNodeSet
}

// Import classifies all statements into a new batch.
func (im *Importer) Import(stmts []triple.Statement, layerMask int) *Batch {
	b := &Batch{
		Records:    recordstore.New(),
		Literals:   NewLiteralAccumulator(),
		BlankNodes: NewBlankNodeSet(),
	}
	for _, st := range stmts {
		im.ImportStatement(b.Records, st, b.Literals, b.BlankNodes, layerMask)
	}
	return b
}

// Empty reports whether applying b would change nothing.
func (b *Batch) Empty() bool {
	return b.Records.Len() == 0 && b.Literals.Len() == 0 && b.BlankNodes.Len() == 0
}

// Apply merges the batch onto the graph: records first, then literal
// attributes, then blank nodes.
func (b *Batch) Apply(w graph.Writer) recordstore.Stats {
	st := recordstore.AddToGraph(w, b.Records)
	FinalizeLiteralAttributes(w, b.Literals)
	AppendBlankNodes(w, b.BlankNodes)
	return st
}

// WriteModel imports every statement of m onto the graph.
func (im *Importer) WriteModel(w graph.Writer, m *sail.Model, layerMask int) recordstore.Stats {
	return im.Import(m.Statements(), layerMask).Apply(w)
}

// WriteModel imports every statement of m onto the graph with the default
// importer.
func WriteModel(w graph.Writer, m *sail.Model, layerMask int) recordstore.Stats {
	return defaultImporter.WriteModel(w, m, layerMask)
}
