package recordstore

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
)

var concepts = map[graph.ElementType]map[string]graph.Concept{
	graph.VertexElement:      {},
	graph.TransactionElement: {},
	graph.GraphElement:       {},
}

func init() {
	for _, c := range []graph.Concept{
		graph.VertexIdentifier, graph.VertexLabel, graph.VertexType,
		graph.VertexRDFIdentifier, graph.VertexRDFTypes, graph.VertexLayerMask,
		graph.VertexOccurrences,
		graph.TransactionIdentifier, graph.TransactionType,
		graph.TransactionRDFIdentifier, graph.TransactionLayerMask,
	} {
		concepts[c.Element][c.Name] = c
	}
}

func conceptFor(et graph.ElementType, name string) graph.Concept {
	if c, ok := concepts[et][name]; ok {
		return c
	}
	return graph.Concept{Element: et, Type: graph.StringType, Name: name}
}

// Stats counts the elements touched by AddToGraph.
type Stats struct {
	Vertices        int `json:"vertices"`
	NewVertices     int `json:"new_vertices"`
	Transactions    int `json:"transactions"`
	NewTransactions int `json:"new_transactions"`
}

type txKey struct {
	src, dst int
	id       string
	directed bool
}

type merger struct {
	w     graph.Writer
	byRDF map[string]int
	byID  map[string]int
	txs   map[txKey]int
	st    Stats
}

func newMerger(w graph.Writer) *merger {
	m := &merger{
		w:     w,
		byRDF: make(map[string]int),
		byID:  make(map[string]int),
		txs:   make(map[txKey]int),
	}
	rdfID, ident := graph.VertexRDFIdentifier.Get(w), graph.VertexIdentifier.Get(w)
	for i := 0; i < w.VertexCount(); i++ {
		v := w.VertexAt(i)
		if s := w.StringValue(rdfID, v); rdfID != graph.NotFound && s != "" {
			m.byRDF[s] = v
		}
		if s := w.StringValue(ident, v); ident != graph.NotFound && s != "" {
			if _, ok := m.byID[s]; !ok {
				m.byID[s] = v
			}
		}
	}
	trdf, tid := graph.TransactionRDFIdentifier.Get(w), graph.TransactionIdentifier.Get(w)
	for i := 0; i < w.TransactionCount(); i++ {
		tx := w.TransactionAt(i)
		k := txKey{
			src:      w.TransactionSource(tx),
			dst:      w.TransactionDestination(tx),
			directed: w.TransactionDirected(tx),
		}
		if trdf != graph.NotFound {
			k.id = w.StringValue(trdf, tx)
		}
		if k.id == "" && tid != graph.NotFound {
			k.id = w.StringValue(tid, tx)
		}
		m.txs[k] = tx
	}
	return m
}

// AddToGraph merges the records onto the graph.
//
// Vertices are matched by rdf_identifier, then by Identifier; unmatched
// vertices are created. Transactions are matched by endpoints, identifier
// and direction. RDF_types values are merged as a set, a known Type is
// never replaced by the unknown type and layer masks are combined.
func AddToGraph(w graph.Writer, s *Store) Stats {
	m := newMerger(w)
	for _, r := range s.records {
		src := m.vertex(r.Part(Source))
		dst := m.vertex(r.Part(Destination))
		if src != graph.NotFound && dst != graph.NotFound {
			m.transaction(src, dst, r.Part(Transaction))
		}
		if g := r.Part(Graph); len(g) != 0 {
			m.set(graph.GraphElement, graph.GraphID, g)
		}
	}
	return m.st
}

func (m *merger) vertex(attrs map[string]string) int {
	if len(attrs) == 0 {
		return graph.NotFound
	}
	rdfID := attrs[graph.VertexRDFIdentifier.Name]
	ident := attrs[graph.VertexIdentifier.Name]
	v, ok := graph.NotFound, false
	if rdfID != "" {
		v, ok = m.byRDF[rdfID]
	} else if ident != "" {
		v, ok = m.byID[ident]
	}
	if !ok {
		v = m.w.AddVertex()
		m.st.NewVertices++
		if rdfID != "" {
			m.byRDF[rdfID] = v
		}
		if _, seen := m.byID[ident]; ident != "" && !seen {
			m.byID[ident] = v
		}
	}
	m.st.Vertices++
	m.set(graph.VertexElement, v, attrs)
	return v
}

func (m *merger) transaction(src, dst int, attrs map[string]string) int {
	k := txKey{src: src, dst: dst, directed: true}
	if d, ok := attrs[Directed]; ok {
		k.directed = parseDirected(d)
	}
	k.id = attrs[graph.TransactionRDFIdentifier.Name]
	if k.id == "" {
		k.id = attrs[graph.TransactionIdentifier.Name]
	}
	tx, ok := m.txs[k]
	if !ok {
		var err error
		tx, err = m.w.AddTransaction(src, dst, k.directed)
		if err != nil {
			clog.Warningf("recordstore: %v", err)
			return graph.NotFound
		}
		m.txs[k] = tx
		m.st.NewTransactions++
	}
	m.st.Transactions++
	m.set(graph.TransactionElement, tx, attrs)
	return tx
}

func parseDirected(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "undirected", "0":
		return false
	}
	return true
}

func (m *merger) set(et graph.ElementType, elem int, attrs map[string]string) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if et == graph.TransactionElement && name == Directed {
			continue
		}
		// the blank node set is only written by the bridge
		if et == graph.GraphElement && name == graph.GraphBlankNodes.Name {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val := attrs[name]
		if val == "" {
			continue
		}
		c := conceptFor(et, name)
		id := c.Ensure(m.w)
		if id == graph.NotFound {
			clog.Warningf("recordstore: cannot create %v attribute %q", et, name)
			continue
		}
		cur := m.w.StringValue(id, elem)
		switch {
		case name == graph.VertexRDFTypes.Name && et == graph.VertexElement:
			val = MergeSet(cur, val)
		case name == graph.VertexType.Name:
			if val == graph.UnknownType && cur != "" {
				continue
			}
		case name == graph.VertexLayerMask.Name:
			val = mergeMask(cur, val)
		}
		if err := m.w.SetStringValue(id, elem, val); err != nil {
			clog.Warningf("recordstore: dropping %v attribute %q: %v", et, name, err)
		}
	}
}

// MergeSet merges two comma separated sets, keeping the order of first
// appearance and dropping empty entries.
func MergeSet(a, b string) string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range []string{a, b} {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return strings.Join(out, ",")
}

func mergeMask(cur, val string) string {
	a, err1 := strconv.Atoi(cur)
	b, err2 := strconv.Atoi(val)
	if err1 != nil || err2 != nil {
		return val
	}
	return strconv.Itoa(a | b)
}

// FromGraph converts a graph into records: one per vertex, then one per
// transaction carrying both endpoints.
func FromGraph(r graph.Reader) *Store {
	s := New()
	for i := 0; i < r.VertexCount(); i++ {
		s.Add()
		setElement(s, r, graph.VertexElement, Source, r.VertexAt(i))
	}
	for i := 0; i < r.TransactionCount(); i++ {
		tx := r.TransactionAt(i)
		s.Add()
		setElement(s, r, graph.VertexElement, Source, r.TransactionSource(tx))
		setElement(s, r, graph.VertexElement, Destination, r.TransactionDestination(tx))
		setElement(s, r, graph.TransactionElement, Transaction, tx)
		s.Set(Transaction+Directed, strconv.FormatBool(r.TransactionDirected(tx)))
	}
	return s
}

func setElement(s *Store, r graph.Reader, et graph.ElementType, prefix string, elem int) {
	for i := 0; i < r.AttributeCount(et); i++ {
		id := r.AttributeAt(et, i)
		a, ok := r.Attribute(id)
		if !ok || a.Type == graph.ObjectType {
			continue
		}
		if v := r.StringValue(id, elem); v != "" {
			s.Set(prefix+a.Name, v)
		}
	}
}
