package recordstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/graph"
)

func TestStoreJSON(t *testing.T) {
	s := New()
	s.Add()
	s.Set(Source+"Identifier", "bob")
	s.Set(Source+"layer_mask", "3")
	s.Add()
	s.Set(Destination+"Identifier", "alice")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"columns": ["destination.Identifier", "source.Identifier", "source.layer_mask"],
		"rows": [[null, "bob", "3"], ["alice", null, null]]
	}`, string(data))

	var got Store
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, s.Records(), got.Records())
}

func TestSetWithoutAdd(t *testing.T) {
	s := New()
	require.Equal(t, "", s.Get(Source+"Identifier"))
	s.Set(Source+"Identifier", "x")
	require.Equal(t, 1, s.Len())
	require.Equal(t, "x", s.Get(Source+"Identifier"))
	require.Equal(t, map[string]string{"Identifier": "x"}, s.Record(0).Part(Source))
	require.Nil(t, s.Record(0).Part(Transaction))
}

func TestMergeSet(t *testing.T) {
	require.Equal(t, "a,b,c", MergeSet("a, b", "b,,c"))
	require.Equal(t, "x", MergeSet("", "x"))
	require.Equal(t, "", MergeSet("", ""))
}

func TestAddToGraphMerges(t *testing.T) {
	g := graph.New()
	tx := g.Write("records")

	s := New()
	s.Add()
	s.Set(Source+"rdf_identifier", "http://ex.org/bob")
	s.Set(Source+"Identifier", "bob")
	s.Set(Source+"Type", "Person")
	s.Set(Source+"RDF_types", "http://ex.org/Person")
	s.Set(Source+"layer_mask", "1")
	s.Add()
	s.Set(Source+"rdf_identifier", "http://ex.org/bob")
	s.Set(Source+"Type", graph.UnknownType)
	s.Set(Source+"RDF_types", "http://ex.org/Agent")
	s.Set(Source+"layer_mask", "8")
	s.Set(Destination+"rdf_identifier", "http://ex.org/alice")
	s.Set(Destination+"Identifier", "alice")
	s.Set(Transaction+"rdf_identifier", "http://ex.org/likes")
	s.Set(Transaction+Directed, "true")
	s.Add()
	s.Set(Source+"rdf_identifier", "http://ex.org/bob")
	s.Set(Destination+"rdf_identifier", "http://ex.org/alice")
	s.Set(Transaction+"rdf_identifier", "http://ex.org/likes")

	st := AddToGraph(tx, s)
	require.Equal(t, 2, st.NewVertices)
	require.Equal(t, 1, st.NewTransactions)
	require.Equal(t, 2, st.Transactions)
	require.NoError(t, tx.Commit())

	r := g.Read()
	require.Equal(t, 2, r.VertexCount())
	require.Equal(t, 1, r.TransactionCount())
	bob := r.VertexAt(0)
	require.Equal(t, "Person", r.StringValue(graph.VertexType.Get(r), bob))
	require.Equal(t, "http://ex.org/Person,http://ex.org/Agent", r.StringValue(graph.VertexRDFTypes.Get(r), bob))
	require.Equal(t, "9", r.StringValue(graph.VertexLayerMask.Get(r), bob))

	// merging the graph's own records again changes nothing
	tx = g.Write("again")
	st = AddToGraph(tx, FromGraph(r))
	require.Equal(t, 0, st.NewVertices)
	require.Equal(t, 0, st.NewTransactions)
	require.NoError(t, tx.Commit())
	require.Equal(t, 2, g.Read().VertexCount())
	require.Equal(t, 1, g.Read().TransactionCount())
}

func TestFromGraph(t *testing.T) {
	g := graph.New()
	tx := g.Write("setup")
	a, b := tx.AddVertex(), tx.AddVertex()
	e, err := tx.AddTransaction(a, b, false)
	require.NoError(t, err)
	id := graph.VertexIdentifier.Ensure(tx)
	require.NoError(t, tx.SetStringValue(id, a, "a"))
	require.NoError(t, tx.SetStringValue(id, b, "b"))
	tid := graph.TransactionType.Ensure(tx)
	require.NoError(t, tx.SetStringValue(tid, e, graph.CorrelationType))
	require.NoError(t, tx.Commit())

	s := FromGraph(g.Read())
	require.Equal(t, 3, s.Len())
	require.Equal(t, Record{
		"source.Identifier":      "a",
		"destination.Identifier": "b",
		"transaction.Type":       graph.CorrelationType,
		"transaction.Directed":   "false",
	}, s.Record(2))
}
