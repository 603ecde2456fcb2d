package materialize

import (
	"encoding/json"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/remote"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

const ex = "http://ex.org/"

func statements() []triple.Statement {
	return []triple.Statement{
		triple.Must(quad.IRI(ex+"x"), voc.RDFType, quad.IRI(ex+"b"), nil),
		triple.Must(quad.IRI(ex+"x"), quad.IRI(ex+"name"), quad.String("X"), nil),
		triple.Must(quad.IRI(ex+"x"), quad.IRI(ex+"knows"), quad.IRI(ex+"y"), nil),
		triple.Must(quad.BNode("n"), quad.IRI(ex+"name"), quad.String("anon"), nil),
	}
}

func TestStatementsDeterministic(t *testing.T) {
	m := New(UtilLayer)
	b1 := m.Statements(statements())
	b2 := m.Statements(statements())

	d1, err := json.Marshal(b1.Records)
	require.NoError(t, err)
	d2, err := json.Marshal(b2.Records)
	require.NoError(t, err)
	require.Equal(t, string(d1), string(d2))

	require.Equal(t, 3, b1.Records.Len())
	require.Equal(t, 1, b1.Literals.Len())
	require.Equal(t, 1, b1.BlankNodes.Len())
	for _, r := range b1.Records.Records() {
		for _, prefix := range []string{recordstore.Source, recordstore.Destination} {
			v := r.Part(prefix)
			if v == nil {
				continue
			}
			require.NotEmpty(t, v[graph.VertexIdentifier.Name])
			require.NotEmpty(t, v[graph.VertexLabel.Name])
			require.Equal(t, "3", v[graph.VertexLayerMask.Name])
		}
	}

	g := graph.New()
	tx := g.Write("materialize")
	st := m.Apply(tx, b1)
	require.NoError(t, tx.Commit())
	require.Equal(t, 2, st.NewVertices)
	require.Equal(t, 1, st.NewTransactions)
	r := g.Read()
	require.Equal(t, "3", r.StringValue(graph.TransactionLayerMask.Get(r), r.TransactionAt(0)))
}

func TestElements(t *testing.T) {
	undirected := false
	els := []remote.Element{
		{Class: remote.EntityClass, Group: "Cardinality", Vertex: "M5",
			Properties: map[string]interface{}{"count": float64(3), "colour": "red"}},
		{Class: remote.EdgeClass, Group: "RoadUse", Source: "M5", Destination: "M32:1",
			Directed: &undirected, Properties: map[string]interface{}{"count": float64(7)}},
		{Class: remote.EdgeClass, Group: "Broken", Source: "M5"},
	}
	m := New(RemoteRDFLayer)
	rs := m.Elements(els)
	require.Equal(t, 2, rs.Len())

	ent := rs.Record(0)
	require.Equal(t, "M5", ent["source.Identifier"])
	require.Equal(t, "3", ent["source.COUNT"])
	require.Equal(t, "red", ent["source.COLOUR"])
	require.Equal(t, "5", ent["source.layer_mask"])

	edge := rs.Record(1)
	require.Equal(t, "M32:1", edge["destination.Label"])
	require.Equal(t, "undirected", edge["transaction.Directed"])
	require.Equal(t, "RoadUse", edge["transaction.Type"])
	require.Equal(t, "7", edge["transaction.COUNT"])

	d1, _ := json.Marshal(rs)
	d2, _ := json.Marshal(m.Elements(els))
	require.Equal(t, string(d1), string(d2))

	g := graph.New()
	tx := g.Write("remote")
	recordstore.AddToGraph(tx, rs)
	require.NoError(t, tx.Commit())
	r := g.Read()
	require.Equal(t, 2, r.VertexCount())
	require.Equal(t, 1, r.TransactionCount())
	require.False(t, r.TransactionDirected(r.TransactionAt(0)))
}
