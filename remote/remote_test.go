package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"
)

const elementsJSON = `[
 {"class":"uk.gov.gchq.gaffer.data.element.Entity","group":"Cardinality","vertex":"M5","properties":{"count":3,"hllp":{"value":"x"}}},
 {"class":"uk.gov.gchq.gaffer.data.element.Edge","group":"RoadUse","source":"M5","destination":"M32:1","directed":true,"properties":{"count":1.5}}
]`

func TestExecute(t *testing.T) {
	var got Chain
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, ExecutePath, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, elementsJSON)
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	els, err := NewRegistry().Query(context.TODO(), c, GetTwoHop.Label, []string{"M5"})
	require.NoError(t, err)
	require.Len(t, els, 2)

	require.Equal(t, OperationChainClass, got.Class)
	require.Len(t, got.Operations, 2)
	require.Equal(t, GetAdjacentIdsClass, got.Operations[0]["class"])
	require.Equal(t, GetElementsClass, got.Operations[1]["class"])
	require.NotContains(t, got.Operations[1], "input")

	ent, edge := els[0], els[1]
	require.False(t, ent.IsEdge())
	require.Equal(t, "M5", FormatValue(ent.Vertex))
	cnt, ok := ent.Property("count")
	require.True(t, ok)
	require.Equal(t, "3", cnt)
	hllp, _ := ent.Property("hllp")
	require.Equal(t, "x", hllp)
	require.Equal(t, []string{"count", "hllp"}, ent.PropertyNames())

	require.True(t, edge.IsEdge())
	require.Equal(t, DirectedTypeDirected, edge.DirectedType())
	cnt, _ = edge.Property("count")
	require.Equal(t, "1.5", cnt)
}

func TestExecuteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Execute(context.TODO(), GetOneHop.Build([]string{"a"}))
	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusInternalServerError, rerr.StatusCode)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, []string{"Get Details", "Get One Hop", "Get Two Hop"}, r.Labels())

	_, err := r.Query(context.TODO(), New("http://127.0.0.1:0"), "Get Nothing", []string{"a"})
	require.True(t, errors.Is(err, ErrUnknownQuery))
	_, err = r.Query(context.TODO(), New("http://127.0.0.1:0"), "Get One Hop", nil)
	require.Equal(t, ErrNoSeeds, err)

	require.True(t, errors.Is(r.Register(GetOneHop), ErrDuplicateQuery))
	require.Error(t, r.Register(QueryType{Label: "broken"}))
	require.NoError(t, r.Register(QueryType{
		Label: "Get Edges",
		Build: func(ids []string) Chain { return NewChain(GetElements(ids...)) },
	}))
	_, ok := r.Lookup("Get Edges")
	require.True(t, ok)

	ch := GetOneHop.Build([]string{"a", "b"})
	in := ch.Operations[0]["input"].([]interface{})
	require.Len(t, in, 2)
	require.Equal(t, "b", in[1].(map[string]interface{})["vertex"])
}

func TestDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "DESCRIBE <http://ex.org/bob>", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/n-quads; charset=utf-8")
		io.WriteString(w, "<http://ex.org/bob> <http://ex.org/name> \"Bob\" .\n"+
			"<http://ex.org/bob> <http://ex.org/likes> <http://ex.org/alice> .\n")
	}))
	defer srv.Close()

	stmts, err := NewSPARQL(srv.URL+"/sparql").Describe(context.TODO(), quad.IRI("http://ex.org/bob"))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	require.Equal(t, quad.String("Bob"), stmts[0].Object())
	require.Equal(t, quad.IRI("http://ex.org/likes"), stmts[1].Predicate())
}

func TestDescribeUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0})
	}))
	defer srv.Close()

	_, err := NewSPARQL(srv.URL).Describe(context.TODO(), quad.IRI("http://ex.org/bob"))
	require.Error(t, err)
}
