package owl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/inference"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

const ex = "http://example.org/onto#"

var (
	fooID = quad.IRI(ex + "Foo")
	barID = quad.IRI(ex + "Bar")
	bazID = quad.IRI(ex + "baz")

	fooBazCardinalityRestriction    = quad.BNode("r1")
	barBazMaxCardinalityRestriction = quad.BNode("r2")
)

func testModel() *sail.Model {
	return sail.NewModel(
		triple.Must(fooID, voc.RDFType, voc.RDFSClass, nil),
		triple.Must(fooID, voc.RDFSSubClassOf, fooBazCardinalityRestriction, nil),
		triple.Must(fooBazCardinalityRestriction, voc.RDFType, restriction, nil),
		triple.Must(fooBazCardinalityRestriction, onProperty, bazID, nil),
		triple.Must(fooBazCardinalityRestriction, cardinality, quad.Int(1), nil),
		triple.Must(barBazMaxCardinalityRestriction, voc.RDFType, restriction, nil),
		triple.Must(barBazMaxCardinalityRestriction, onProperty, bazID, nil),
		triple.Must(barBazMaxCardinalityRestriction, maxCardinality, quad.Int(1), nil),
		triple.Must(barID, voc.RDFSSubClassOf, fooID, nil),
		triple.Must(barID, voc.RDFSSubClassOf, barBazMaxCardinalityRestriction, nil),
		triple.Must(bazID, voc.RDFSDomain, fooID, nil),
		triple.Must(bazID, voc.RDFSRange, barID, nil),
	)
}

func TestGetClass(t *testing.T) {
	m := testModel()
	class, err := GetClass(m, fooID)
	require.NoError(t, err)
	require.Equal(t, fooID, class.Identifier)

	_, err = GetClass(m, quad.IRI(ex+"Nope"))
	require.True(t, errors.Is(err, ErrClassNotFound))
	_, err = GetProperty(m, quad.IRI(ex+"nope"))
	require.True(t, errors.Is(err, ErrPropertyNotFound))
}

func TestSubClasses(t *testing.T) {
	m := testModel()
	fooClass, err := GetClass(m, fooID)
	require.NoError(t, err)
	barClass, err := GetClass(m, barID)
	require.NoError(t, err)
	subClasses := fooClass.SubClasses()
	require.Len(t, subClasses, 1)
	require.Contains(t, subClasses, barClass)
}

func TestProperties(t *testing.T) {
	m := testModel()
	fooClass, err := GetClass(m, fooID)
	require.NoError(t, err)
	bazProperty, err := GetProperty(m, bazID)
	require.NoError(t, err)
	properties := fooClass.Properties()
	require.Len(t, properties, 1)
	require.Contains(t, properties, bazProperty)
}

func TestRestrictions(t *testing.T) {
	m := testModel()
	fooClass, err := GetClass(m, fooID)
	require.NoError(t, err)
	require.Equal(t, []quad.Value{fooBazCardinalityRestriction}, fooClass.ParentClasses())
	require.Equal(t, []quad.Value{fooBazCardinalityRestriction}, fooClass.Restrictions())

	barClass, err := GetClass(m, barID)
	require.NoError(t, err)
	require.Len(t, barClass.ParentClasses(), 2)
	require.Equal(t, []quad.Value{barBazMaxCardinalityRestriction}, barClass.Restrictions())
}

func TestCardinalityOf(t *testing.T) {
	m := testModel()
	fooClass, err := GetClass(m, fooID)
	require.NoError(t, err)
	bazProperty, err := GetProperty(m, bazID)
	require.NoError(t, err)
	n, err := fooClass.CardinalityOf(bazProperty)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = fooClass.MaxCardinalityOf(bazProperty)
	require.True(t, errors.Is(err, ErrNoRestriction))
}

func TestMaxCardinalityOf(t *testing.T) {
	m := testModel()
	barClass, err := GetClass(m, barID)
	require.NoError(t, err)
	bazProperty, err := GetProperty(m, bazID)
	require.NoError(t, err)
	n, err := barClass.MaxCardinalityOf(bazProperty)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRange(t *testing.T) {
	m := testModel()
	bazProperty, err := GetProperty(m, bazID)
	require.NoError(t, err)
	rng, err := bazProperty.Range()
	require.NoError(t, err)
	require.Equal(t, barID, rng)
	dom, err := bazProperty.Domain()
	require.NoError(t, err)
	require.Equal(t, fooID, dom)
}

func TestCategories(t *testing.T) {
	require.Len(t, AllCategories, 9)
	for _, c := range AllCategories {
		p, err := ParseCategory(c.String())
		require.NoError(t, err)
		require.Equal(t, c, p)
	}
	cs, err := ParseCategories("subclass, class-assertion,")
	require.NoError(t, err)
	require.Equal(t, []Category{SubClass, ClassAssertion}, cs)
	require.Equal(t, "subclass,class-assertion", JoinCategories(cs))
	_, err = ParseCategories("subclass,unknown")
	require.Error(t, err)
}

var (
	individual = quad.IRI(ex + "x")
	partOf     = quad.IRI(ex + "partOf")
	hasPart    = quad.IRI(ex + "hasPart")
	whole      = quad.IRI(ex + "whole")
)

func reasonerModel() *sail.Model {
	m := testModel()
	m.Add(triple.Must(individual, voc.RDFType, barID, nil))
	m.Add(triple.Must(partOf, inverseOf, hasPart, nil))
	m.Add(triple.Must(individual, partOf, whole, nil))
	return m
}

func TestRuleOracleClosure(t *testing.T) {
	ctx := context.TODO()
	m := reasonerModel()
	o := &RuleOracle{}
	n, err := o.Closure(ctx, m, []Category{ClassAssertion})
	require.NoError(t, err)
	// Foo and both restrictions
	require.Equal(t, 3, n)
	require.True(t, m.Contains(triple.Must(individual, voc.RDFType, fooID, nil)))
	require.False(t, m.Contains(triple.Must(hasPart, inverseOf, partOf, nil)))

	n, err = o.Closure(ctx, m, nil)
	require.NoError(t, err)
	require.True(t, n > 0)
	require.True(t, m.Contains(triple.Must(hasPart, inverseOf, partOf, nil)))
	require.True(t, m.Contains(triple.Must(whole, hasPart, individual, nil)))

	n, err = o.Closure(ctx, m, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReasoner(t *testing.T) {
	ctx := context.TODO()
	m := reasonerModel()
	r := NewReasoner(nil)
	r.Dir = t.TempDir()
	out, run, err := r.Run(ctx, m)
	require.NoError(t, err)
	require.Equal(t, inference.Done, run.State())
	require.NotEmpty(t, out)

	exp := []triple.Statement{
		triple.Must(individual, voc.RDFType, fooID, nil),
		triple.Must(hasPart, inverseOf, partOf, nil),
		triple.Must(whole, hasPart, individual, nil),
	}
	for _, st := range exp {
		found := false
		for _, o := range out {
			if o.Equal(st) {
				found = true
			}
		}
		require.True(t, found, "missing %v", st)
	}
	for _, o := range out {
		require.False(t, m.Contains(o), "%v already in the model", o)
	}

	// the same statements are not inferred twice
	m.AddAll(out)
	out, err = r.Infer(ctx, m)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestReasonerJSONLD(t *testing.T) {
	m := sail.NewModel(
		triple.Must(individual, voc.RDFType, barID, nil),
		triple.Must(barID, voc.RDFSSubClassOf, fooID, nil),
	)
	r := &Reasoner{Oracle: &RuleOracle{}, Format: "jsonld", Categories: []Category{ClassAssertion}, Dir: t.TempDir()}
	out, err := r.Infer(context.TODO(), m)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Equal(triple.Must(individual, voc.RDFType, fooID, nil)))
}

func TestReasonerFailures(t *testing.T) {
	ctx := context.TODO()
	errOracle := errors.New("oracle is down")
	for _, c := range []struct {
		name   string
		oracle Oracle
		check  func(t *testing.T, err error)
	}{
		{"error", OracleFunc(func(ctx context.Context, req Request) error {
			return errOracle
		}), func(t *testing.T, err error) {
			require.True(t, errors.Is(err, errOracle))
		}},
		{"panic", OracleFunc(func(ctx context.Context, req Request) error {
			panic("boom")
		}), func(t *testing.T, err error) {
			require.Equal(t, ErrReasonerFailed, err)
		}},
		{"no output", OracleFunc(func(ctx context.Context, req Request) error {
			return nil
		}), func(t *testing.T, err error) {
			require.Error(t, err)
		}},
	} {
		t.Run(c.name, func(t *testing.T) {
			r := &Reasoner{Oracle: c.oracle, Dir: t.TempDir()}
			out, run, err := r.Run(ctx, reasonerModel())
			c.check(t, err)
			require.Nil(t, out)
			require.Equal(t, inference.Failed, run.State())
			require.Equal(t, err, run.Err())
		})
	}

	r := &Reasoner{Oracle: &RuleOracle{}, Format: "no-such-format"}
	_, run, err := r.Run(ctx, reasonerModel())
	require.Error(t, err)
	require.Equal(t, inference.Idle, run.State())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	r = &Reasoner{Oracle: &RuleOracle{}, Dir: t.TempDir()}
	_, run, err = r.Run(cctx, reasonerModel())
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, inference.Failed, run.State())
}

func TestHTTPOracle(t *testing.T) {
	extra := triple.Must(individual, voc.RDFType, fooID, nil)
	var gotCategories string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotCategories = r.URL.Query().Get(CategoriesParam)
		w.Header().Set("Content-Type", "application/n-quads")
		io.Copy(w, r.Body)
		fmt.Fprintln(w, extra.Quad().NQuad())
	}))
	defer srv.Close()

	r := &Reasoner{Oracle: &HTTPOracle{URL: srv.URL}, Categories: []Category{SubClass}, Dir: t.TempDir()}
	m := reasonerModel()
	out, err := r.Infer(context.TODO(), m)
	require.NoError(t, err)
	require.Equal(t, "subclass", gotCategories)
	require.Len(t, out, 1)
	require.True(t, out[0].Equal(extra))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusInternalServerError)
	}))
	defer failing.Close()
	r.Oracle = &HTTPOracle{URL: failing.URL}
	_, err = r.Infer(context.TODO(), m)
	require.Error(t, err)
}

func TestCommandOracle(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no shell available")
	}
	o := &CommandOracle{Path: sh, Args: []string{"-c", `cp "$0" "$1"`, "{input}", "{output}"}}
	r := &Reasoner{Oracle: o, Dir: t.TempDir()}
	out, run, err := r.Run(context.TODO(), reasonerModel())
	require.NoError(t, err)
	require.Equal(t, inference.Done, run.State())
	require.Empty(t, out)

	o.Args = []string{"-c", "exit 3"}
	_, run, err = r.Run(context.TODO(), reasonerModel())
	require.Error(t, err)
	require.Equal(t, inference.Failed, run.State())
}

func TestExpandArgs(t *testing.T) {
	args := expandArgs([]string{"-i", "{input}", "--out={output}", "{format}", "{categories}"}, Request{
		Input: "in.nq", Output: "out.nq", Format: "nquads", Categories: []Category{SubClass, SubObjectProperty},
	})
	require.Equal(t, []string{"-i", "in.nq", "--out=out.nq", "nquads", "subclass,sub-object-property"}, args)
}
