package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

const ex = "http://ex.org/"

var (
	x = quad.IRI(ex + "x")
	a = quad.IRI(ex + "a")
	b = quad.IRI(ex + "b")
	c = quad.IRI(ex + "c")
)

func count(stmts []triple.Statement, st triple.Statement) int {
	n := 0
	for _, s := range stmts {
		if s.Equal(st) {
			n++
		}
	}
	return n
}

func TestSchemaProcessStatement(t *testing.T) {
	schema := NewSchema()
	schema.ProcessStatement(triple.Must(quad.IRI("alice"), voc.RDFType, quad.IRI("Person"), nil))
	require.NotNil(t, schema.GetClass(quad.IRI("Person")))

	schema.ProcessStatements([]triple.Statement{
		triple.Must(a, voc.RDFSSubClassOf, b, nil),
		triple.Must(b, voc.RDFSSubClassOf, c, nil),
		triple.Must(quad.IRI(ex+"p"), voc.RDFSDomain, a, nil),
		triple.Must(quad.IRI(ex+"p"), voc.RDFSDomain, c, nil),
	})
	require.Equal(t, []quad.Value{b, c}, schema.SuperClasses(a))
	require.Equal(t, []quad.Value{a, b}, schema.SubClasses(c))
	require.Equal(t, []quad.Value{a, c}, schema.Domains(quad.IRI(ex+"p")))
	require.True(t, schema.GetClass(a).IsSubClassOf(schema.GetClass(c)))
	require.True(t, schema.GetClass(a).IsSubClassOf(schema.GetClass(voc.RDFSResource)))

	schema.UnprocessStatement(triple.Must(b, voc.RDFSSubClassOf, c, nil))
	require.Equal(t, []quad.Value{b}, schema.SuperClasses(a))
}

func TestRDFSChain(t *testing.T) {
	m := sail.NewModel(
		triple.Must(x, voc.RDFType, a, nil),
		triple.Must(a, voc.RDFSSubClassOf, b, nil),
	)
	out, err := NewRDFSChain().Infer(context.TODO(), m)
	require.NoError(t, err)

	xb := triple.Must(x, voc.RDFType, b, nil)
	require.Equal(t, 1, count(out, xb))
	require.Equal(t, 1, count(out, triple.Must(x, voc.RDFType, voc.RDFSResource, nil)))
	require.Equal(t, 1, count(out, triple.Must(x, directType, a, nil)))
	require.Equal(t, 0, count(out, triple.Must(x, directType, b, nil)))
	require.Equal(t, 1, count(out, triple.Must(a, directSubClassOf, b, nil)))
	for _, st := range out {
		require.False(t, m.Contains(st), "%v is in the base", st)
		require.Equal(t, 1, count(out, st), "%v is duplicated", st)
	}

	// the rdfs closure is a fixpoint
	rdfs, err := NewSchemaCachingRDFS().Infer(context.TODO(), m)
	require.NoError(t, err)
	full := m.Clone()
	full.AddAll(rdfs)
	again, err := NewSchemaCachingRDFS().Infer(context.TODO(), full)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestRDFSRules(t *testing.T) {
	p, q := quad.IRI(ex+"p"), quad.IRI(ex+"q")
	m := sail.NewModel(
		triple.Must(p, voc.RDFSSubPropertyOf, q, nil),
		triple.Must(q, voc.RDFSDomain, a, nil),
		triple.Must(q, voc.RDFSRange, b, nil),
		triple.Must(x, p, c, nil),
		triple.Must(x, p, quad.String("lit"), nil),
	)
	out, err := NewSchemaCachingRDFS().Infer(context.TODO(), m)
	require.NoError(t, err)
	for _, st := range []triple.Statement{
		triple.Must(x, q, c, nil),
		triple.Must(x, q, quad.String("lit"), nil),
		triple.Must(x, voc.RDFType, a, nil),
		triple.Must(c, voc.RDFType, b, nil),
		triple.Must(p, voc.RDFType, voc.RDFProperty, nil),
		triple.Must(p, voc.RDFSSubPropertyOf, p, nil),
	} {
		require.Equal(t, 1, count(out, st), "missing %v", st)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRDFSChain().Infer(ctx, sail.NewModel(triple.Must(x, voc.RDFType, a, nil)))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestDedup(t *testing.T) {
	s1 := triple.Must(x, voc.RDFType, a, nil)
	s2 := triple.Must(x, voc.RDFType, b, nil)
	s3 := triple.Must(x, voc.RDFType, c, nil)
	out := Dedup(sail.NewModel(s3), []triple.Statement{s2, s1, s2, s3, s1}, 0)
	require.Len(t, out, 2)
	require.True(t, out[0].Equal(s2))
	require.True(t, out[1].Equal(s1))
}

func TestRun(t *testing.T) {
	r := NewRun("test")
	require.NotEmpty(t, r.ID)
	require.Equal(t, Idle, r.State())

	err := r.Transition(Reasoning)
	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, Idle, terr.From)

	require.NoError(t, r.Transition(Exporting))
	require.NoError(t, r.Transition(Reasoning))
	boom := errors.New("boom")
	require.Equal(t, boom, r.Fail(boom))
	require.Equal(t, Failed, r.State())
	require.Equal(t, boom, r.Err())
	require.Error(t, r.Transition(Importing))

	r = NewRun("ok")
	for _, s := range []State{Exporting, Reasoning, Importing, Done} {
		require.NoError(t, r.Transition(s))
	}
	require.True(t, r.State().Terminal())
	require.Error(t, r.Fail(boom))
}
