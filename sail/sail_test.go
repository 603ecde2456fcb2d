package sail

import (
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/triple"
)

var (
	bob   = quad.IRI("http://ex.org/Bob")
	alice = quad.IRI("http://ex.org/Alice")
	likes = quad.IRI("http://ex.org/likes")
	name  = quad.IRI("http://ex.org/name")
	g1    = quad.IRI("http://ex.org/g1")
)

func mustSink(t testing.TB, src *Source) *Sink {
	sk, err := src.Sink(None)
	require.NoError(t, err)
	return sk
}

func mustDataset(t testing.TB, src *Source) *Dataset {
	ds, err := src.Dataset(None)
	require.NoError(t, err)
	return ds
}

func TestForkIsolation(t *testing.T) {
	src1 := NewSource(nil)
	src2 := src1.Fork()

	require.NoError(t, mustSink(t, src1).Approve(bob, likes, alice, nil))

	require.Len(t, mustDataset(t, src1).GetStatements(nil, nil, nil), 1)
	require.Empty(t, mustDataset(t, src2).GetStatements(nil, nil, nil))

	require.NoError(t, mustSink(t, src2).Approve(alice, likes, bob, nil))
	require.Len(t, mustDataset(t, src1).GetStatements(alice, nil, nil), 0)
}

func TestForkCopiesContents(t *testing.T) {
	src1 := NewSource(nil)
	require.NoError(t, mustSink(t, src1).Approve(bob, likes, alice, nil))
	require.NoError(t, mustSink(t, src1).SetNamespace("ex", "http://ex.org/"))
	src2 := src1.Fork()
	require.Len(t, mustDataset(t, src2).GetStatements(bob, likes, alice), 1)
	ns, ok := mustDataset(t, src2).Namespace("ex")
	require.True(t, ok)
	require.Equal(t, "http://ex.org/", ns)

	require.NoError(t, mustSink(t, src1).RemoveNamespace("ex"))
	_, ok = mustDataset(t, src2).Namespace("ex")
	require.True(t, ok, "namespaces must be copied on fork")

	require.NoError(t, mustSink(t, src2).SetNamespace("foaf", "http://xmlns.com/foaf/0.1/"))
	_, ok = mustDataset(t, src2).Namespace("foaf")
	require.True(t, ok)
	require.NoError(t, mustSink(t, src2).ClearNamespaces())
	require.Empty(t, mustDataset(t, src2).Namespaces())
}

func TestApproveIdempotent(t *testing.T) {
	src := NewSource(nil)
	sk := mustSink(t, src)
	require.NoError(t, sk.Approve(bob, likes, alice, nil))
	require.NoError(t, sk.Approve(bob, likes, alice, nil))
	require.Equal(t, 1, src.Model().Len())
}

func TestDeprecateMissing(t *testing.T) {
	src := NewSource(nil)
	sk := mustSink(t, src)
	st := triple.Must(bob, likes, alice, nil)
	require.NoError(t, sk.Deprecate(st))
	require.NoError(t, sk.Approve(bob, likes, alice, nil))
	require.NoError(t, sk.Deprecate(st))
	require.Equal(t, 0, src.Model().Len())
}

func TestApproveRejectsMalformed(t *testing.T) {
	sk := mustSink(t, NewSource(nil))
	err := sk.Approve(bob, quad.BNode("p"), alice, nil)
	require.True(t, errors.Is(err, triple.ErrInvalidPredicate))
	err = sk.Approve(bob, quad.IRI("not an iri"), alice, nil)
	require.True(t, errors.Is(err, triple.ErrInvalidPredicate))
}

func TestIsolationLevels(t *testing.T) {
	src := NewSource(nil)
	for _, l := range []IsolationLevel{ReadUncommitted, ReadCommitted, SnapshotRead, Snapshot, Serializable} {
		_, err := src.Sink(l)
		require.True(t, errors.Is(err, ErrIsolationNotImplemented), l.String())
		_, err = src.Dataset(l)
		require.True(t, errors.Is(err, ErrIsolationNotImplemented), l.String())
	}
	sk := mustSink(t, src)
	require.Equal(t, None, sk.Level())
	require.NoError(t, sk.Prepare())
	require.NoError(t, sk.Flush())
	require.NoError(t, sk.Observe(bob, nil, nil))
}

func TestClosedSink(t *testing.T) {
	sk := mustSink(t, NewSource(nil))
	require.NoError(t, sk.Close())
	require.Equal(t, ErrClosed, sk.Approve(bob, likes, alice, nil))
}

func TestGetStatementsPatterns(t *testing.T) {
	src := NewSource(nil)
	sk := mustSink(t, src)
	require.NoError(t, sk.Approve(bob, likes, alice, nil))
	require.NoError(t, sk.Approve(alice, likes, bob, g1))
	require.NoError(t, sk.Approve(bob, name, quad.String("Bob"), nil))
	ds := mustDataset(t, src)

	var cases = []struct {
		name    string
		s, p, o quad.Value
		ctxs    []quad.Value
		exp     int
	}{
		{"all", nil, nil, nil, nil, 3},
		{"subject", bob, nil, nil, nil, 2},
		{"predicate", nil, likes, nil, nil, 2},
		{"literal by value", nil, nil, quad.TypedString{Value: "Bob", Type: "http://www.w3.org/2001/XMLSchema#string"}, nil, 1},
		{"named context", nil, nil, nil, []quad.Value{g1}, 1},
		{"default context", nil, nil, nil, []quad.Value{nil}, 2},
		{"both contexts", nil, likes, nil, []quad.Value{nil, g1}, 2},
		{"no match", alice, name, nil, nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Len(t, ds.GetStatements(c.s, c.p, c.o, c.ctxs...), c.exp)
		})
	}
	require.Equal(t, []quad.Value{g1}, ds.ContextIDs())
}

func TestInsertionOrder(t *testing.T) {
	m := NewModel()
	a := triple.Must(bob, likes, alice, nil)
	b := triple.Must(alice, likes, bob, nil)
	c := triple.Must(bob, name, quad.String("Bob"), nil)
	m.Add(c)
	m.Add(a)
	m.Add(b)
	require.Equal(t, []triple.Statement{c, a, b}, m.Statements())
}

func TestClearContexts(t *testing.T) {
	src := NewSource(nil)
	sk := mustSink(t, src)
	require.NoError(t, sk.Approve(bob, likes, alice, nil))
	require.NoError(t, sk.Approve(alice, likes, bob, g1))
	require.NoError(t, sk.Clear(g1))
	require.Equal(t, 1, src.Model().Len())
	require.NoError(t, sk.Clear())
	require.Equal(t, 0, src.Model().Len())
}

func TestTransaction(t *testing.T) {
	a := triple.Must(bob, likes, alice, nil)
	b := triple.Must(alice, likes, bob, nil)

	tx := NewTransaction()
	tx.Approve(a)
	tx.Approve(a)
	tx.Deprecate(a)
	require.Equal(t, 0, tx.Len(), "approve then deprecate must cancel out")

	tx.Deprecate(b)
	tx.Approve(b)
	require.Equal(t, 0, tx.Len())

	src := NewSource(NewModel(b))
	tx.Approve(a)
	tx.Deprecate(b)
	require.NoError(t, mustSink(t, src).Apply(tx))
	require.Equal(t, []triple.Statement{a}, src.Model().Statements())
}

func TestApplyInvalidAction(t *testing.T) {
	tx := NewTransaction()
	tx.Deltas = append(tx.Deltas, Delta{Statement: triple.Must(bob, likes, alice, nil)})
	err := mustSink(t, NewSource(nil)).Apply(tx)
	var derr *DeltaError
	require.True(t, errors.As(err, &derr))
	require.True(t, errors.Is(err, ErrInvalidAction))
}

func TestStoreConnection(t *testing.T) {
	s := NewStore(nil)
	c := s.Connection()
	require.NoError(t, c.AddStatement(bob, likes, alice))
	require.NoError(t, c.AddStatement(alice, likes, bob, g1, nil))

	explicit, inferred := c.Size()
	require.Equal(t, 3, explicit)
	require.Equal(t, 0, inferred)

	n, err := c.AddInferred([]triple.Statement{
		triple.Must(bob, likes, alice, nil),
		triple.Must(bob, likes, bob, nil),
		triple.Must(bob, likes, bob, nil),
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// an invalid statement rejects the whole batch
	n, err = c.AddInferred([]triple.Statement{triple.Must(alice, likes, alice, nil), {}})
	require.ErrorIs(t, err, triple.ErrInvalidSubject)
	require.Zero(t, n)
	_, inferred = c.Size()
	require.Equal(t, 1, inferred)
	require.Len(t, c.Statements(false, bob, nil, nil), 1)
	require.Len(t, c.Statements(true, bob, nil, nil), 2)

	removed, err := c.RemoveStatements(alice, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	require.NoError(t, c.ClearInferred())
	_, inferred = c.Size()
	require.Equal(t, 0, inferred)
}
