package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

func noop(id string, k Kind) *Func {
	return &Func{ID: id, Type: k, Run: func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
		return nil, nil
	}}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(noop("b", Inference), noop("a", Inference), noop("z", Import))
	require.NoError(t, err)
	require.True(t, errors.Is(r.Register(noop("a", Export)), ErrDuplicatePlugin))
	require.Error(t, r.Register(noop("", Export)))

	p, err := r.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, Inference, p.Kind())
	_, err = r.Lookup("nope")
	require.True(t, errors.Is(err, ErrNotFound))

	var names []string
	for _, p := range r.Plugins() {
		names = append(names, p.Name())
	}
	require.Equal(t, []string{"z", "a", "b"}, names)
}

func TestSchemaResolve(t *testing.T) {
	s := Schema{
		{Name: "mode", Default: "fast", Choices: []string{"fast", "slow"}},
		{Name: "file", Required: true},
		{Name: "limit", Default: "10"},
	}
	v, err := s.Resolve(Values{"file": "x.nq"})
	require.NoError(t, err)
	require.Equal(t, Values{"mode": "fast", "file": "x.nq", "limit": "10"}, v)
	n, err := v.Int("limit")
	require.NoError(t, err)
	require.Equal(t, 10, n)

	_, err = s.Resolve(Values{})
	require.True(t, errors.Is(err, ErrMissingParameter))
	_, err = s.Resolve(Values{"file": "x", "mode": "medium"})
	require.Error(t, err)
	_, err = s.Resolve(Values{"file": "x", "other": "1"})
	require.Error(t, err)

	require.Equal(t, []string{"a", "b"}, Values{"ids": " a, ,b"}.List("ids"))
	b, err := Values{"x": "true"}.Bool("x")
	require.NoError(t, err)
	require.True(t, b)
	_, err = Values{"x": "maybe"}.Bool("x")
	require.Error(t, err)
}

var (
	bob   = quad.IRI("http://ex.org/bob")
	knows = quad.IRI("http://ex.org/knows")
	alice = quad.IRI("http://ex.org/alice")
)

func TestRunApplies(t *testing.T) {
	g := graph.New()
	store := sail.NewStore(sail.NewModel(triple.Must(bob, knows, alice, nil)))
	inferred := triple.Must(alice, knows, bob, nil)

	p := &Func{
		ID:     "test",
		Type:   Inference,
		Schema: Schema{{Name: "id", Default: "v1"}},
		Run: func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
			require.Equal(t, 1, req.Model().Len())
			in.SetProgress(1, 2, "half way", false)
			rs := recordstore.New()
			rs.Set(recordstore.Source+"Identifier", req.Params.Get("id"))
			rs.Set(recordstore.Source+"layer_mask", "3")
			return &Output{
				Statements: []triple.Statement{inferred, triple.Must(bob, knows, alice, nil)},
				Records:    rs,
				Message:    "done",
			}, nil
		},
	}
	rec := &Recorder{}
	out, err := Run(context.TODO(), p, &Request{Graph: g, Store: store}, rec)
	require.NoError(t, err)
	require.Equal(t, 1, out.Inferred)
	require.Equal(t, 1, out.Stats.NewVertices)
	require.Equal(t, []Notification{{Level: LevelInfo, Message: "done"}}, rec.Notifications())
	require.Equal(t, Progress{Current: 1, Total: 2, Message: "half way"}, rec.Progress())

	explicit, inf := store.Connection().Size()
	require.Equal(t, 1, explicit)
	require.Equal(t, 1, inf)

	r := g.Read()
	require.Equal(t, 1, r.VertexCount())
	id := graph.VertexIdentifier.Get(r)
	require.Equal(t, "v1", r.StringValue(id, r.VertexAt(0)))

	// retractions remove inferred statements
	p.Run = func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
		return &Output{Retractions: []triple.Statement{inferred}}, nil
	}
	_, err = Run(context.TODO(), p, &Request{Graph: g, Store: store}, rec)
	require.NoError(t, err)
	_, inf = store.Connection().Size()
	require.Equal(t, 0, inf)
}

func TestRunFailure(t *testing.T) {
	g := graph.New()
	errBoom := errors.New("boom")
	p := &Func{ID: "failing", Run: func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
		return &Output{Records: recordstore.New()}, errBoom
	}}
	rec := &Recorder{}
	out, err := Run(context.TODO(), p, &Request{Graph: g}, rec)
	require.Nil(t, out)
	require.True(t, errors.Is(err, errBoom))
	var perr *Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "failing", perr.Plugin)
	require.Equal(t, []Notification{{Level: LevelError, Message: "failing: boom"}}, rec.Notifications())
	require.Equal(t, 0, g.Read().VertexCount())

	// parameter errors are reported the same way
	rec = &Recorder{}
	p.Schema = Schema{{Name: "file", Required: true}}
	_, err = Run(context.TODO(), p, &Request{Graph: g}, rec)
	require.True(t, errors.Is(err, ErrMissingParameter))
	require.Len(t, rec.Notifications(), 1)

	// records without a graph
	rec = &Recorder{}
	p.Schema = nil
	p.Run = func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
		rs := recordstore.New()
		rs.Set(recordstore.Source+"Identifier", "x")
		return &Output{Records: rs}, nil
	}
	_, err = Run(context.TODO(), p, nil, rec)
	require.True(t, errors.Is(err, ErrNoGraph))
	require.Len(t, rec.Notifications(), 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Func{ID: "slow", Run: func(ctx context.Context, req *Request, in Interaction) (*Output, error) {
		cancel()
		return &Output{Statements: []triple.Statement{triple.Must(bob, knows, alice, nil)}}, nil
	}}
	store := sail.NewStore(nil)
	rec := &Recorder{}
	_, err := Run(ctx, p, &Request{Store: store}, rec)
	require.Equal(t, ErrCancelled, err)
	require.Equal(t, []Notification{{Level: LevelInfo, Message: "slow was cancelled"}}, rec.Notifications())
	_, inf := store.Connection().Size()
	require.Zero(t, inf)
}
