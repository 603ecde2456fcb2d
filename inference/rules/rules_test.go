package rules

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

const foo = "http://foo.org/bar#"

var (
	bob          = quad.IRI(foo + "Bob")
	alice        = quad.IRI(foo + "Alice")
	knows        = quad.IRI(foo + "knows")
	relatesTo    = quad.IRI(foo + "relatesTo")
	cryptography = quad.IRI(foo + "Cryptography")
)

func bobAndAlice() *sail.Model {
	return sail.NewModel(
		triple.Must(bob, knows, alice, nil),
		triple.Must(alice, knows, bob, nil),
		triple.Must(bob, voc.RDFType, quad.IRI(foo+"Person"), nil),
	)
}

func TestDefaultRule(t *testing.T) {
	ctx := context.TODO()
	in, err := New(DefaultRule, DefaultMatch)
	require.NoError(t, err)
	m := bobAndAlice()

	raw, err := in.Evaluate(ctx, m)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	exp := triple.Must(knows, relatesTo, cryptography, nil)
	out, err := in.Infer(ctx, m)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Equal(exp))

	// once added, the match query recognizes it
	m.AddAll(out)
	out, err = in.Infer(ctx, m)
	require.NoError(t, err)
	require.Empty(t, out)

	ret, err := in.Retractions(ctx, m)
	require.NoError(t, err)
	require.Empty(t, ret)

	m.Remove(triple.Must(alice, knows, bob, nil))
	m.Remove(triple.Must(bob, knows, alice, nil))
	ret, err = in.Retractions(ctx, m)
	require.NoError(t, err)
	require.Len(t, ret, 1)
	require.True(t, ret[0].Equal(exp))
}

func TestParse(t *testing.T) {
	q, err := Parse(`
PREFIX ex: <http://ex.org/>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
construct {
  ?s a ex:Thing ; ex:tag "t"@en, _:n .
} where {
  ?s ex:p ?o .
  { ?o a ex:A } UNION { ?o a ex:B } UNION { ?o ex:q "x{y}" }
  FILTER (?s != <http://ex.org/skip>)
  filter(?o = ?o)
}`)
	require.NoError(t, err)
	require.Equal(t, "http://ex.org/", q.Prefixes["ex"])
	require.Len(t, q.Template, 3)
	require.Equal(t, voc.RDFType, q.Template[0].Predicate.Value)
	require.Equal(t, quad.LangString{Value: "t", Lang: "en"}, q.Template[1].Object.Value)
	require.Equal(t, quad.BNode("n"), q.Template[2].Object.Value)

	require.Len(t, q.Where.Patterns, 1)
	require.Len(t, q.Where.Unions, 1)
	require.Len(t, q.Where.Unions[0], 3)
	require.Equal(t, quad.String("x{y}"), q.Where.Unions[0][2].Patterns[0].Object.Value)
	require.Len(t, q.Where.Filters, 2)
	require.True(t, q.Where.Filters[0].Negate)
	require.Equal(t, "s", q.Where.Filters[0].Left.Var)
	require.False(t, q.Where.Filters[1].Negate)
}

func TestParseErrors(t *testing.T) {
	for _, c := range []struct {
		name  string
		query string
	}{
		{"select", "SELECT ?s WHERE { ?s ?p ?o }"},
		{"unbalanced", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o "},
		{"prefix", "CONSTRUCT { ?s ?p ?o } WHERE { ?s un:known ?o }"},
		{"incomplete", "CONSTRUCT { ?s ?p } WHERE { ?s ?p ?o }"},
		{"blank in where", "CONSTRUCT { ?s ?p ?o } WHERE { _:b ?p ?o }"},
		{"filter", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o FILTER(regex(?o, \"x\")) }"},
		{"trailing", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o } LIMIT 1"},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.query)
			require.Error(t, err)
		})
	}
	_, err := Parse("  ")
	require.Equal(t, ErrEmptyQuery, err)
	_, err = Parse("DESCRIBE <http://a>")
	require.Equal(t, ErrNotConstruct, err)
	_, err = New("CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", "nope")
	require.Error(t, err)
}

func TestConstruct(t *testing.T) {
	ctx := context.TODO()
	m := sail.NewModel(
		triple.Must(bob, knows, alice, nil),
		triple.Must(alice, knows, bob, nil),
		triple.Must(bob, quad.IRI(foo+"name"), quad.String("Bob"), nil),
	)
	q, err := Parse(`PREFIX : <http://foo.org/bar#>
CONSTRUCT { _:r :from ?a ; :to ?b . ?n :named ?a } WHERE {
  ?a :knows ?b . ?a :name ?n FILTER(?b != :Bob)
}`)
	require.NoError(t, err)
	out, err := q.Construct(ctx, m)
	require.NoError(t, err)
	// the literal subject triple is skipped
	require.Len(t, out, 2)
	require.Equal(t, out[0].Subject(), out[1].Subject())
	require.Equal(t, quad.IRI(foo+"to"), out[1].Predicate())
	require.Equal(t, alice, out[1].Object())

	// solutions are checked for cancellation
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = q.Construct(cctx, m)
	require.True(t, errors.Is(err, context.Canceled))
}
