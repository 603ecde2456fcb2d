package triple

import (
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/xsd"
	"github.com/stretchr/testify/require"
)

type opaque string

func (v opaque) String() string      { return string(v) }
func (v opaque) Native() interface{} { return string(v) }

func TestNewValidation(t *testing.T) {
	var cases = []struct {
		name string
		s, p quad.Value
		o, c quad.Value
		err  error
	}{
		{"literal subject", quad.String("a"), quad.IRI("http://ex.org/p"), quad.IRI("http://ex.org/o"), nil, ErrInvalidSubject},
		{"blank predicate", quad.IRI("http://ex.org/s"), quad.BNode("p"), quad.IRI("http://ex.org/o"), nil, ErrInvalidPredicate},
		{"literal predicate", quad.IRI("http://ex.org/s"), quad.String("p"), quad.IRI("http://ex.org/o"), nil, ErrInvalidPredicate},
		{"relative predicate", quad.IRI("http://ex.org/s"), quad.IRI("likes"), quad.IRI("http://ex.org/o"), nil, ErrInvalidPredicate},
		{"spaced predicate", quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/a b"), quad.IRI("http://ex.org/o"), nil, ErrInvalidPredicate},
		{"nil object", quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/p"), nil, nil, ErrInvalidObject},
		{"literal context", quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/p"), quad.IRI("http://ex.org/o"), quad.String("g"), ErrInvalidContext},
		{"valid", quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/p"), quad.String("o"), quad.IRI("http://ex.org/g"), nil},
		{"prefixed predicate", quad.BNode("b"), quad.IRI("ex:p"), quad.BNode("c"), nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.s, c.p, c.o, c.c)
			if c.err == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, c.err), "got %v", err)
			var verr *ValueError
			require.True(t, errors.As(err, &verr))
		})
	}
}

func TestClassification(t *testing.T) {
	st := Must(quad.BNode("a"), quad.IRI("http://ex.org/p"), quad.String("x"), nil)
	require.True(t, st.BlankSubject())
	require.False(t, st.BlankObject())
	require.True(t, st.LiteralObject())
	require.True(t, st.HasBlankNode())
	require.Equal(t, Literal, st.ObjectKind())

	st = Must(quad.IRI("http://ex.org/a"), quad.IRI("http://ex.org/p"), quad.BNode("b"), nil)
	require.False(t, st.BlankSubject())
	require.True(t, st.BlankObject())

	st = Must(quad.IRI("http://ex.org/a"), quad.IRI("http://ex.org/p"), opaque("?"), nil)
	require.True(t, st.UnknownObject())
	require.False(t, st.HasBlankNode())
}

func TestKeyEquality(t *testing.T) {
	s, p := quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/p")
	plain := Must(s, p, quad.String("1"), nil)
	typed := Must(s, p, quad.TypedString{Value: "1", Type: quad.IRI(xsd.String)}, nil)
	integer := Must(s, p, quad.Int(1), nil)
	lang := Must(s, p, quad.LangString{Value: "1", Lang: "en"}, nil)
	require.True(t, plain.Equal(typed))
	require.True(t, plain.Equal(integer))
	require.True(t, plain.Equal(lang))

	iri := Must(s, p, quad.IRI("1"), nil)
	require.False(t, plain.Equal(iri), "literal and IRI with the same text must differ")

	upper := Must(quad.IRI("http://ex.org/S"), p, quad.String("1"), nil)
	require.False(t, plain.Equal(upper), "IRIs compare by exact string")

	inGraph := Must(s, p, quad.String("1"), quad.IRI("http://ex.org/g"))
	require.False(t, plain.Equal(inGraph))

	set := map[Key]struct{}{plain.Key(): {}, typed.Key(): {}, iri.Key(): {}}
	require.Len(t, set, 2)
}

func TestUnique(t *testing.T) {
	s, p := quad.IRI("http://ex.org/s"), quad.IRI("http://ex.org/p")
	a := Must(s, p, quad.String("a"), nil)
	b := Must(s, p, quad.String("b"), nil)
	out := Unique([]Statement{a, b, a, b})
	require.Equal(t, []Statement{a, b}, out)
}

func TestLocalName(t *testing.T) {
	for in, exp := range map[string]string{
		"http://ex.org/bar#Bob":  "Bob",
		"http://ex.org/people/x": "x",
		"urn:isbn:123":           "123",
		"http://ex.org#/node-a":  "node-a",
		"http://ex.org/a#b/c":    "c",
		"http://ex.org/":         "http://ex.org/",
		"plain":                  "plain",
	} {
		require.Equal(t, exp, LocalName(in), in)
	}
}

func TestParseTerm(t *testing.T) {
	for _, v := range []quad.Value{
		quad.IRI("http://ex.org/a"),
		quad.BNode("b1"),
		quad.String("hello, world"),
	} {
		got, err := ParseTerm(FormatTerm(v))
		require.NoError(t, err)
		require.Equal(t, TermKey(v), TermKey(got))
	}
	_, err := ParseTerm("<unterminated")
	require.Error(t, err)
}
