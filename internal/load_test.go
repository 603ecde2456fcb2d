package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

const testNQuads = `<http://ex.org/bob> <http://ex.org/knows> <http://ex.org/alice> .
<http://ex.org/bob> <http://ex.org/name> "Bob" .
`

func TestFormatFor(t *testing.T) {
	for _, c := range []struct {
		path, typ, name string
	}{
		{"data.nq", "", "nquads"},
		{"data.nq.gz", "", "nquads"},
		{"data.jsonld", "", "jsonld"},
		{"data.unknown", "", "nquads"},
		{"x", "quad", "nquads"},
		{"x", "jsonld", "jsonld"},
	} {
		f, err := FormatFor(c.path, c.typ)
		require.NoError(t, err, c.path)
		require.Equal(t, c.name, f.Name, c.path)
	}
	_, err := FormatFor("x", "nope")
	require.Error(t, err)
}

func TestLoadAndDump(t *testing.T) {
	ctx := context.TODO()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.nq")
	require.NoError(t, os.WriteFile(in, []byte(testNQuads), 0644))

	stmts, err := Read(ctx, in, "")
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	out := filepath.Join(dir, "out.nq.gz")
	n, err := Dump(stmts, out, "")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	back, err := Read(ctx, out, "")
	require.NoError(t, err)
	require.Len(t, back, 2)
	require.True(t, sail.NewModel(back...).Contains(triple.Must(quad.IRI("http://ex.org/bob"), quad.IRI("http://ex.org/name"), quad.String("Bob"), nil)))

	_, err = Read(ctx, filepath.Join(dir, "missing.nq"), "")
	require.Error(t, err)

	back, err = Read(ctx, "", "")
	require.NoError(t, err)
	require.Empty(t, back)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.nq" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testNQuads))
	}))
	defer srv.Close()

	stmts, err := Read(context.TODO(), srv.URL+"/data.nq", "")
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	_, err = Read(context.TODO(), srv.URL+"/other.nq", "")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "404"))
}

func TestWrite(t *testing.T) {
	var buf strings.Builder
	st := triple.Must(quad.IRI("http://ex.org/a"), quad.IRI("http://ex.org/p"), quad.IRI("http://ex.org/b"), nil)
	n, err := Write(&buf, []triple.Statement{st}, "nquads")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "<http://ex.org/a> <http://ex.org/p> <http://ex.org/b> .\n", buf.String())
}
