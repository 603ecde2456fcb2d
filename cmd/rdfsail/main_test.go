package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/cmd/rdfsail/command"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/plugin/builtin"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/sail/kv"
	sailhttp "github.com/cayleygraph/rdfsail/server/http"
	"github.com/cayleygraph/rdfsail/version"
)

const bobAndAlice = `<http://foo.org/bar#Bob> <http://foo.org/bar#likes> <http://foo.org/bar#Alice> .
<http://foo.org/bar#Alice> <http://foo.org/bar#likes> <http://foo.org/bar#Bob> .
`

func execute(t testing.TB, args ...string) (string, error) {
	cmd := NewCmd()
	b := bytes.NewBuffer(nil)
	cmd.SetOut(b)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return b.String(), err
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, version.String()+"\n", out)
}

func TestInitMemory(t *testing.T) {
	_, err := execute(t, "init", "-d", kv.Memory)
	require.ErrorIs(t, err, command.ErrNotPersistent)
}

func TestWorkflow(t *testing.T) {
	const backend = "leveldb"
	if !kv.IsPersistent(backend) {
		t.Skipf("%s backend is not available", backend)
	}
	dir := t.TempDir()
	file := filepath.Join(dir, "data.nq")
	require.NoError(t, os.WriteFile(file, []byte(bobAndAlice), 0644))
	db := []string{"-d", backend, "-a", filepath.Join(dir, "db")}
	run := func(args ...string) string {
		out, err := execute(t, append(args, db...)...)
		require.NoError(t, err, "%v", args)
		return out
	}

	run("init")
	out := run("load", file)
	require.Contains(t, out, "2 statements imported from "+file)

	out = run("infer", "rules")
	require.Contains(t, out, "1 statements inferred")

	require.Len(t, lines(run("dump", "-o", "-")), 2)
	out = run("dump", "-o", "-", "--inferred")
	require.Len(t, lines(out), 3)
	require.Contains(t, out, "<http://foo.org/bar#relatesTo>")

	// a second run finds nothing new
	out = run("infer", "rules", "--json")
	require.Contains(t, out, `"inferred": 0`)

	out = run("run", "clear-inferred")
	require.Contains(t, out, "1 inferred statements removed")
	require.Len(t, lines(run("dump", "-o", "-", "--inferred")), 2)

	gz := filepath.Join(dir, "out.nq.gz")
	out = run("dump", gz)
	require.Contains(t, out, "2 statements written to "+gz)
	_, err := os.Stat(gz)
	require.NoError(t, err)
}

func TestPluginArgs(t *testing.T) {
	_, err := execute(t, "infer", "nope")
	require.Error(t, err)

	_, err = execute(t, "run", "rules", "retract")
	require.Error(t, err)

	out, err := execute(t, "plugins")
	require.NoError(t, err)
	require.Contains(t, out, "sparql-describe")
	require.Contains(t, out, "layer_mask")
}

func TestLoadMemory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.nq")
	require.NoError(t, os.WriteFile(file, []byte(bobAndAlice), 0644))

	out, err := execute(t, "infer", "rules", "-i", file)
	require.NoError(t, err)
	require.Contains(t, out, "1 statements inferred")

	// nothing survives a memory backend
	out, err = execute(t, "dump")
	require.NoError(t, err)
	require.Empty(t, lines(out))
}

func TestHealth(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sailhttp.Serve(ctx, addr, 0, http.HandlerFunc(sailhttp.HandleHealth))

	var out string
	require.Eventually(t, func() bool {
		out, err = execute(t, "health", "http://"+addr)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	require.Equal(t, "ok\n", out)

	cancel()
	require.Eventually(t, func() bool {
		_, err = execute(t, "health", "http://"+addr)
		return err != nil
	}, 5*time.Second, 50*time.Millisecond)
}

func writeFile(t testing.TB, name, data string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestPushPull(t *testing.T) {
	reg, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(sailhttp.NewAPI(sail.NewStore(sail.NewModel()), graph.New(), reg))
	defer srv.Close()
	file := writeFile(t, "data.nq", bobAndAlice)

	out, err := execute(t, "push", "--uri", srv.URL, file)
	require.NoError(t, err)
	require.Equal(t, "Successfully wrote 2 statements.\n", out)

	out, err = execute(t, "pull", "--uri", srv.URL)
	require.NoError(t, err)
	require.Len(t, lines(out), 2)

	_, err = execute(t, "push", "--uri", srv.URL, "--format", "nope", file)
	require.Error(t, err)
}

func TestConvert(t *testing.T) {
	a := writeFile(t, "a.nq", bobAndAlice)
	b := writeFile(t, "b.nq", `<http://foo.org/bar#Bob> <http://foo.org/bar#likes> <http://foo.org/bar#Alice> .
<http://foo.org/bar#Bob> <http://foo.org/bar#knows> <http://foo.org/bar#Carol> .
`)
	dst := filepath.Join(t.TempDir(), "out.nq")
	out, err := execute(t, "convert", a, b, dst)
	require.NoError(t, err)
	require.Contains(t, out, "3 statements written to "+dst)

	_, err = execute(t, "convert", a)
	require.Error(t, err)
}
