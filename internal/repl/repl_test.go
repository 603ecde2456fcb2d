// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/plugin/builtin"
	"github.com/cayleygraph/rdfsail/sail"
)

var testSplitLines = []struct {
	line              string
	expectedCommand   string
	expectedArguments string
}{
	{
		line:              ":a arg1 arg2 arg3 .",
		expectedCommand:   ":a",
		expectedArguments: " arg1 arg2 arg3 .",
	},
	{
		line:              ":debug t",
		expectedCommand:   ":debug",
		expectedArguments: " t",
	},
	{
		line: "",
		// expectedCommand is nil
		// expectedArguments is nil
	},
	{
		line:              `:d <http://one.example/subject1> <http://one.example/predicate1> <http://one.example/object1> . # comments here`,
		expectedCommand:   ":d",
		expectedArguments: ` <http://one.example/subject1> <http://one.example/predicate1> <http://one.example/object1> . # comments here`,
	},
	{
		line:              `  :run rules  retract=true `,
		expectedCommand:   ":run",
		expectedArguments: ` rules  retract=true`,
	},
}

func TestSplitLines(t *testing.T) {
	for _, testcase := range testSplitLines {
		command, arguments := splitLine(testcase.line)
		require.Equal(t, testcase.expectedCommand, command)
		require.Equal(t, testcase.expectedArguments, arguments)
	}
}

const (
	bobLikesAlice = `<http://foo.org/bar#Bob> <http://foo.org/bar#likes> <http://foo.org/bar#Alice> .`
	aliceLikesBob = `<http://foo.org/bar#Alice> <http://foo.org/bar#likes> <http://foo.org/bar#Bob> .`
)

func newSession(t *testing.T) (*Session, *bytes.Buffer) {
	reg, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return NewSession(sail.NewStore(sail.NewModel()), graph.New(), reg, out), out
}

func eval(t *testing.T, s *Session, out *bytes.Buffer, line string) string {
	out.Reset()
	require.NoError(t, s.Eval(context.TODO(), line))
	return out.String()
}

func TestSession(t *testing.T) {
	s, out := newSession(t)

	eval(t, s, out, ":a "+bobLikesAlice)
	eval(t, s, out, ":a "+aliceLikesBob)
	require.Equal(t, "2 asserted, 0 inferred\n", eval(t, s, out, ":size"))
	require.Equal(t, 2, s.Graph.Read().VertexCount())
	require.Equal(t, 2, s.Graph.Read().TransactionCount())

	require.Contains(t, eval(t, s, out, ":run rules"), "info: 1 statements inferred")
	require.Equal(t, "2 asserted, 1 inferred\n", eval(t, s, out, ":size"))

	require.Empty(t, eval(t, s, out, "PREFIX : <http://foo.org/bar#>"))
	require.True(t, s.Pending())
	require.Empty(t, eval(t, s, out, "CONSTRUCT { ?p :relatesTo ?o }"))
	res := eval(t, s, out, "WHERE { ?p :relatesTo ?o }")
	require.False(t, s.Pending())
	require.Contains(t, res, "<http://foo.org/bar#likes> <http://foo.org/bar#relatesTo> <http://foo.org/bar#Cryptography> .")
	require.Contains(t, res, "1 Result\n")

	eval(t, s, out, ":d "+bobLikesAlice)
	require.Equal(t, "1 asserted, 1 inferred\n", eval(t, s, out, ":size"))
	require.Equal(t, "no such statement\n", eval(t, s, out, ":d "+bobLikesAlice))

	// the graph still holds both edges
	require.Equal(t, "2 asserted statements\n", eval(t, s, out, ":sync"))
	require.Equal(t, "2 asserted, 1 inferred\n", eval(t, s, out, ":size"))

	require.Contains(t, eval(t, s, out, ":plugins"), "rules")
	require.Contains(t, eval(t, s, out, "help"), ":run <plugin>")
}

func TestSessionErrors(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.TODO()

	require.Error(t, s.Eval(ctx, ":bogus"))
	require.Error(t, s.Eval(ctx, ":a not a statement"))
	require.Error(t, s.Eval(ctx, ":debug maybe"))
	require.Error(t, s.Eval(ctx, ":run"))
	require.True(t, errors.Is(s.Eval(ctx, ":run nope"), plugin.ErrNotFound))
	require.Error(t, s.Eval(ctx, ":run rules retract"))
	require.Equal(t, ErrExit, s.Eval(ctx, "exit"))

	// a failing plugin is reported, not returned
	require.NoError(t, s.Eval(ctx, ":run import-rdf file=/nonexistent/file.nq"))

	require.NoError(t, s.Eval(ctx, "CONSTRUCT { ?s ?p ?o }"))
	require.Error(t, s.Eval(ctx, "WHERE { ?s ?p }"))
	require.False(t, s.Pending())
}
