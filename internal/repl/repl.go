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

// Package repl is an interactive shell over a statement store. Lines
// starting with a colon are commands; anything else is a CONSTRUCT query
// evaluated against the asserted and inferred statements.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/peterh/liner"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/inference/rules"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

const (
	ps1 = "rdfsail> "
	ps2 = "...      "

	history = ".rdfsail_history"
)

// ErrExit is returned by Eval when the session should end.
var ErrExit = errors.New("exit")

const help = `Commands:
	:a <statement>            assert an N-Quads statement
	:d <statement>            retract an N-Quads statement
	:run <plugin> [k=v ...]   run a plugin
	:plugins                  list plugins
	:size                     count asserted and inferred statements
	:sync                     replace the asserted statements with the graph export
	:debug [t|f]              toggle debug logging
	help                      this help
	exit                      leave the shell
Anything else is a CONSTRUCT query.
`

// Session is the state shared by the lines of one shell.
type Session struct {
	Store   *sail.Store
	Graph   *graph.Graph
	Plugins *plugin.Registry
	Out     io.Writer
	// Params are added to the parameters of every plugin run.
	Params plugin.Values

	code string
}

// NewSession returns a session over store printing to out.
func NewSession(store *sail.Store, g *graph.Graph, plugins *plugin.Registry, out io.Writer) *Session {
	return &Session{Store: store, Graph: g, Plugins: plugins, Out: out}
}

// Pending reports whether the session waits for the rest of a query.
func (s *Session) Pending() bool { return s.code != "" }

// Eval handles one input line.
func (s *Session) Eval(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if len(line) == 0 || line[0] == '#' {
		return nil
	}
	if s.code == "" {
		cmd, args := splitLine(line)
		args = strings.TrimSpace(args)
		switch cmd {
		case ":debug":
			return s.debug(args)
		case ":a":
			return s.assert(args)
		case ":d":
			return s.retract(args)
		case ":run":
			return s.run(ctx, args)
		case ":plugins":
			s.listPlugins()
			return nil
		case ":size":
			explicit, inferred := s.Store.Connection().Size()
			fmt.Fprintf(s.Out, "%d asserted, %d inferred\n", explicit, inferred)
			return nil
		case ":sync":
			return s.sync(ctx)
		case "help":
			fmt.Fprint(s.Out, help)
			return nil
		case "exit":
			return ErrExit
		default:
			if cmd[0] == ':' {
				return fmt.Errorf("unknown command: %q", cmd)
			}
		}
	}
	s.code += line + "\n"
	if !complete(s.code) {
		return nil
	}
	code := s.code
	s.code = ""
	return s.query(ctx, code)
}

// complete reports whether code holds a template and a pattern group with
// every brace closed.
func complete(code string) bool {
	open := strings.Count(code, "{")
	return open >= 2 && open <= strings.Count(code, "}")
}

func (s *Session) debug(args string) error {
	var (
		on  bool
		err error
	)
	switch args {
	case "t":
		on = true
	case "f":
	default:
		on, err = strconv.ParseBool(args)
		if err != nil {
			return fmt.Errorf("cannot parse %q as a boolean, use 't'|'true' or 'f'|'false'", args)
		}
	}
	if on {
		clog.SetV(2)
	} else {
		clog.SetV(0)
	}
	fmt.Fprintf(s.Out, "Debug set to %t\n", on)
	return nil
}

func parseStatement(args string) (triple.Statement, error) {
	q, err := nquads.Parse(args)
	if err != nil {
		return triple.Statement{}, fmt.Errorf("not a valid statement: %v", err)
	}
	return triple.FromQuad(q)
}

func (s *Session) assert(args string) error {
	st, err := parseStatement(args)
	if err != nil {
		return err
	}
	sink, err := s.Store.Explicit().Sink(sail.None)
	if err != nil {
		return err
	}
	defer sink.Close()
	if err := sink.ApproveStatement(st); err != nil {
		return err
	}
	if s.Graph == nil {
		return nil
	}
	tx := s.Graph.Write("repl")
	materialize.New(materialize.UtilLayer).Statements([]triple.Statement{st}).Apply(tx)
	return tx.Commit()
}

func (s *Session) retract(args string) error {
	st, err := parseStatement(args)
	if err != nil {
		return err
	}
	var ctxs []quad.Value
	if c := st.Context(); c != nil {
		ctxs = append(ctxs, c)
	}
	n, err := s.Store.Connection().RemoveStatements(st.Subject(), st.Predicate(), st.Object(), ctxs...)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(s.Out, "no such statement")
	}
	return nil
}

func (s *Session) sync(ctx context.Context) error {
	if s.Graph == nil {
		return errors.New("no graph attached")
	}
	sy := bridge.NewSync(s.Graph, s.Store)
	defer sy.Close()
	if err := sy.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%d asserted statements\n", s.Store.Explicit().Model().Len())
	return nil
}

func (s *Session) listPlugins() {
	if s.Plugins == nil {
		return
	}
	for _, p := range s.Plugins.Plugins() {
		fmt.Fprintf(s.Out, "%-12v %s\n", p.Kind(), p.Name())
	}
}

func (s *Session) run(ctx context.Context, args string) error {
	if s.Plugins == nil {
		return errors.New("no plugins available")
	}
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return errors.New("usage: :run <plugin> [k=v ...]")
	}
	p, err := s.Plugins.Lookup(fields[0])
	if err != nil {
		return err
	}
	params := make(plugin.Values)
	for k, v := range s.Params {
		if _, ok := p.Parameters().Lookup(k); ok {
			params[k] = v
		}
	}
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("parameter %q is not of the form key=value", f)
		}
		params[k] = v
	}
	_, err = plugin.Run(ctx, p, &plugin.Request{
		Graph:  s.Graph,
		Store:  s.Store,
		Params: params,
	}, &printer{w: s.Out})
	if errors.Is(err, plugin.ErrCancelled) {
		return nil
	}
	// failures were already printed
	var perr *plugin.Error
	if errors.As(err, &perr) {
		return nil
	}
	return err
}

func (s *Session) query(ctx context.Context, code string) error {
	q, err := rules.Parse(code)
	if err != nil {
		return err
	}
	m := s.Store.Explicit().Model().Clone()
	m.AddAll(s.Store.Inferred().Model().Statements())
	start := time.Now()
	out, err := q.Construct(ctx, m)
	if err != nil {
		return err
	}
	for _, st := range out {
		fmt.Fprintln(s.Out, st.String())
	}
	if len(out) > 0 {
		results := "Result"
		if len(out) > 1 {
			results += "s"
		}
		fmt.Fprintf(s.Out, "-----------\n%d %s\n", len(out), results)
		fmt.Fprintf(s.Out, "Elapsed time: %g ms\n\n", float64(time.Since(start).Microseconds())/1e3)
	}
	return nil
}

// printer reports plugin progress and notifications on the terminal.
type printer struct {
	w io.Writer
}

func (p *printer) SetProgress(current, total int, message string, modal bool) {
	fmt.Fprintf(p.w, "[%d/%d] %s\n", current, total, message)
}

func (p *printer) Notify(level plugin.Level, message string) {
	fmt.Fprintf(p.w, "%s: %s\n", level, message)
}

// Repl runs an interactive shell on the terminal until EOF or exit.
func Repl(ctx context.Context, s *Session, timeout time.Duration) error {
	term, err := terminal(history)
	if os.IsNotExist(err) {
		fmt.Printf("creating new history file: %q\n", history)
	}
	defer persist(term, history)

	newCtx := func() (context.Context, func()) { return ctx, func() {} }
	if timeout > 0 {
		newCtx = func() (context.Context, func()) { return context.WithTimeout(ctx, timeout) }
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		prompt := ps1
		if s.Pending() {
			prompt = ps2
		}
		line, err := term.Prompt(prompt)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}
		term.AppendHistory(line)

		nctx, cancel := newCtx()
		err = s.Eval(nctx, line)
		cancel()
		if err == ErrExit {
			return nil
		} else if err != nil {
			fmt.Fprintln(s.Out, "Error:", err)
		}
	}
}

// Splits a line into a command and its arguments
// e.g. ":a b c d ." will be split into ":a" and " b c d ."
func splitLine(line string) (string, string) {
	var command, arguments string

	line = strings.TrimSpace(line)

	// An empty line/a line consisting of whitespace contains neither command nor arguments
	if len(line) > 0 {
		command = strings.Fields(line)[0]

		// A line containing only a command has no arguments
		if len(line) > len(command) {
			arguments = line[len(command):]
		}
	}

	return command, arguments
}

func terminal(path string) (*liner.State, error) {
	term := liner.NewLiner()
	term.SetCtrlCAborts(true)

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, os.Kill)
		<-c

		err := persist(term, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to properly clean up terminal: %v\n", err)
			os.Exit(1)
		}

		os.Exit(0)
	}()

	f, err := os.Open(path)
	if err != nil {
		return term, err
	}
	defer f.Close()
	_, err = term.ReadHistory(f)
	return term, err
}

func persist(term *liner.State, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return fmt.Errorf("could not open %q to append history: %v", path, err)
	}
	defer f.Close()
	_, err = term.WriteHistory(f)
	if err != nil {
		return fmt.Errorf("could not write history to %q: %v", path, err)
	}
	return term.Close()
}
