// Copyright 2017 The Cayley Authors. All rights reserved.
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

// Package owl bridges a model to an OWL reasoner.
//
// The model is exported to an ontology document, handed to an Oracle together
// with the requested axiom categories, and the reasoner output is read back.
// Only statements not already present in the model are returned.
package owl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/inference"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// ErrReasonerFailed is returned when the oracle panics.
var ErrReasonerFailed = errors.New("owl: reasoner failed")

// DefaultFormat is the ontology document format used when none is set.
const DefaultFormat = "nquads"

// Reasoner runs an Oracle over a model.
type Reasoner struct {
	Oracle     Oracle
	Format     string
	Categories []Category
	// Dir is the parent of the per-run temporary directory.
	Dir string
}

var _ inference.Inferencer = (*Reasoner)(nil)

// NewReasoner returns a reasoner using o for all categories. A nil oracle
// selects the in-process RuleOracle.
func NewReasoner(o Oracle) *Reasoner {
	if o == nil {
		o = &RuleOracle{}
	}
	return &Reasoner{Oracle: o, Format: DefaultFormat, Categories: AllCategories}
}

func formatByName(name string) *quad.Format {
	if name == "" {
		name = DefaultFormat
	}
	return quad.FormatByName(name)
}

func (r *Reasoner) format() (*quad.Format, error) {
	f := formatByName(r.Format)
	if f == nil || f.Reader == nil || f.Writer == nil {
		return nil, fmt.Errorf("owl: unsupported document format %q", r.Format)
	}
	return f, nil
}

// Infer implements inference.Inferencer.
func (r *Reasoner) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	out, _, err := r.Run(ctx, m)
	return out, err
}

// Run reasons over m and returns the inferred statements together with the
// run record. On failure the run is in the Failed state and no statements
// are returned.
func (r *Reasoner) Run(ctx context.Context, m *sail.Model) ([]triple.Statement, *inference.Run, error) {
	run := inference.NewRun("owl")
	out, err := r.run(ctx, run, m)
	if err != nil {
		if st := run.State(); !st.Terminal() && st != inference.Idle {
			return nil, run, run.Fail(err)
		}
		return nil, run, err
	}
	return out, run, nil
}

func (r *Reasoner) run(ctx context.Context, run *inference.Run, m *sail.Model) ([]triple.Statement, error) {
	f, err := r.format()
	if err != nil {
		return nil, err
	}
	if err := run.Transition(inference.Exporting); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(r.Dir, "rdfsail-owl-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	ext := ".doc"
	if len(f.Ext) != 0 {
		ext = f.Ext[0]
	}
	req := Request{
		Input:      filepath.Join(dir, "input"+ext),
		Output:     filepath.Join(dir, "output"+ext),
		Format:     f.Name,
		Categories: r.Categories,
	}
	if len(req.Categories) == 0 {
		req.Categories = AllCategories
	}
	if err := writeDocument(req.Input, f, m.Statements()); err != nil {
		return nil, fmt.Errorf("owl: export: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := run.Transition(inference.Reasoning); err != nil {
		return nil, err
	}
	if err := r.reason(ctx, req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := run.Transition(inference.Importing); err != nil {
		return nil, err
	}
	stmts, err := readDocument(req.Output, f)
	if err != nil {
		return nil, fmt.Errorf("owl: import: %w", err)
	}
	out := inference.Dedup(m, stmts, 0)
	if err := run.Transition(inference.Done); err != nil {
		return nil, err
	}
	if clog.V(1) {
		clog.Infof("owl: %d statements read, %d inferred", len(stmts), len(out))
	}
	return out, nil
}

func (r *Reasoner) reason(ctx context.Context, req Request) (err error) {
	defer func() {
		if e := recover(); e != nil {
			clog.Errorf("owl: reasoner panic: %v\n%s", e, debug.Stack())
			err = ErrReasonerFailed
		}
	}()
	return r.Oracle.Reason(ctx, req)
}

func writeDocument(path string, f *quad.Format, stmts []triple.Statement) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := f.Writer(file)
	if _, err := w.WriteQuads(triple.Quads(stmts)); err != nil {
		w.Close()
		file.Close()
		return err
	}
	if err := w.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func readDocument(path string, f *quad.Format) ([]triple.Statement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readStatements(file, f)
}

func readStatements(r io.Reader, f *quad.Format) ([]triple.Statement, error) {
	qr := f.Reader(r)
	defer qr.Close()
	var out []triple.Statement
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		st, err := triple.FromQuad(q)
		if err != nil {
			clog.Warningf("owl: skipping %v: %v", q, err)
			continue
		}
		out = append(out, st)
	}
}
