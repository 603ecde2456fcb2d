// Copyright 2026 The Cayley Authors. All rights reserved.
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

// Package plugin defines the single interface shared by import, inference,
// enrichment and export operations on a graph, and runs them.
//
// A plugin reads its input from a Request (the graph, its statement store and
// the selected records) and returns an Output. Run applies the output: new
// statements are recorded as inferred, record batches are merged onto the
// graph in one named write transaction.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

var (
	ErrCancelled       = errors.New("plugin: cancelled")
	ErrNotFound        = errors.New("plugin: not found")
	ErrDuplicatePlugin = errors.New("plugin: already registered")
	ErrNoGraph         = errors.New("plugin: request has no graph")
)

// Kind groups plugins by what they do to a graph.
type Kind int

const (
	Import Kind = iota
	Inference
	Enrichment
	Export
	Utility
)

var kindNames = [...]string{"import", "inference", "enrichment", "export", "utility"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Plugin is an operation on a graph.
type Plugin interface {
	Name() string
	Kind() Kind
	Parameters() Schema
	Execute(ctx context.Context, req *Request, in Interaction) (*Output, error)
}

// ExecuteFunc is the body of a plugin.
type ExecuteFunc func(ctx context.Context, req *Request, in Interaction) (*Output, error)

// Func is a Plugin built from data and a function.
type Func struct {
	ID     string
	Type   Kind
	Schema Schema
	Run    ExecuteFunc
}

var _ Plugin = (*Func)(nil)

func (f *Func) Name() string       { return f.ID }
func (f *Func) Kind() Kind         { return f.Type }
func (f *Func) Parameters() Schema { return f.Schema }

func (f *Func) Execute(ctx context.Context, req *Request, in Interaction) (*Output, error) {
	return f.Run(ctx, req, in)
}

// Request is the input of a plugin execution.
type Request struct {
	Graph *graph.Graph
	Store *sail.Store
	// Sync, when set, is refreshed before the plugin runs so that the store
	// reflects the graph.
	Sync    *bridge.Sync
	Params  Values
	Records *recordstore.Store

	model *sail.Model
}

// Model returns the statements the plugin works on: the asserted and
// inferred statements of the store or, without a store, an export of the
// graph. The result is computed once per request and must not be modified.
func (r *Request) Model() *sail.Model {
	if r.model != nil {
		return r.model
	}
	switch {
	case r.Store != nil:
		r.model = r.Store.Explicit().Model().Clone()
		r.model.AddAll(r.Store.Inferred().Model().Statements())
	case r.Graph != nil:
		r.model = bridge.ExportModel(r.Graph.Read())
	default:
		r.model = sail.NewModel()
	}
	return r.model
}

// Output is the result of a plugin execution.
type Output struct {
	// Asserted statements are added to the explicit source of the store.
	Asserted []triple.Statement
	// Statements are recorded in the inferred source of the store.
	Statements []triple.Statement
	// Retractions are removed from the inferred source of the store.
	Retractions []triple.Statement
	// Batch and Records are merged onto the graph.
	Batch   *bridge.Batch
	Records *recordstore.Store
	Message string

	// Set by Run.
	Stats    recordstore.Stats
	Inferred int
	Approved int
}

func (o *Output) writesGraph() bool {
	return o != nil && ((o.Batch != nil && !o.Batch.Empty()) || (o.Records != nil && o.Records.Len() != 0))
}

// Error is a failed plugin execution.
type Error struct {
	Plugin string
	Err    error
}

func (e *Error) Error() string { return e.Plugin + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Registry holds plugins by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates a registry holding ps.
func NewRegistry(ps ...Plugin) (*Registry, error) {
	r := &Registry{plugins: make(map[string]Plugin)}
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a plugin. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("plugin: invalid plugin")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, p.Name())
	}
	r.plugins[p.Name()] = p
	return nil
}

// Lookup returns the named plugin.
func (r *Registry) Lookup(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Plugins returns all plugins sorted by kind, then name.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind() != out[j].Kind() {
			return out[i].Kind() < out[j].Kind()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
