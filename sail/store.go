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

package sail

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/triple"
)

// Store keeps asserted statements apart from inferred ones. Each side is
// its own Source, so either can be forked or read independently.
type Store struct {
	explicit *Source
	inferred *Source
}

// NewStore creates a store over an explicit model. A nil model starts empty.
// The inferred model shares the namespace bindings of the explicit one.
func NewStore(explicit *Model) *Store {
	if explicit == nil {
		explicit = NewModel()
	}
	return &Store{
		explicit: NewSource(explicit),
		inferred: NewSource(newModel(explicit.ns)),
	}
}

// Explicit returns the source of asserted statements.
func (s *Store) Explicit() *Source { return s.explicit }

// Inferred returns the source of inferred statements.
func (s *Store) Inferred() *Source { return s.inferred }

// Connection opens a connection at isolation level None.
func (s *Store) Connection() *Connection {
	return &Connection{store: s}
}

// Connection is a convenience view over both sources of a store.
type Connection struct {
	store *Store
}

func (c *Connection) sink(src *Source) *Sink {
	// None is always available.
	sk, _ := src.Sink(None)
	return sk
}

// AddStatement asserts a statement once per context, or once in the
// default context when no context is given.
func (c *Connection) AddStatement(subj, pred, obj quad.Value, ctxs ...quad.Value) error {
	sk := c.sink(c.store.explicit)
	if len(ctxs) == 0 {
		return sk.Approve(subj, pred, obj, nil)
	}
	for _, ctx := range ctxs {
		if err := sk.Approve(subj, pred, obj, ctx); err != nil {
			return err
		}
	}
	return nil
}

// RemoveStatements retracts every asserted statement matching the pattern.
func (c *Connection) RemoveStatements(subj, pred, obj quad.Value, ctxs ...quad.Value) (int, error) {
	sk := c.sink(c.store.explicit)
	stmts := c.store.explicit.model.Match(subj, pred, obj, ctxs...)
	for _, st := range stmts {
		if err := sk.Deprecate(st); err != nil {
			return 0, err
		}
	}
	return len(stmts), nil
}

// AddInferred records inferred statements. Statements that are already
// asserted are skipped. It returns the number of new inferred statements.
// Nothing is recorded when one of the statements is invalid.
func (c *Connection) AddInferred(stmts []triple.Statement) (int, error) {
	tx := NewTransaction()
	for _, st := range stmts {
		if c.store.explicit.model.Contains(st) || c.store.inferred.model.Contains(st) {
			continue
		}
		tx.Approve(st)
	}
	if tx.Len() == 0 {
		return 0, nil
	}
	if err := c.sink(c.store.inferred).Apply(tx); err != nil {
		return 0, err
	}
	return tx.Len(), nil
}

// ClearInferred drops every inferred statement.
func (c *Connection) ClearInferred() error {
	return c.sink(c.store.inferred).Clear()
}

// Statements returns the asserted statements matching a pattern, followed
// by the inferred ones when includeInferred is set.
func (c *Connection) Statements(includeInferred bool, subj, pred, obj quad.Value, ctxs ...quad.Value) []triple.Statement {
	out := c.store.explicit.model.Match(subj, pred, obj, ctxs...)
	if includeInferred {
		out = append(out, c.store.inferred.model.Match(subj, pred, obj, ctxs...)...)
	}
	return out
}

// Size returns the number of asserted and inferred statements.
func (c *Connection) Size() (explicit, inferred int) {
	return c.store.explicit.model.Len(), c.store.inferred.model.Len()
}
