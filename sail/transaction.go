// Copyright 2015 The Cayley Authors. All rights reserved.
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
	"errors"

	"github.com/cayleygraph/rdfsail/triple"
)

type Procedure int8

func (p Procedure) String() string {
	switch p {
	case +1:
		return "approve"
	case -1:
		return "deprecate"
	default:
		return "invalid"
	}
}

// The different types of actions a transaction can do.
const (
	Approve   Procedure = +1
	Deprecate Procedure = -1
)

type Delta struct {
	Statement triple.Statement
	Action    Procedure
}

var ErrInvalidAction = errors.New("invalid action")

// DeltaError records an error and the delta that caused it.
type DeltaError struct {
	Delta Delta
	Err   error
}

func (e *DeltaError) Error() string {
	if !e.Delta.Statement.IsValid() {
		return e.Err.Error()
	}
	return e.Delta.Action.String() + " " + e.Delta.Statement.String() + ": " + e.Err.Error()
}

func (e *DeltaError) Unwrap() error { return e.Err }

type deltaKey struct {
	key    triple.Key
	action Procedure
}

// Transaction stores a bunch of Deltas to apply atomically on a Sink.
type Transaction struct {
	// Deltas stores the deltas in the right order
	Deltas []Delta
	// deltas indexes Deltas by statement key to avoid duplications
	deltas map[deltaKey]struct{}
}

// NewTransaction initialize a new transaction.
func NewTransaction() *Transaction {
	return &Transaction{Deltas: make([]Delta, 0, 10), deltas: make(map[deltaKey]struct{}, 10)}
}

// Approve adds a statement to the transaction if it is not already present in it.
// If there is a 'deprecate' delta for that statement, it will remove that delta
// from the transaction instead of actually adding the statement.
func (t *Transaction) Approve(st triple.Statement) {
	ad, rd := createDeltas(st)
	if _, ok := t.deltas[key(ad)]; ok {
		return
	}
	if _, ok := t.deltas[key(rd)]; ok {
		t.deleteDelta(rd)
	} else {
		t.addDelta(ad)
	}
}

// Deprecate adds a statement to remove to the transaction.
// The statement will be removed from the model if it is not approved in the
// same transaction, otherwise it simply cancels the approval.
func (t *Transaction) Deprecate(st triple.Statement) {
	ad, rd := createDeltas(st)
	if _, ok := t.deltas[key(ad)]; ok {
		t.deleteDelta(ad)
	} else if _, ok := t.deltas[key(rd)]; !ok {
		t.addDelta(rd)
	}
}

// Len returns the number of pending deltas.
func (t *Transaction) Len() int { return len(t.Deltas) }

func createDeltas(st triple.Statement) (ad, rd Delta) {
	ad = Delta{Statement: st, Action: Approve}
	rd = Delta{Statement: st, Action: Deprecate}
	return
}

func key(d Delta) deltaKey {
	return deltaKey{key: d.Statement.Key(), action: d.Action}
}

func (t *Transaction) addDelta(d Delta) {
	t.Deltas = append(t.Deltas, d)
	t.deltas[key(d)] = struct{}{}
}

func (t *Transaction) deleteDelta(d Delta) {
	k := key(d)
	delete(t.deltas, k)
	for i, id := range t.Deltas {
		if key(id) == k {
			t.Deltas = append(t.Deltas[:i], t.Deltas[i+1:]...)
			break
		}
	}
}
