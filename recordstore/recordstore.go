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

// Package recordstore holds batches of flat records exchanged with the host
// graph.
//
// Each record describes one vertex, or a source vertex, a destination vertex
// and the transaction between them. Keys are attribute names qualified by
// the element they apply to, e.g. "source.Identifier" or "transaction.Type".
package recordstore

import (
	"encoding/json"
	"sort"
	"strings"
)

// Key prefixes.
const (
	Source      = "source."
	Destination = "destination."
	Transaction = "transaction."
	Graph       = "graph."
)

// Directed is the transaction key holding the direction flag.
const Directed = "Directed"

// Record is one row of a Store.
type Record map[string]string

// Part returns the attributes of the record under prefix, unqualified.
func (r Record) Part(prefix string) map[string]string {
	var m map[string]string
	for k, v := range r {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[strings.TrimPrefix(k, prefix)] = v
	}
	return m
}

// Store is an ordered batch of records. It is not safe for concurrent use.
type Store struct {
	records []Record
}

// New creates an empty store.
func New() *Store { return &Store{} }

// Add starts a new record; subsequent Set calls apply to it.
func (s *Store) Add() {
	s.records = append(s.records, Record{})
}

// Set sets a key on the current record, starting one if the store is empty.
func (s *Store) Set(key, value string) {
	if len(s.records) == 0 {
		s.Add()
	}
	s.records[len(s.records)-1][key] = value
}

// Get returns a key of the current record.
func (s *Store) Get(key string) string {
	if len(s.records) == 0 {
		return ""
	}
	return s.records[len(s.records)-1][key]
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Record returns the record at position i.
func (s *Store) Record(i int) Record { return s.records[i] }

// Records returns a copy of all records.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		c := make(Record, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

// Keys returns the sorted set of keys used by any record.
func (s *Store) Keys() []string {
	seen := make(map[string]struct{})
	for _, r := range s.records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Append adds copies of all records of o.
func (s *Store) Append(o *Store) {
	s.records = append(s.records, o.Records()...)
}

type jsonStore struct {
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

// MarshalJSON encodes the store as sorted columns and rows. Equal stores
// always encode to identical bytes.
func (s *Store) MarshalJSON() ([]byte, error) {
	js := jsonStore{Columns: s.Keys(), Rows: make([][]*string, 0, len(s.records))}
	for _, r := range s.records {
		row := make([]*string, len(js.Columns))
		for i, k := range js.Columns {
			if v, ok := r[k]; ok {
				v := v
				row[i] = &v
			}
		}
		js.Rows = append(js.Rows, row)
	}
	return json.Marshal(js)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (s *Store) UnmarshalJSON(data []byte) error {
	var js jsonStore
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	s.records = make([]Record, 0, len(js.Rows))
	for _, row := range js.Rows {
		r := make(Record, len(row))
		for i, v := range row {
			if v != nil && i < len(js.Columns) {
				r[js.Columns[i]] = *v
			}
		}
		s.records = append(s.records, r)
	}
	return nil
}
