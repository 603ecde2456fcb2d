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

// Package kv persists model snapshots in any key-value backend supported by
// hidalgo (btree, bolt, leveldb, badger, ...).
//
// Each snapshot lives under its own name. Statements are stored as N-Quads
// lines keyed by insertion order, so a loaded model keeps the order of the
// saved one.
package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cayleygraph/quad/nquads"
	"github.com/hidal-go/hidalgo/kv"
	_ "github.com/hidal-go/hidalgo/kv/all"
	"github.com/hidal-go/hidalgo/kv/flat"
	"github.com/hidal-go/hidalgo/kv/flat/btree"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// Memory is the name of the volatile in-memory backend.
const Memory = "memory"

var (
	ErrNotFound       = errors.New("snapshot not found")
	ErrUnknownBackend = errors.New("unknown kv backend")
)

var (
	bucketModel = []byte("model")
	partMeta    = []byte("m")
	partStmt    = []byte("s")
	partNS      = []byte("n")
)

// Backends lists the names of the available backends.
func Backends() []string {
	names := []string{Memory}
	for _, r := range kv.List() {
		names = append(names, r.Name)
	}
	sort.Strings(names[1:])
	return names
}

// IsPersistent reports whether a backend keeps data on disk.
func IsPersistent(backend string) bool {
	for _, r := range kv.List() {
		if r.Name == backend {
			return !r.Volatile
		}
	}
	return false
}

// DB stores model snapshots.
type DB struct {
	db      kv.KV
	backend string
}

// OpenMemory opens a volatile in-memory database.
func OpenMemory() *DB {
	return &DB{db: flat.Upgrade(btree.New()), backend: Memory}
}

// Open opens a database with the named backend at path.
func Open(backend, path string) (*DB, error) {
	if backend == "" || backend == Memory {
		return OpenMemory(), nil
	}
	for _, r := range kv.List() {
		if r.Name != backend {
			continue
		}
		db, err := r.OpenPath(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s database at %q: %w", backend, path, err)
		}
		clog.Infof("opened %s snapshot database at %q", backend, path)
		return &DB{db: db, backend: backend}, nil
	}
	return nil, fmt.Errorf("%q: %w", backend, ErrUnknownBackend)
}

// Backend returns the backend name.
func (d *DB) Backend() string { return d.backend }

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

func prefix(name string, part []byte) kv.Key {
	return kv.Key{bucketModel, []byte(name), part}
}

func seqKey(name string, part []byte, seq uint64) kv.Key {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return append(prefix(name, part), b)
}

// Save replaces the snapshot stored under name with the contents of m.
func (d *DB) Save(ctx context.Context, name string, m *sail.Model) error {
	defer prometheus.NewTimer(saveSeconds).ObserveDuration()
	stmts := m.Statements()
	nss := m.Namespaces().List()
	err := kv.Update(ctx, d.db, func(tx kv.Tx) error {
		for _, part := range [][]byte{partStmt, partNS} {
			if err := deleteAll(ctx, tx, prefix(name, part)); err != nil {
				return err
			}
		}
		for i, st := range stmts {
			if err := tx.Put(seqKey(name, partStmt, uint64(i)), kv.Value(st.String())); err != nil {
				return err
			}
		}
		for _, ns := range nss {
			if err := tx.Put(append(prefix(name, partNS), []byte(ns.Prefix)), kv.Value(ns.IRI)); err != nil {
				return err
			}
		}
		return tx.Put(kv.Key{bucketModel, []byte(name), partMeta}, kv.Value(strconv.Itoa(len(stmts))))
	})
	if err != nil {
		return fmt.Errorf("cannot save snapshot %q: %w", name, err)
	}
	savedStatements.Add(float64(len(stmts)))
	clog.Infof("saved snapshot %q: %d statements", name, len(stmts))
	return nil
}

func deleteAll(ctx context.Context, tx kv.Tx, pref kv.Key) error {
	var keys []kv.Key
	it := tx.Scan(pref)
	for it.Next(ctx) {
		k := it.Key()
		keys = append(keys, append(kv.Key{}, k...))
	}
	err := it.Err()
	it.Close()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := tx.Del(k); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the snapshot stored under name.
func (d *DB) Load(ctx context.Context, name string) (*sail.Model, error) {
	m := sail.NewModel()
	err := kv.View(d.db, func(tx kv.Tx) error {
		if _, err := tx.Get(ctx, kv.Key{bucketModel, []byte(name), partMeta}); err == kv.ErrNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		it := tx.Scan(prefix(name, partStmt))
		defer it.Close()
		for it.Next(ctx) {
			q, err := nquads.Parse(string(it.Val()))
			if err != nil {
				return err
			}
			st, err := triple.FromQuad(q)
			if err != nil {
				clog.Warningf("snapshot %q: skipping %v", name, err)
				continue
			}
			m.Add(st)
		}
		if err := it.Err(); err != nil {
			return err
		}
		nit := tx.Scan(prefix(name, partNS))
		defer nit.Close()
		for nit.Next(ctx) {
			k := nit.Key()
			m.Namespaces().Register(string(k[len(k)-1]), string(nit.Val()))
		}
		return nit.Err()
	})
	if err == ErrNotFound {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("cannot load snapshot %q: %w", name, err)
	}
	loadedStatements.Add(float64(m.Len()))
	return m, nil
}
