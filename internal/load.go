package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	"github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/internal/decompressor"
	"github.com/cayleygraph/rdfsail/triple"
)

// DefaultFormat is used when a format can be neither given nor guessed.
const DefaultFormat = "nquads"

// FormatFor returns the format named typ, or the one matching the file
// extension of path when typ is empty. Compression suffixes are ignored.
func FormatFor(path, typ string) (*quad.Format, error) {
	if typ == "" {
		if f := quad.FormatByExt(filepath.Ext(decompressor.TrimExt(path))); f != nil {
			return f, nil
		}
		typ = DefaultFormat
	}
	if typ == "quad" {
		typ = DefaultFormat
	}
	f := quad.FormatByName(typ)
	if f == nil {
		return nil, fmt.Errorf("unknown quad format %q", typ)
	}
	return f, nil
}

// Open opens a local file or fetches an http(s) URL. The caller closes the
// returned reader.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "file" || u.Scheme == "" {
		// Don't alter relative URL path or non-URL path parameter.
		if u != nil && u.Scheme != "" && err == nil {
			// Recovery heuristic for mistyping "file://path/to/file".
			path = filepath.Join(u.Host, u.Path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open file %q: %v", path, err)
		}
		return f, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get resource <%s>: %v", u, err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("could not get resource <%s>: %s", u, res.Status)
	}
	return res.Body, nil
}

// NewReader returns a quad reader over r, decompressing it if needed.
// "cquad" and "nquad" select the N-Quads reader without and with raw
// literals.
func NewReader(r io.Reader, path, typ string) (quad.ReadCloser, error) {
	r, err := decompressor.New(r)
	if err != nil {
		return nil, err
	}
	switch typ {
	case "cquad":
		return nquads.NewReader(r, false), nil
	case "nquad":
		return nquads.NewReader(r, true), nil
	}
	rf, err := FormatFor(path, typ)
	if err != nil {
		return nil, err
	} else if rf.Reader == nil {
		return nil, fmt.Errorf("decoding of %q is not supported", rf.Name)
	}
	return rf.Reader(r), nil
}

// StatementWriter passes valid quads to a function as statements. Invalid
// quads are logged and skipped.
type StatementWriter struct {
	Fn      func(triple.Statement) error
	Skipped int
}

var _ quad.BatchWriter = (*StatementWriter)(nil)

func (w *StatementWriter) WriteQuad(q quad.Quad) error {
	st, err := triple.FromQuad(q)
	if err != nil {
		w.Skipped++
		clog.Warningf("skipping %v: %v", q, err)
		return nil
	}
	return w.Fn(st)
}

func (w *StatementWriter) WriteQuads(buf []quad.Quad) (int, error) {
	for i, q := range buf {
		if err := w.WriteQuad(q); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// Read loads every valid statement from path. See DecompressAndLoad.
func Read(ctx context.Context, path, typ string) ([]triple.Statement, error) {
	var out []triple.Statement
	w := &StatementWriter{Fn: func(st triple.Statement) error {
		out = append(out, st)
		return nil
	}}
	if err := DecompressAndLoad(ctx, w, quad.DefaultBatch, path, typ); err != nil {
		return nil, err
	}
	return out, nil
}

// DecompressAndLoad will load or fetch a graph from the given path,
// decompress it, and copy its quads to dest in batches.
func DecompressAndLoad(ctx context.Context, dest quad.BatchWriter, batch int, path, typ string) error {
	if path == "" {
		return nil
	}
	f, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

	qr, err := NewReader(f, path, typ)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}
	defer qr.Close()

	if batch <= 0 {
		batch = quad.DefaultBatch
	}
	_, err = quad.CopyBatch(&batchLogger{BatchWriter: dest, ctx: ctx}, qr, batch)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	return nil
}

type batchLogger struct {
	cnt int
	ctx context.Context
	quad.BatchWriter
}

func (w *batchLogger) WriteQuads(quads []quad.Quad) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := w.BatchWriter.WriteQuads(quads)
	if clog.V(2) {
		w.cnt += n
		clog.Infof("Wrote %d quads.", w.cnt)
	}
	return n, err
}
