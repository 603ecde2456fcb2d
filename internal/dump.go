package internal

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/internal/decompressor"
	"github.com/cayleygraph/rdfsail/triple"
)

// Write encodes statements to w in the given format.
func Write(w io.Writer, stmts []triple.Statement, typ string) (int, error) {
	format, err := FormatFor("", typ)
	if err != nil {
		return 0, err
	} else if format.Writer == nil {
		return 0, fmt.Errorf("encoding in %s format is not supported", format.Name)
	}
	qw := format.Writer(w)
	n, err := qw.WriteQuads(triple.Quads(stmts))
	if err != nil {
		qw.Close()
		return n, err
	}
	return n, qw.Close()
}

// Dump writes statements into a file, or to stdout for "-". Files ending
// in .gz are compressed. An empty typ guesses the format from the name.
func Dump(stmts []triple.Statement, outFile, typ string) (int, error) {
	var f *os.File
	if outFile == "-" {
		f = os.Stdout
	} else {
		var err error
		f, err = os.Create(outFile)
		if err != nil {
			return 0, fmt.Errorf("could not open file %q: %v", outFile, err)
		}
		defer f.Close()
		clog.Infof("dumping model to file %q", outFile)
	}
	if typ == "" && outFile != "-" {
		format, err := FormatFor(outFile, "")
		if err != nil {
			return 0, err
		}
		typ = format.Name
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if decompressor.ByName(outFile) == decompressor.Gzip {
		gz = gzip.NewWriter(f)
		w = gz
	}
	n, err := Write(w, stmts, typ)
	if err != nil {
		return n, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return n, err
		}
	}
	if outFile != "-" {
		clog.Infof("%d entries were written", n)
		return n, f.Close()
	}
	return n, nil
}
