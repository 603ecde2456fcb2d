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

// Package decompressor recognizes compressed RDF documents by content and
// by file name.
package decompressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"
)

// Compression is a supported compression scheme.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	}
	return "none"
}

var magics = []struct {
	c     Compression
	magic []byte
	ext   string
}{
	{Gzip, []byte("\x1f\x8b"), ".gz"},
	{Bzip2, []byte("BZh"), ".bz2"},
}

// Detect peeks at r and returns a reader of the decompressed content along
// with the detected compression. Inputs too short to carry a header are
// returned as is.
func Detect(r io.Reader) (io.Reader, Compression, error) {
	br := bufio.NewReader(r)
	buf, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, None, err
	}
	for _, m := range magics {
		if !bytes.HasPrefix(buf, m.magic) {
			continue
		}
		switch m.c {
		case Gzip:
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, Gzip, err
			}
			return zr, Gzip, nil
		case Bzip2:
			return bzip2.NewReader(br), Bzip2, nil
		}
	}
	return br, None, nil
}

// New returns a reader of the decompressed content of r.
func New(r io.Reader) (io.Reader, error) {
	rd, _, err := Detect(r)
	return rd, err
}

// ByName returns the compression implied by the extension of a file name.
func ByName(path string) Compression {
	ext := filepath.Ext(path)
	for _, m := range magics {
		if m.ext == ext {
			return m.c
		}
	}
	return None
}

// TrimExt removes a compression extension from a file name.
func TrimExt(path string) string {
	if ByName(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
