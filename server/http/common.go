package sailhttp

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/cayleygraph/quad"
)

const (
	defaultFormat      = "nquads"
	hdrContentType     = "Content-Type"
	hdrContentEncoding = "Content-Encoding"
	hdrAccept          = "Accept"
	hdrAcceptEncoding  = "Accept-Encoding"
	contentTypeJSON    = "application/json"
)

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	w.Write([]byte(`{"error": `))
	var s string
	switch err := err.(type) {
	case string:
		s = err
	case error:
		s = err.Error()
	default:
		s = fmt.Sprint(err)
	}
	data, _ := json.Marshal(s)
	w.Write(data)
	w.Write([]byte(`}`))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// parseAccept returns the media types or codings listed in a header, in
// order, without their parameters.
func parseAccept(h http.Header, name string) []string {
	var out []string
	for _, line := range h.Values(name) {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if mt, _, err := mime.ParseMediaType(part); err == nil {
				part = mt
			} else if i := strings.IndexByte(part, ';'); i >= 0 {
				part = strings.TrimSpace(part[:i])
			}
			out = append(out, part)
		}
	}
	return out
}

func getFormat(r *http.Request, formKey string, acceptName string) *quad.Format {
	var format *quad.Format
	if formKey != "" {
		if name := r.FormValue(formKey); name != "" {
			format = quad.FormatByName(name)
			if format == nil {
				return nil
			}
		}
	}
	if acceptName != "" && format == nil {
		for _, mt := range parseAccept(r.Header, acceptName) {
			if format = quad.FormatByMime(mt); format != nil {
				break
			}
		}
	}
	if format == nil {
		format = quad.FormatByName(defaultFormat)
	}
	return format
}

func readerFrom(r *http.Request, acceptName string) (io.ReadCloser, error) {
	if specs := parseAccept(r.Header, acceptName); len(specs) != 0 && specs[0] == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, err
		}
		return zr, nil
	}
	return r.Body, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func writerFrom(w http.ResponseWriter, r *http.Request, acceptName string) io.WriteCloser {
	for _, s := range parseAccept(r.Header, acceptName) {
		if s == "gzip" {
			w.Header().Set(hdrContentEncoding, s)
			return gzip.NewWriter(w)
		}
	}
	return nopWriteCloser{Writer: w}
}
