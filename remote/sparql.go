package remote

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/triple"
)

const describeAccept = "application/n-quads, application/n-triples;q=0.9, application/ld+json;q=0.5"

// SPARQL runs DESCRIBE queries against a SPARQL endpoint.
type SPARQL struct {
	endpoint string
	cli      *http.Client
}

func NewSPARQL(endpoint string) *SPARQL {
	return &SPARQL{endpoint: endpoint, cli: http.DefaultClient}
}

func (s *SPARQL) SetHTTPClient(cli *http.Client) {
	s.cli = cli
}

func (s *SPARQL) Endpoint() string { return s.endpoint }

// DescribeQuery returns the DESCRIBE query text for an IRI.
func DescribeQuery(iri quad.IRI) string {
	return "DESCRIBE " + iri.String()
}

// Describe fetches the statements describing iri. Statements the endpoint
// returns that cannot be represented are logged and skipped.
func (s *SPARQL) Describe(ctx context.Context, iri quad.IRI) ([]triple.Statement, error) {
	u := s.endpoint
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + url.Values{"query": {DescribeQuery(iri)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", describeAccept)
	resp, err := s.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{URL: s.endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	f := formatOf(resp.Header.Get("Content-Type"))
	if f == nil || f.Reader == nil {
		return nil, fmt.Errorf("remote: unsupported response type %q", resp.Header.Get("Content-Type"))
	}
	qr := f.Reader(resp.Body)
	defer qr.Close()
	quads, err := quad.ReadAll(qr)
	if err != nil {
		return nil, fmt.Errorf("remote: cannot parse %s response: %w", f.Name, err)
	}
	out := make([]triple.Statement, 0, len(quads))
	for _, q := range quads {
		st, err := triple.FromQuad(q)
		if err != nil {
			clog.Warningf("remote: skipping statement from %s: %v", s.endpoint, err)
			continue
		}
		out = append(out, st)
	}
	remoteStatements.Add(float64(len(out)))
	return out, nil
}

func formatOf(contentType string) *quad.Format {
	if contentType == "" {
		return quad.FormatByName("nquads")
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	if mt == "text/plain" {
		return quad.FormatByName("nquads")
	}
	return quad.FormatByMime(mt)
}
