// Package builtin provides the standard plugins: RDFS, rule and OWL
// inference, remote graph queries, SPARQL DESCRIBE enrichment, and RDF
// import and export.
package builtin

import (
	"fmt"
	"strconv"

	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/inference/owl"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/remote"
)

// Plugin names.
const (
	RDFS          = "rdfs"
	Rules         = "rules"
	OWL           = "owl"
	RemoteQuery   = "remote-query"
	Describe      = "sparql-describe"
	ImportRDF     = "import-rdf"
	ExportRDF     = "export-rdf"
	ClearInferred = "clear-inferred"
)

// LayerMaskParam is accepted by every plugin that creates graph elements.
const LayerMaskParam = "layer_mask"

// DefaultCacheSize is the number of DESCRIBE answers kept per endpoint.
const DefaultCacheSize = 256

// Options configure the builtin plugins. Zero values select defaults.
type Options struct {
	// Remote is the default graph-analytics connector.
	Remote  *remote.Client
	Queries *remote.Registry
	// SPARQL is the default DESCRIBE endpoint.
	SPARQL *remote.SPARQL
	// Oracle is used by the OWL plugin when no reasoner is selected.
	Oracle owl.Oracle
	// ReasonerFormat is the default document format exchanged with the
	// reasoner.
	ReasonerFormat string
	ReasonerDir    string
	CacheSize      int
}

// All returns every builtin plugin.
func All(opts Options) ([]plugin.Plugin, error) {
	desc, err := NewDescribe(opts)
	if err != nil {
		return nil, err
	}
	return []plugin.Plugin{
		NewRDFS(),
		NewRules(),
		NewOWL(opts),
		NewRemoteQuery(opts),
		desc,
		NewImportRDF(),
		NewExportRDF(),
		NewClearInferred(),
	}, nil
}

// NewRegistry returns a registry holding every builtin plugin.
func NewRegistry(opts Options) (*plugin.Registry, error) {
	ps, err := All(opts)
	if err != nil {
		return nil, err
	}
	return plugin.NewRegistry(ps...)
}

func layerMask(def int) plugin.Parameter {
	return plugin.Parameter{
		Name:        LayerMaskParam,
		Description: "Layer mask of the created elements.",
		Default:     strconv.Itoa(def),
	}
}

// selection returns the distinct values of the given vertex attributes in
// the selected records, source before destination, in record order. For
// each endpoint the first non-empty attribute wins.
func selection(rs *recordstore.Store, attrs ...string) []string {
	if rs == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records() {
		for _, prefix := range []string{recordstore.Source, recordstore.Destination} {
			for _, a := range attrs {
				v := r[prefix+a]
				if v == "" {
					continue
				}
				if _, ok := seen[v]; !ok {
					seen[v] = struct{}{}
					out = append(out, v)
				}
				break
			}
		}
	}
	return out
}

func idsParam(vals plugin.Values, name string, rs *recordstore.Store, attrs ...string) ([]string, error) {
	ids := vals.List(name)
	if len(ids) == 0 {
		ids = selection(rs, attrs...)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no %s given and nothing selected", name)
	}
	return ids, nil
}

var (
	identifierAttr    = graph.VertexIdentifier.Name
	rdfIdentifierAttr = graph.VertexRDFIdentifier.Name
)
