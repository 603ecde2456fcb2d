package builtin

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/remote"
	"github.com/cayleygraph/rdfsail/triple"
)

// Remote plugin parameters.
const (
	QueryTypeParam = "query_type"
	IDsParam       = "ids"
	EndpointParam  = "endpoint"
	IRIsParam      = "iris"
	RDFMapParam    = "rdfmap"
)

// NewRemoteQuery returns the plugin querying a remote graph-analytics
// service for the selected vertices.
func NewRemoteQuery(opts Options) plugin.Plugin {
	queries := opts.Queries
	if queries == nil {
		queries = remote.NewRegistry()
	}
	def := ""
	if opts.Remote != nil {
		def = opts.Remote.Addr()
	}
	return &plugin.Func{
		ID:   RemoteQuery,
		Type: plugin.Enrichment,
		Schema: plugin.Schema{
			{Name: URLParam, Description: "Service URL.", Default: def, Required: true},
			{Name: QueryTypeParam, Default: remote.GetOneHop.Label, Choices: queries.Labels()},
			{Name: IDsParam, Description: "Comma separated seeds; defaults to the selected vertices."},
			layerMask(materialize.RemoteRDFLayer),
		},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			ids, err := idsParam(req.Params, IDsParam, req.Records, identifierAttr)
			if err != nil {
				return nil, err
			}
			mask, err := req.Params.Int(LayerMaskParam)
			if err != nil {
				return nil, err
			}
			c := opts.Remote
			if c == nil || c.Addr() != req.Params.Get(URLParam) {
				c = remote.New(req.Params.Get(URLParam))
			}
			label := req.Params.Get(QueryTypeParam)
			in.SetProgress(0, 2, "Querying "+label, false)
			els, err := queries.Query(ctx, c, label, ids)
			if err != nil {
				return nil, err
			}
			in.SetProgress(1, 2, "Materializing", false)
			rs := materialize.New(mask).Elements(els)
			return &plugin.Output{
				Records: rs,
				Message: fmt.Sprintf("%d elements returned for %d seeds", len(els), len(ids)),
			}, nil
		},
	}
}

type describer struct {
	opts  Options
	cache *lru.Cache[string, []triple.Statement]
}

// NewDescribe returns the plugin enriching the selected vertices with the
// statements a SPARQL endpoint gives for them. Answers are cached per
// endpoint and IRI.
func NewDescribe(opts Options) (plugin.Plugin, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []triple.Statement](size)
	if err != nil {
		return nil, err
	}
	d := &describer{opts: opts, cache: cache}
	def := ""
	if opts.SPARQL != nil {
		def = opts.SPARQL.Endpoint()
	}
	return &plugin.Func{
		ID:   Describe,
		Type: plugin.Enrichment,
		Schema: plugin.Schema{
			{Name: EndpointParam, Description: "SPARQL endpoint URL.", Default: def, Required: true},
			{Name: IRIsParam, Description: "Comma separated IRIs; defaults to the selected vertices."},
			{Name: RDFMapParam, Description: "YAML file mapping predicates to attributes."},
			layerMask(materialize.RemoteRDFLayer),
		},
		Run: d.run,
	}, nil
}

func (d *describer) run(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
	ids, err := idsParam(req.Params, IRIsParam, req.Records, rdfIdentifierAttr, identifierAttr)
	if err != nil {
		return nil, err
	}
	mask, err := req.Params.Int(LayerMaskParam)
	if err != nil {
		return nil, err
	}
	mat := materialize.New(mask)
	if path := req.Params.Get(RDFMapParam); path != "" {
		if mat.Map, err = bridge.OpenRDFMap(path); err != nil {
			return nil, err
		}
	}
	endpoint := req.Params.Get(EndpointParam)
	src := d.opts.SPARQL
	if src == nil || src.Endpoint() != endpoint {
		src = remote.NewSPARQL(endpoint)
	}

	var stmts []triple.Statement
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iri := bridge.ResourceIRI(id)
		in.SetProgress(i, len(ids), "Describing "+string(iri), false)
		key := endpoint + " " + string(iri)
		got, ok := d.cache.Get(key)
		if !ok {
			if got, err = src.Describe(ctx, iri); err != nil {
				return nil, err
			}
			d.cache.Add(key, got)
		} else if clog.V(2) {
			clog.Infof("describe: cached answer for %v", iri)
		}
		stmts = append(stmts, got...)
	}
	stmts = triple.Unique(stmts)
	return &plugin.Output{
		Asserted: stmts,
		Batch:    mat.Statements(stmts),
		Message:  fmt.Sprintf("%d statements describing %d resources", len(stmts), len(ids)),
	}, nil
}
