package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/internal"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/triple"
)

// File plugin parameters.
const (
	FileParam     = "file"
	InferredParam = "inferred"
)

var errNoStore = errors.New("request has no store")

// NewImportRDF returns the plugin importing an RDF document, local or
// remote and optionally compressed, into the graph.
func NewImportRDF() plugin.Plugin {
	return &plugin.Func{
		ID:   ImportRDF,
		Type: plugin.Import,
		Schema: plugin.Schema{
			{Name: FileParam, Description: "Path or URL of the document.", Required: true},
			{Name: FormatParam, Description: "Document format; guessed from the name when empty."},
			{Name: RDFMapParam, Description: "YAML file mapping predicates to attributes."},
			layerMask(materialize.UtilLayer),
		},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
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
			file := req.Params.Get(FileParam)
			in.SetProgress(0, 2, "Reading "+file, false)
			stmts, err := internal.Read(ctx, file, req.Params.Get(FormatParam))
			if err != nil {
				return nil, err
			}
			in.SetProgress(1, 2, "Materializing", false)
			return &plugin.Output{
				Asserted: stmts,
				Batch:    mat.Statements(stmts),
				Message:  fmt.Sprintf("%d statements imported from %s", len(stmts), file),
			}, nil
		},
	}
}

// NewExportRDF returns the plugin writing the asserted statements, and
// optionally the inferred ones, to a document.
func NewExportRDF() plugin.Plugin {
	return &plugin.Func{
		ID:   ExportRDF,
		Type: plugin.Export,
		Schema: plugin.Schema{
			{Name: FileParam, Description: "Output path, or - for stdout. A .gz suffix compresses.", Required: true},
			{Name: FormatParam, Description: "Document format; guessed from the name when empty."},
			{Name: InferredParam, Description: "Include inferred statements.", Default: "false"},
		},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			withInferred, err := req.Params.Bool(InferredParam)
			if err != nil {
				return nil, err
			}
			var stmts []triple.Statement
			if req.Store != nil && !withInferred {
				stmts = req.Store.Explicit().Model().Statements()
			} else {
				stmts = req.Model().Statements()
			}
			file := req.Params.Get(FileParam)
			n, err := internal.Dump(stmts, file, req.Params.Get(FormatParam))
			if err != nil {
				return nil, err
			}
			return &plugin.Output{Message: fmt.Sprintf("%d statements written to %s", n, file)}, nil
		},
	}
}

// NewClearInferred returns the plugin dropping every inferred statement
// from the store. The graph is left untouched.
func NewClearInferred() plugin.Plugin {
	return &plugin.Func{
		ID:   ClearInferred,
		Type: plugin.Utility,
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			if req.Store == nil {
				return nil, errNoStore
			}
			_, n := req.Store.Connection().Size()
			if err := req.Store.Connection().ClearInferred(); err != nil {
				return nil, err
			}
			return &plugin.Output{Message: fmt.Sprintf("%d inferred statements removed", n)}, nil
		},
	}
}
