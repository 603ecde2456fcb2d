package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/cayleygraph/rdfsail/inference"
	"github.com/cayleygraph/rdfsail/inference/owl"
	"github.com/cayleygraph/rdfsail/inference/rules"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/triple"
)

func inferred(req *plugin.Request, stmts []triple.Statement) (*plugin.Output, error) {
	mask, err := req.Params.Int(LayerMaskParam)
	if err != nil {
		return nil, err
	}
	return &plugin.Output{
		Statements: stmts,
		Batch:      materialize.New(mask).Statements(stmts),
		Message:    fmt.Sprintf("%d statements inferred", len(stmts)),
	}, nil
}

// NewRDFS returns the RDFS inference plugin. It derives the RDFS closure of
// the asserted statements together with direct type and sub class links.
func NewRDFS() plugin.Plugin {
	return &plugin.Func{
		ID:     RDFS,
		Type:   plugin.Inference,
		Schema: plugin.Schema{layerMask(materialize.InferenceLayer)},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			in.SetProgress(0, 2, "Reasoning", false)
			out, err := inference.NewRDFSChain().Infer(ctx, req.Model())
			if err != nil {
				return nil, err
			}
			in.SetProgress(1, 2, "Materializing", false)
			return inferred(req, out)
		},
	}
}

// Rule plugin parameters.
const (
	RuleQueryParam  = "rule_query"
	MatchQueryParam = "match_query"
	RetractParam    = "retract"
)

// NewRules returns the custom rule inference plugin.
func NewRules() plugin.Plugin {
	return &plugin.Func{
		ID:   Rules,
		Type: plugin.Inference,
		Schema: plugin.Schema{
			{Name: RuleQueryParam, Description: "CONSTRUCT query deriving statements.", Default: rules.DefaultRule},
			{Name: MatchQueryParam, Description: "CONSTRUCT query recognizing earlier results.", Default: rules.DefaultMatch},
			{Name: RetractParam, Description: "Remove earlier results the rule no longer derives.", Default: "false"},
			layerMask(materialize.InferenceLayer),
		},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			retract, err := req.Params.Bool(RetractParam)
			if err != nil {
				return nil, err
			}
			in.SetProgress(0, 2, "Parsing queries", false)
			inf, err := rules.New(req.Params.Get(RuleQueryParam), req.Params.Get(MatchQueryParam))
			if err != nil {
				return nil, err
			}
			in.SetProgress(1, 2, "Evaluating rule", false)
			m := req.Model()
			stmts, err := inf.Infer(ctx, m)
			if err != nil {
				return nil, err
			}
			out, err := inferred(req, stmts)
			if err != nil {
				return nil, err
			}
			if retract {
				if out.Retractions, err = inf.Retractions(ctx, m); err != nil {
					return nil, err
				}
			}
			return out, nil
		},
	}
}

// OWL plugin parameters.
const (
	ReasonerParam   = "reasoner"
	CommandParam    = "command"
	ArgsParam       = "args"
	URLParam        = "url"
	FormatParam     = "format"
	CategoriesParam = "categories"
)

// Reasoner choices.
const (
	ReasonerDefault = "default"
	ReasonerRules   = "rules"
	ReasonerCommand = "command"
	ReasonerHTTP    = "http"
)

// NewOWL returns the OWL reasoning plugin.
func NewOWL(opts Options) plugin.Plugin {
	format := opts.ReasonerFormat
	if format == "" {
		format = owl.DefaultFormat
	}
	return &plugin.Func{
		ID:   OWL,
		Type: plugin.Inference,
		Schema: plugin.Schema{
			{Name: ReasonerParam, Default: ReasonerDefault,
				Choices: []string{ReasonerDefault, ReasonerRules, ReasonerCommand, ReasonerHTTP}},
			{Name: CommandParam, Description: "Reasoner executable."},
			{Name: ArgsParam, Description: "Reasoner arguments; {input}, {output}, {format} and {categories} are replaced."},
			{Name: URLParam, Description: "Reasoning service URL."},
			{Name: FormatParam, Default: format, Choices: []string{"nquads", "jsonld"}},
			{Name: CategoriesParam, Default: owl.JoinCategories(owl.AllCategories)},
			layerMask(materialize.InferenceLayer),
		},
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			oracle, err := selectOracle(opts, req.Params)
			if err != nil {
				return nil, err
			}
			cats, err := owl.ParseCategories(req.Params.Get(CategoriesParam))
			if err != nil {
				return nil, err
			}
			r := &owl.Reasoner{
				Oracle:     oracle,
				Format:     req.Params.Get(FormatParam),
				Categories: cats,
				Dir:        opts.ReasonerDir,
			}
			in.SetProgress(0, 2, "Reasoning", true)
			stmts, run, err := r.Run(ctx, req.Model())
			if err != nil {
				return nil, err
			}
			in.SetProgress(1, 2, "Materializing", false)
			out, err := inferred(req, stmts)
			if err != nil {
				return nil, err
			}
			out.Message += " by run " + run.ID
			return out, nil
		},
	}
}

func selectOracle(opts Options, vals plugin.Values) (owl.Oracle, error) {
	switch vals.Get(ReasonerParam) {
	case ReasonerRules:
		return &owl.RuleOracle{}, nil
	case ReasonerCommand:
		cmd := vals.Get(CommandParam)
		if cmd == "" {
			return nil, fmt.Errorf("the %s reasoner needs a %s", ReasonerCommand, CommandParam)
		}
		return &owl.CommandOracle{Path: cmd, Args: strings.Fields(vals.Get(ArgsParam))}, nil
	case ReasonerHTTP:
		u := vals.Get(URLParam)
		if u == "" {
			return nil, fmt.Errorf("the %s reasoner needs a %s", ReasonerHTTP, URLParam)
		}
		return &owl.HTTPOracle{URL: u}, nil
	}
	if opts.Oracle != nil {
		return opts.Oracle, nil
	}
	return &owl.RuleOracle{}, nil
}
