// Package rules implements inference with user supplied CONSTRUCT queries.
//
// A rule query derives statements from a model. A match query recognizes
// statements the rule already produced in earlier runs, so that applying the
// rule repeatedly does not re-derive them.
package rules

import (
	"context"
	"fmt"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/inference"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// DefaultRule relates every predicate linking Bob and Alice to cryptography.
const DefaultRule = `PREFIX : <http://foo.org/bar#>
CONSTRUCT { ?p :relatesTo :Cryptography } WHERE { { :Bob ?p :Alice } UNION { :Alice ?p :Bob } }`

// DefaultMatch recognizes the output of DefaultRule.
const DefaultMatch = `PREFIX : <http://foo.org/bar#>
CONSTRUCT { ?p :relatesTo :Cryptography } WHERE { ?p :relatesTo :Cryptography }`

// Inferencer applies a rule query, ignoring what its match query finds.
type Inferencer struct {
	Rule  *Query
	Match *Query
}

var _ inference.Inferencer = (*Inferencer)(nil)

// New parses a rule and a match query. The match query may be empty.
func New(rule, match string) (*Inferencer, error) {
	r, err := Parse(rule)
	if err != nil {
		return nil, fmt.Errorf("rule query: %w", err)
	}
	in := &Inferencer{Rule: r}
	if match != "" {
		if in.Match, err = Parse(match); err != nil {
			return nil, fmt.Errorf("match query: %w", err)
		}
	}
	return in, nil
}

// Evaluate returns the statements constructed by the rule, duplicates
// included.
func (in *Inferencer) Evaluate(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	return in.Rule.Construct(ctx, m)
}

func (in *Inferencer) matched(ctx context.Context, m *sail.Model) (map[triple.Key]struct{}, []triple.Statement, error) {
	set := make(map[triple.Key]struct{})
	if in.Match == nil {
		return set, nil, nil
	}
	stmts, err := in.Match.Construct(ctx, m)
	if err != nil {
		return nil, nil, err
	}
	for _, st := range stmts {
		set[st.Key()] = struct{}{}
	}
	return set, stmts, nil
}

// Infer returns the rule output that is neither recognized by the match
// query nor already in m, once each.
func (in *Inferencer) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	raw, err := in.Evaluate(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	known, _, err := in.matched(ctx, m)
	if err != nil {
		return nil, err
	}
	fresh := raw[:0:0]
	for _, st := range raw {
		if _, ok := known[st.Key()]; !ok {
			fresh = append(fresh, st)
		}
	}
	out := inference.Dedup(m, fresh, 0)
	if clog.V(2) {
		clog.Infof("rules: %d constructed, %d new", len(raw), len(out))
	}
	return out, nil
}

// Retractions returns the statements recognized by the match query that
// the rule no longer produces.
func (in *Inferencer) Retractions(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	_, matched, err := in.matched(ctx, m)
	if err != nil || len(matched) == 0 {
		return nil, err
	}
	raw, err := in.Evaluate(ctx, m)
	if err != nil {
		return nil, err
	}
	produced := make(map[triple.Key]struct{}, len(raw))
	for _, st := range raw {
		produced[st.Key()] = struct{}{}
	}
	var out []triple.Statement
	for _, st := range matched {
		if _, ok := produced[st.Key()]; !ok {
			out = append(out, st)
		}
	}
	return inference.Dedup(nil, out, 0), nil
}
