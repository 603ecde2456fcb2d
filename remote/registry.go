package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownQuery   = errors.New("remote: unknown query type")
	ErrDuplicateQuery = errors.New("remote: query type already registered")
	ErrNoSeeds        = errors.New("remote: no seed identifiers")
)

// Operation is a single step of an operation chain, encoded as JSON.
type Operation map[string]interface{}

// Chain is a Gaffer operation chain.
type Chain struct {
	Class      string      `json:"class"`
	Operations []Operation `json:"operations"`
}

// NewChain builds an operation chain running ops in order.
func NewChain(ops ...Operation) Chain {
	return Chain{Class: OperationChainClass, Operations: ops}
}

func seeds(ids []string) []interface{} {
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]interface{}{
			"class":  EntitySeedClass,
			"vertex": id,
		})
	}
	return out
}

// GetElements fetches the elements related to ids. Without ids, the input
// is the output of the previous operation.
func GetElements(ids ...string) Operation {
	op := Operation{"class": GetElementsClass}
	if len(ids) != 0 {
		op["input"] = seeds(ids)
	}
	return op
}

// GetAdjacentIds fetches the vertices one edge away from ids.
func GetAdjacentIds(ids ...string) Operation {
	op := Operation{"class": GetAdjacentIdsClass}
	if len(ids) != 0 {
		op["input"] = seeds(ids)
	}
	return op
}

// QueryType is a named way of expanding seed identifiers into a chain.
type QueryType struct {
	Label string
	Build func(ids []string) Chain
}

// Default query types.
var (
	GetDetails = QueryType{
		Label: "Get Details",
		Build: func(ids []string) Chain {
			op := GetElements(ids...)
			op["view"] = map[string]interface{}{"allEdges": false, "allEntities": true}
			return NewChain(op)
		},
	}
	GetOneHop = QueryType{
		Label: "Get One Hop",
		Build: func(ids []string) Chain {
			return NewChain(GetElements(ids...))
		},
	}
	GetTwoHop = QueryType{
		Label: "Get Two Hop",
		Build: func(ids []string) Chain {
			return NewChain(GetAdjacentIds(ids...), GetElements())
		},
	}
)

// Registry maps query type labels to chain builders.
type Registry struct {
	mu    sync.RWMutex
	types map[string]QueryType
}

// NewRegistry creates a registry holding the given query types. Without
// arguments the default types are registered.
func NewRegistry(types ...QueryType) *Registry {
	if len(types) == 0 {
		types = []QueryType{GetDetails, GetOneHop, GetTwoHop}
	}
	r := &Registry{types: make(map[string]QueryType)}
	for _, t := range types {
		r.types[t.Label] = t
	}
	return r
}

// Register adds a query type. Labels must be unique.
func (r *Registry) Register(t QueryType) error {
	if t.Label == "" || t.Build == nil {
		return fmt.Errorf("remote: invalid query type %q", t.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Label]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateQuery, t.Label)
	}
	r.types[t.Label] = t
	return nil
}

func (r *Registry) Lookup(label string) (QueryType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[label]
	return t, ok
}

// Labels returns the registered labels in sorted order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for l := range r.types {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Query builds the chain for label and executes it with c.
func (r *Registry) Query(ctx context.Context, c *Client, label string, ids []string) ([]Element, error) {
	t, ok := r.Lookup(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, label)
	}
	if len(ids) == 0 {
		return nil, ErrNoSeeds
	}
	remoteQueries.WithLabelValues(label).Inc()
	return c.Execute(ctx, t.Build(ids))
}
