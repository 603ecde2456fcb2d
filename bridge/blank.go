package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/triple"
)

// BlankNodeSet is an ordered set of statements involving blank nodes.
// Adding an existing statement is a no-op.
type BlankNodeSet struct {
	keys  map[triple.Key]struct{}
	stmts []triple.Statement
}

var _ graph.Copier = (*BlankNodeSet)(nil)

// NewBlankNodeSet creates a set holding stmts.
func NewBlankNodeSet(stmts ...triple.Statement) *BlankNodeSet {
	s := &BlankNodeSet{keys: make(map[triple.Key]struct{}, len(stmts))}
	s.AddAll(stmts)
	return s
}

// Add adds st and reports whether it was new.
func (s *BlankNodeSet) Add(st triple.Statement) bool {
	if s.keys == nil {
		s.keys = make(map[triple.Key]struct{})
	}
	k := st.Key()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	s.stmts = append(s.stmts, st)
	return true
}

// AddAll adds stmts and returns how many were new.
func (s *BlankNodeSet) AddAll(stmts []triple.Statement) int {
	n := 0
	for _, st := range stmts {
		if s.Add(st) {
			n++
		}
	}
	return n
}

func (s *BlankNodeSet) Contains(st triple.Statement) bool {
	_, ok := s.keys[st.Key()]
	return ok
}

func (s *BlankNodeSet) Len() int { return len(s.stmts) }

// Statements returns the statements in insertion order.
func (s *BlankNodeSet) Statements() []triple.Statement {
	return append([]triple.Statement(nil), s.stmts...)
}

// Copy implements graph.Copier.
func (s *BlankNodeSet) Copy() interface{} {
	return NewBlankNodeSet(s.stmts...)
}

func (s *BlankNodeSet) String() string {
	return fmt.Sprintf("%d blank node statements", len(s.stmts))
}

type jsonStatement struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Context   string `json:"context,omitempty"`
}

type jsonBlankNodes struct {
	BlankNodes []jsonStatement `json:"blank_nodes"`
}

// MarshalJSON writes the set as {"blank_nodes":[...]}, each term in
// N-Quads syntax.
func (s *BlankNodeSet) MarshalJSON() ([]byte, error) {
	out := jsonBlankNodes{BlankNodes: make([]jsonStatement, 0, len(s.stmts))}
	for _, st := range s.stmts {
		js := jsonStatement{
			Subject:   triple.FormatTerm(st.Subject()),
			Predicate: triple.FormatTerm(st.Predicate()),
			Object:    triple.FormatTerm(st.Object()),
		}
		if st.Context() != nil {
			js.Context = triple.FormatTerm(st.Context())
		}
		out.BlankNodes = append(out.BlankNodes, js)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the format written by MarshalJSON, adding to the set.
func (s *BlankNodeSet) UnmarshalJSON(data []byte) error {
	var in jsonBlankNodes
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	for i, js := range in.BlankNodes {
		var terms [4]quad.Value
		for j, t := range []string{js.Subject, js.Predicate, js.Object, js.Context} {
			if t == "" {
				continue
			}
			v, err := triple.ParseTerm(t)
			if err != nil {
				return fmt.Errorf("blank node statement %d: %w", i, err)
			}
			terms[j] = v
		}
		st, err := triple.New(terms[0], terms[1], terms[2], terms[3])
		if err != nil {
			return fmt.Errorf("blank node statement %d: %w", i, err)
		}
		s.Add(st)
	}
	return nil
}

// PrepareGraph makes sure the graph carries a blank node set and returns it.
// The returned set belongs to w and may be modified until w is committed.
func PrepareGraph(w graph.Writer) *BlankNodeSet {
	attr := graph.GraphBlankNodes.Ensure(w)
	if s, ok := w.ObjectValue(attr, graph.GraphID).(*BlankNodeSet); ok {
		return s
	}
	s := NewBlankNodeSet()
	if err := w.SetObjectValue(attr, graph.GraphID, s); err != nil {
		clog.Errorf("bridge: cannot attach blank node set: %v", err)
	}
	return s
}

// BlankNodes returns a copy of the graph's blank node set, empty if the
// graph has none.
func BlankNodes(r graph.Reader) *BlankNodeSet {
	attr := graph.GraphBlankNodes.Get(r)
	if s, ok := r.ObjectValue(attr, graph.GraphID).(*BlankNodeSet); ok {
		return NewBlankNodeSet(s.stmts...)
	}
	return NewBlankNodeSet()
}

// AppendBlankNodes adds the statements of set to the graph's blank node
// set and returns how many were new.
func AppendBlankNodes(w graph.Writer, set *BlankNodeSet) int {
	n := PrepareGraph(w).AddAll(set.Statements())
	if n > 0 && clog.V(2) {
		clog.Infof("bridge: %d new blank node statements", n)
	}
	return n
}
