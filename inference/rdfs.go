package inference

import (
	"context"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

// DefaultMaxRounds bounds the fixpoint iteration of SchemaCachingRDFS.
const DefaultMaxRounds = 64

// SchemaCachingRDFS applies the RDFS entailment rules until no new
// statement is produced. The class and property hierarchies are cached in
// a Schema that is rebuilt incrementally between rounds.
type SchemaCachingRDFS struct {
	MaxRounds int
}

func NewSchemaCachingRDFS() *SchemaCachingRDFS {
	return &SchemaCachingRDFS{MaxRounds: DefaultMaxRounds}
}

func (r *SchemaCachingRDFS) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	work := m.Clone()
	schema := SchemaOf(work.Statements())
	var out []triple.Statement
	pending := work.Statements()
	max := r.MaxRounds
	if max <= 0 {
		max = DefaultMaxRounds
	}
	for round := 0; len(pending) != 0; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if round == max {
			clog.Warningf("inference: rdfs stopped after %d rounds", round)
			break
		}
		c := newCollector(work)
		for _, st := range pending {
			applyRDFS(c, schema, st)
		}
		// schema-changing statements can enable rules on older statements
		if schemaChanged(c.out) {
			schema = SchemaOf(append(work.Statements(), c.out...))
			for _, st := range work.Statements() {
				applyRDFS(c, schema, st)
			}
		} else {
			schema.ProcessStatements(c.out)
		}
		work.AddAll(c.out)
		out = append(out, c.out...)
		pending = c.out
	}
	inferred.WithLabelValues("rdfs").Add(float64(len(out)))
	return out, nil
}

func schemaChanged(stmts []triple.Statement) bool {
	for _, st := range stmts {
		switch st.Predicate() {
		case voc.RDFSSubClassOf, voc.RDFSSubPropertyOf, voc.RDFSDomain, voc.RDFSRange:
			return true
		}
	}
	return false
}

func applyRDFS(c *collector, schema *Schema, st triple.Statement) {
	x, p, y := st.Subject(), st.Predicate(), st.Object()
	literal := st.LiteralObject()

	c.add(p, voc.RDFType, voc.RDFProperty) // 1
	// rule 2
	for _, d := range schema.Domains(p) {
		c.add(x, voc.RDFType, d)
	}
	if !literal {
		// rule 3
		for _, r := range schema.Ranges(p) {
			c.add(y, voc.RDFType, r)
		}
	}
	c.add(x, voc.RDFType, voc.RDFSResource) // 4a
	if !literal {
		c.add(y, voc.RDFType, voc.RDFSResource) // 4b
	}
	// rule 7
	for _, q := range schema.SuperProperties(p) {
		if q != quad.Value(p) {
			c.add(x, q, y)
		}
	}

	switch p {
	case voc.RDFSSubPropertyOf:
		// rule 5
		for _, r := range schema.SuperProperties(y) {
			c.add(x, voc.RDFSSubPropertyOf, r)
		}
	case voc.RDFSSubClassOf:
		// rule 11
		for _, e := range schema.SuperClasses(y) {
			c.add(x, voc.RDFSSubClassOf, e)
		}
	case voc.RDFType:
		switch y {
		case voc.RDFProperty:
			c.add(x, voc.RDFSSubPropertyOf, x) // 6
		case voc.RDFSClass:
			// rules 8 and 10
			c.add(x, voc.RDFSSubClassOf, voc.RDFSResource)
			c.add(x, voc.RDFSSubClassOf, x)
		case voc.RDFSContainerMembershipProperty:
			c.add(x, voc.RDFSSubPropertyOf, voc.RDFSMember) // 12
		case voc.RDFSDatatype:
			c.add(x, voc.RDFSSubClassOf, voc.RDFSLiteral) // 13
		}
		if !literal {
			// rule 9
			for _, d := range schema.SuperClasses(y) {
				c.add(x, voc.RDFType, d)
			}
		}
	}
}
