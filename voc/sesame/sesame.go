// Package sesame contains the direct type hierarchy vocabulary.
package sesame

import "github.com/cayleygraph/rdfsail/voc"

func init() {
	voc.RegisterPrefix(Prefix, NS)
}

const (
	NS     = `http://www.openrdf.org/schema/sesame#`
	Prefix = `sesame:`
)

const (
	DirectType          = NS + "directType"
	DirectSubClassOf    = NS + "directSubClassOf"
	DirectSubPropertyOf = NS + "directSubPropertyOf"
)
