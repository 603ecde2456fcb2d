package remote

import (
	"fmt"
	"sort"
	"strings"
)

// Gaffer class names.
const (
	EntityClass         = "uk.gov.gchq.gaffer.data.element.Entity"
	EdgeClass           = "uk.gov.gchq.gaffer.data.element.Edge"
	EntitySeedClass     = "uk.gov.gchq.gaffer.operation.data.EntitySeed"
	OperationChainClass = "uk.gov.gchq.gaffer.operation.OperationChain"
	GetElementsClass    = "uk.gov.gchq.gaffer.operation.impl.get.GetElements"
	GetAdjacentIdsClass = "uk.gov.gchq.gaffer.operation.impl.get.GetAdjacentIds"
)

const (
	DirectedTypeDirected   = "DIRECTED"
	DirectedTypeUndirected = "UNDIRECTED"
)

// Element is an entity or an edge returned by Gaffer.
type Element struct {
	Class       string                 `json:"class"`
	Group       string                 `json:"group,omitempty"`
	Vertex      interface{}            `json:"vertex,omitempty"`
	Source      interface{}            `json:"source,omitempty"`
	Destination interface{}            `json:"destination,omitempty"`
	Directed    *bool                  `json:"directed,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

func (e Element) IsEdge() bool {
	return e.Class == EdgeClass || (e.Class == "" && e.Source != nil)
}

// DirectedType returns DIRECTED, UNDIRECTED or "" when unknown.
func (e Element) DirectedType() string {
	if e.Directed == nil {
		return ""
	}
	if *e.Directed {
		return DirectedTypeDirected
	}
	return DirectedTypeUndirected
}

// Property returns a property formatted as a string.
func (e Element) Property(name string) (string, bool) {
	v, ok := e.Properties[name]
	if !ok || v == nil {
		return "", false
	}
	return FormatValue(v), true
}

// PropertyNames returns the property names in sorted order.
func (e Element) PropertyNames() []string {
	names := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FormatValue turns a decoded JSON vertex or property value into a string.
// Whole numbers are printed without a fraction.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case map[string]interface{}:
		// typed values such as TypeSubTypeValue
		if val, ok := v["value"]; ok {
			return FormatValue(val)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+FormatValue(v[k]))
		}
		return strings.Join(parts, ";")
	}
	return fmt.Sprint(v)
}
