package owl

import (
	"fmt"
	"strings"
)

// Category is a kind of inferred axiom requested from a reasoner.
type Category int

const (
	SubClass Category = iota
	ClassAssertion
	DataPropertyCharacteristic
	ObjectPropertyCharacteristic
	EquivalentClass
	PropertyAssertion
	InverseObjectProperties
	SubDataProperty
	SubObjectProperty
)

var categoryNames = [...]string{
	"subclass",
	"class-assertion",
	"data-property-characteristic",
	"object-property-characteristic",
	"equivalent-class",
	"property-assertion",
	"inverse-object-properties",
	"sub-data-property",
	"sub-object-property",
}

// AllCategories lists every category in their canonical order.
var AllCategories = []Category{
	SubClass, ClassAssertion, DataPropertyCharacteristic,
	ObjectPropertyCharacteristic, EquivalentClass, PropertyAssertion,
	InverseObjectProperties, SubDataProperty, SubObjectProperty,
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory parses a category name as returned by String.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("owl: unknown category %q", s)
}

// ParseCategories parses a comma separated list of categories.
func ParseCategories(s string) ([]Category, error) {
	var out []Category
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// JoinCategories formats categories as a comma separated list.
func JoinCategories(cs []Category) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}

type categorySet map[Category]bool

func newCategorySet(cs []Category) categorySet {
	if len(cs) == 0 {
		cs = AllCategories
	}
	set := make(categorySet, len(cs))
	for _, c := range cs {
		set[c] = true
	}
	return set
}
