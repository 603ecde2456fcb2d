package inference

import (
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

// Class is a node of the class hierarchy.
type Class struct {
	name          quad.Value
	references    int
	super         map[*Class]struct{}
	sub           map[*Class]struct{}
	ownProperties map[*Property]struct{}
	inProperties  map[*Property]struct{}
	schema        *Schema
}

func newClass(name quad.Value, schema *Schema) *Class {
	return &Class{
		name:          name,
		references:    1,
		super:         map[*Class]struct{}{},
		sub:           map[*Class]struct{}{},
		ownProperties: map[*Property]struct{}{},
		inProperties:  map[*Property]struct{}{},
		schema:        schema,
	}
}

// Name returns the class's name
func (class *Class) Name() quad.Value {
	return class.name
}

// IsSubClassOf recursively checks whether superClass is a super class of
// class. Every class is a sub class of itself and of rdfs:Resource.
func (class *Class) IsSubClassOf(superClass *Class) bool {
	if class == superClass || superClass.name == voc.RDFSResource {
		return true
	}
	return class.reaches(superClass, map[*Class]struct{}{})
}

func (class *Class) reaches(target *Class, seen map[*Class]struct{}) bool {
	if _, ok := seen[class]; ok {
		return false
	}
	seen[class] = struct{}{}
	if _, ok := class.super[target]; ok {
		return true
	}
	for s := range class.super {
		if s.reaches(target, seen) {
			return true
		}
	}
	return false
}

// Properties returns the properties having this class as domain.
func (class *Class) Properties() []*Property {
	out := make([]*Property, 0, len(class.ownProperties))
	for p := range class.ownProperties {
		out = append(out, p)
	}
	sortProperties(out)
	return out
}

func (class *Class) removeReference() {
	class.references--
	if class.references <= 0 {
		delete(class.schema.classes, class.name)
	}
}

// Property is a node of the property hierarchy.
type Property struct {
	name       quad.Value
	references int
	domains    map[*Class]struct{}
	ranges     map[*Class]struct{}
	super      map[*Property]struct{}
	sub        map[*Property]struct{}
	schema     *Schema
}

func newProperty(name quad.Value, schema *Schema) *Property {
	return &Property{
		name:       name,
		references: 1,
		domains:    map[*Class]struct{}{},
		ranges:     map[*Class]struct{}{},
		super:      map[*Property]struct{}{},
		sub:        map[*Property]struct{}{},
		schema:     schema,
	}
}

// Name returns the property's name
func (property *Property) Name() quad.Value {
	return property.name
}

// Domains returns the declared domains of the property
func (property *Property) Domains() []*Class {
	return sortedClasses(property.domains)
}

// Ranges returns the declared ranges of the property
func (property *Property) Ranges() []*Class {
	return sortedClasses(property.ranges)
}

// IsSubPropertyOf recursively checks whether superProperty is a super
// property of property.
func (property *Property) IsSubPropertyOf(superProperty *Property) bool {
	if property == superProperty {
		return true
	}
	return property.reaches(superProperty, map[*Property]struct{}{})
}

func (property *Property) reaches(target *Property, seen map[*Property]struct{}) bool {
	if _, ok := seen[property]; ok {
		return false
	}
	seen[property] = struct{}{}
	if _, ok := property.super[target]; ok {
		return true
	}
	for s := range property.super {
		if s.reaches(target, seen) {
			return true
		}
	}
	return false
}

func (property *Property) removeReference() {
	property.references--
	if property.references <= 0 {
		delete(property.schema.properties, property.name)
	}
}

// Schema caches the class and property hierarchies declared by a set of
// statements.
type Schema struct {
	classes    map[quad.Value]*Class
	properties map[quad.Value]*Property
}

// NewSchema creates a schema holding rdfs:Resource only.
func NewSchema() *Schema {
	s := &Schema{
		classes:    map[quad.Value]*Class{},
		properties: map[quad.Value]*Property{},
	}
	s.classes[voc.RDFSResource] = newClass(voc.RDFSResource, s)
	return s
}

// SchemaOf builds the schema of a set of statements.
func SchemaOf(stmts []triple.Statement) *Schema {
	s := NewSchema()
	s.ProcessStatements(stmts)
	return s
}

// GetClass returns the class called name, or nil.
func (s *Schema) GetClass(name quad.Value) *Class {
	return s.classes[name]
}

// GetProperty returns the property called name, or nil.
func (s *Schema) GetProperty(name quad.Value) *Property {
	return s.properties[name]
}

// Classes returns all known classes ordered by name.
func (s *Schema) Classes() []*Class {
	out := make([]*Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sortClasses(out)
	return out
}

// Properties returns all known properties ordered by name.
func (s *Schema) Properties() []*Property {
	out := make([]*Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	sortProperties(out)
	return out
}

func (s *Schema) addClass(class quad.Value) *Class {
	if c, ok := s.classes[class]; ok {
		c.references++
		return c
	}
	c := newClass(class, s)
	s.classes[class] = c
	return c
}

func (s *Schema) addProperty(property quad.Value) *Property {
	if p, ok := s.properties[property]; ok {
		p.references++
		return p
	}
	p := newProperty(property, s)
	s.properties[property] = p
	return p
}

func (s *Schema) addClassRelationship(child, parent quad.Value) {
	parentClass := s.addClass(parent)
	childClass := s.addClass(child)
	if _, ok := parentClass.sub[childClass]; !ok {
		parentClass.sub[childClass] = struct{}{}
		childClass.super[parentClass] = struct{}{}
	}
}

func (s *Schema) addPropertyRelationship(child, parent quad.Value) {
	parentProperty := s.addProperty(parent)
	childProperty := s.addProperty(child)
	if _, ok := parentProperty.sub[childProperty]; !ok {
		parentProperty.sub[childProperty] = struct{}{}
		childProperty.super[parentProperty] = struct{}{}
	}
}

func (s *Schema) addPropertyDomain(property, domain quad.Value) {
	p := s.addProperty(property)
	class := s.addClass(domain)
	p.domains[class] = struct{}{}
	class.ownProperties[p] = struct{}{}
}

func (s *Schema) addPropertyRange(property, rng quad.Value) {
	p := s.addProperty(property)
	class := s.addClass(rng)
	p.ranges[class] = struct{}{}
	class.inProperties[p] = struct{}{}
}

// ProcessStatement updates the schema with a new statement.
func (s *Schema) ProcessStatement(st triple.Statement) {
	subject, predicate, object := st.Subject(), st.Predicate(), st.Object()
	if st.LiteralObject() && predicate != voc.RDFType {
		s.addProperty(predicate)
		return
	}
	switch predicate {
	case voc.RDFType:
		switch object {
		case voc.RDFSClass, voc.RDFSDatatype:
			s.addClass(subject)
		case voc.RDFProperty, voc.RDFSContainerMembershipProperty:
			s.addProperty(subject)
		default:
			if !st.LiteralObject() {
				s.addClass(object)
			}
		}
	case voc.RDFSSubPropertyOf:
		s.addPropertyRelationship(subject, object)
	case voc.RDFSSubClassOf:
		s.addClassRelationship(subject, object)
	case voc.RDFSDomain:
		s.addPropertyDomain(subject, object)
	case voc.RDFSRange:
		s.addPropertyRange(subject, object)
	default:
		s.addProperty(predicate)
	}
}

// ProcessStatements updates the schema with multiple statements.
func (s *Schema) ProcessStatements(stmts []triple.Statement) {
	for _, st := range stmts {
		s.ProcessStatement(st)
	}
}

func (s *Schema) deleteClass(class quad.Value) {
	c, ok := s.classes[class]
	if !ok || class == voc.RDFSResource {
		return
	}
	c.removeReference()
	if c.references > 0 {
		return
	}
	for sub := range c.sub {
		delete(sub.super, c)
	}
	for super := range c.super {
		delete(super.sub, c)
	}
}

func (s *Schema) deleteProperty(property quad.Value) {
	p, ok := s.properties[property]
	if !ok {
		return
	}
	p.removeReference()
	if p.references > 0 {
		return
	}
	for super := range p.super {
		delete(super.sub, p)
	}
	for sub := range p.sub {
		delete(sub.super, p)
	}
	for c := range p.domains {
		delete(c.ownProperties, p)
	}
	for c := range p.ranges {
		delete(c.inProperties, p)
	}
}

func (s *Schema) deleteClassRelationship(child, parent quad.Value) {
	parentClass, childClass := s.GetClass(parent), s.GetClass(child)
	if parentClass == nil || childClass == nil {
		return
	}
	if _, ok := parentClass.sub[childClass]; ok {
		delete(parentClass.sub, childClass)
		delete(childClass.super, parentClass)
	}
	s.deleteClass(parent)
	s.deleteClass(child)
}

func (s *Schema) deletePropertyRelationship(child, parent quad.Value) {
	parentProperty, childProperty := s.GetProperty(parent), s.GetProperty(child)
	if parentProperty == nil || childProperty == nil {
		return
	}
	if _, ok := parentProperty.sub[childProperty]; ok {
		delete(parentProperty.sub, childProperty)
		delete(childProperty.super, parentProperty)
	}
	s.deleteProperty(parent)
	s.deleteProperty(child)
}

func (s *Schema) removePropertyDomain(property, domain quad.Value) {
	p, class := s.GetProperty(property), s.GetClass(domain)
	if p == nil || class == nil {
		return
	}
	delete(p.domains, class)
	delete(class.ownProperties, p)
	s.deleteProperty(property)
	s.deleteClass(domain)
}

func (s *Schema) removePropertyRange(property, rng quad.Value) {
	p, class := s.GetProperty(property), s.GetClass(rng)
	if p == nil || class == nil {
		return
	}
	delete(p.ranges, class)
	delete(class.inProperties, p)
	s.deleteProperty(property)
	s.deleteClass(rng)
}

// UnprocessStatement removes a statement previously added to the schema.
func (s *Schema) UnprocessStatement(st triple.Statement) {
	subject, predicate, object := st.Subject(), st.Predicate(), st.Object()
	if st.LiteralObject() && predicate != voc.RDFType {
		s.deleteProperty(predicate)
		return
	}
	switch predicate {
	case voc.RDFType:
		switch object {
		case voc.RDFSClass, voc.RDFSDatatype:
			s.deleteClass(subject)
		case voc.RDFProperty, voc.RDFSContainerMembershipProperty:
			s.deleteProperty(subject)
		default:
			s.deleteClass(object)
		}
	case voc.RDFSSubPropertyOf:
		s.deletePropertyRelationship(subject, object)
	case voc.RDFSSubClassOf:
		s.deleteClassRelationship(subject, object)
	case voc.RDFSDomain:
		s.removePropertyDomain(subject, object)
	case voc.RDFSRange:
		s.removePropertyRange(subject, object)
	default:
		s.deleteProperty(predicate)
	}
}

// UnprocessStatements removes multiple statements from the schema.
func (s *Schema) UnprocessStatements(stmts []triple.Statement) {
	for _, st := range stmts {
		s.UnprocessStatement(st)
	}
}

// SuperClasses returns the transitive super classes of name, excluding name
// itself unless it is part of a cycle.
func (s *Schema) SuperClasses(name quad.Value) []quad.Value {
	c := s.classes[name]
	if c == nil {
		return nil
	}
	seen := map[*Class]struct{}{}
	var walk func(*Class)
	walk = func(c *Class) {
		for p := range c.super {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			walk(p)
		}
	}
	walk(c)
	return classNames(seen)
}

// SubClasses returns the transitive sub classes of name.
func (s *Schema) SubClasses(name quad.Value) []quad.Value {
	c := s.classes[name]
	if c == nil {
		return nil
	}
	seen := map[*Class]struct{}{}
	var walk func(*Class)
	walk = func(c *Class) {
		for p := range c.sub {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			walk(p)
		}
	}
	walk(c)
	return classNames(seen)
}

// SuperProperties returns the transitive super properties of name.
func (s *Schema) SuperProperties(name quad.Value) []quad.Value {
	p := s.properties[name]
	if p == nil {
		return nil
	}
	seen := map[*Property]struct{}{}
	var walk func(*Property)
	walk = func(p *Property) {
		for q := range p.super {
			if _, ok := seen[q]; ok {
				continue
			}
			seen[q] = struct{}{}
			walk(q)
		}
	}
	walk(p)
	out := make([]quad.Value, 0, len(seen))
	for q := range seen {
		out = append(out, q.name)
	}
	sortValues(out)
	return out
}

// Domains returns the declared domains of a property.
func (s *Schema) Domains(property quad.Value) []quad.Value {
	p := s.properties[property]
	if p == nil {
		return nil
	}
	return classNames(p.domains)
}

// Ranges returns the declared ranges of a property.
func (s *Schema) Ranges(property quad.Value) []quad.Value {
	p := s.properties[property]
	if p == nil {
		return nil
	}
	return classNames(p.ranges)
}

func classNames(set map[*Class]struct{}) []quad.Value {
	out := make([]quad.Value, 0, len(set))
	for c := range set {
		out = append(out, c.name)
	}
	sortValues(out)
	return out
}

func sortValues(vals []quad.Value) {
	sort.Slice(vals, func(i, j int) bool {
		return triple.TermKey(vals[i]) < triple.TermKey(vals[j])
	})
}

func sortedClasses(set map[*Class]struct{}) []*Class {
	out := make([]*Class, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortClasses(out)
	return out
}

func sortClasses(cs []*Class) {
	sort.Slice(cs, func(i, j int) bool {
		return triple.TermKey(cs[i].name) < triple.TermKey(cs[j].name)
	})
}

func sortProperties(ps []*Property) {
	sort.Slice(ps, func(i, j int) bool {
		return triple.TermKey(ps[i].name) < triple.TermKey(ps[j].name)
	})
}
