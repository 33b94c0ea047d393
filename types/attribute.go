package types

import "fmt"

// Attribute is an immutable (name, type-tag, value) triple. value is a
// string, int64 or float64 scalar; the type-tag is preserved verbatim as
// written in the DSL and is never re-derived from the Go value's kind.
type Attribute struct {
	Name  string
	Type  string
	Value any // string | int64 | float64
}

// Equal reports structural equality: all three fields must match.
func (a Attribute) Equal(o Attribute) bool {
	return a.Name == o.Name && a.Type == o.Type && a.Value == o.Value
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s[%s %v]", a.Name, a.Type, a.Value)
}

// AttributeReference is a pair (capsule-name, index) resolved against the
// capsule table of an enclosing DataRuleContainer.
type AttributeReference struct {
	Name  string
	Index int
}

func (r AttributeReference) String() string {
	return fmt.Sprintf("%s[%d]", r.Name, r.Index)
}

// AttributeCapsule is a named, ordered bag of Attributes that all share the
// capsule's Name. Positions act as stable indices used by AttributeReference.
type AttributeCapsule struct {
	Name  string
	Attrs []Attribute
}

// Clone returns a deep copy.
func (c *AttributeCapsule) Clone() *AttributeCapsule {
	attrs := make([]Attribute, len(c.Attrs))
	copy(attrs, c.Attrs)
	return &AttributeCapsule{Name: c.Name, Attrs: attrs}
}

// Equal reports structural equality: same name and same attribute sequence.
func (c *AttributeCapsule) Equal(o *AttributeCapsule) bool {
	if c.Name != o.Name || len(c.Attrs) != len(o.Attrs) {
		return false
	}
	for i := range c.Attrs {
		if !c.Attrs[i].Equal(o.Attrs[i]) {
			return false
		}
	}
	return true
}

// Get returns the Attribute at index, and whether it existed.
func (c *AttributeCapsule) Get(index int) (Attribute, bool) {
	if index < 0 || index >= len(c.Attrs) {
		return Attribute{}, false
	}
	return c.Attrs[index], true
}

// Dump renders `attribute(name, [type value, ...]).`.
func (c *AttributeCapsule) Dump() string {
	s := fmt.Sprintf("attribute(%s, [", c.Name)
	for i, a := range c.Attrs {
		if i > 0 {
			s += ", "
		}
		s += dumpTypeValue(a.Type, a.Value)
	}
	s += "])."
	return s
}

func dumpTypeValue(typ string, value any) string {
	return fmt.Sprintf("%s %s", dumpToken(typ), dumpValue(value))
}
