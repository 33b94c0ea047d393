package types

import "strings"

// DataRuleContainer is the unit of data-rule state attached to a port or a
// data item: an unordered (but, for reproducibility, insertion-ordered)
// collection of attribute capsules together with the obligation
// declarations that reference them.
type DataRuleContainer struct {
	Capsules   []*AttributeCapsule
	Obligation []ObligationDeclaration
}

// NewDataRuleContainer returns an empty container.
func NewDataRuleContainer() *DataRuleContainer {
	return &DataRuleContainer{}
}

// Capsule returns the capsule with the given name, or nil.
func (c *DataRuleContainer) Capsule(name string) *AttributeCapsule {
	for _, cap := range c.Capsules {
		if cap.Name == name {
			return cap
		}
	}
	return nil
}

// Resolve looks up the Attribute a reference points to.
func (c *DataRuleContainer) Resolve(ref AttributeReference) (Attribute, bool) {
	cap := c.Capsule(ref.Name)
	if cap == nil {
		return Attribute{}, false
	}
	return cap.Get(ref.Index)
}

// Clone returns a deep copy.
func (c *DataRuleContainer) Clone() *DataRuleContainer {
	caps := make([]*AttributeCapsule, len(c.Capsules))
	for i, cap := range c.Capsules {
		caps[i] = cap.Clone()
	}
	obls := make([]ObligationDeclaration, len(c.Obligation))
	for i, o := range c.Obligation {
		obls[i] = o.Clone()
	}
	return &DataRuleContainer{Capsules: caps, Obligation: obls}
}

// Equal reports order-independent structural equality: the capsule set and
// the obligation set must match as multisets, regardless of order.
func (c *DataRuleContainer) Equal(o *DataRuleContainer) bool {
	if !capsuleSetEqual(c.Capsules, o.Capsules) {
		return false
	}
	return obligationSetEqual(c.Obligation, o.Obligation)
}

func capsuleSetEqual(a, b []*AttributeCapsule) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ca := range a {
		matched := false
		for j, cb := range b {
			if used[j] {
				continue
			}
			if ca.Equal(cb) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func obligationSetEqual(a, b []ObligationDeclaration) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, oa := range a {
		matched := false
		for j, ob := range b {
			if used[j] {
				continue
			}
			if oa.Equal(ob) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Dump renders `begin\n  <attribute dumps>\n  <obligation dumps>\nend`.
func (c *DataRuleContainer) Dump() string {
	var b strings.Builder
	b.WriteString("begin\n")
	for _, cap := range c.Capsules {
		b.WriteString("  ")
		b.WriteString(cap.Dump())
		b.WriteString("\n")
	}
	for _, o := range c.Obligation {
		b.WriteString("  ")
		b.WriteString(o.Dump())
		b.WriteString("\n")
	}
	b.WriteString("end")
	return b.String()
}

// OnStage evaluates every obligation declaration against the given stage,
// function and extra info, resolving the Args of each obligation whose
// condition is met into an ActivatedObligation. Order of the returned slice
// follows declaration order, per the reproducibility invariant.
func (c *DataRuleContainer) OnStage(stage Stage, function string, info map[string]string) []ActivatedObligation {
	var out []ActivatedObligation
	for _, o := range c.Obligation {
		if !Evaluate(o.Condition, stage, function, info) {
			continue
		}
		attrs := make([]Attribute, 0, len(o.Args))
		for _, ref := range o.Args {
			a, ok := c.Resolve(ref)
			if !ok {
				continue
			}
			attrs = append(attrs, a)
		}
		out = append(out, ActivatedObligation{Action: o.Action, Attributes: attrs})
	}
	return out
}
