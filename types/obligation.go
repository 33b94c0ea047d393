package types

import "strings"

// ObligationDeclaration binds an action name to the attribute references it
// carries as arguments, the attribute references that must remain valid for
// the obligation to still apply, and the condition under which it activates.
type ObligationDeclaration struct {
	Action    string
	Args      []AttributeReference
	Bindings  []AttributeReference
	Condition ActivationCondition
}

// Clone returns a deep copy.
func (o ObligationDeclaration) Clone() ObligationDeclaration {
	args := make([]AttributeReference, len(o.Args))
	copy(args, o.Args)
	bindings := make([]AttributeReference, len(o.Bindings))
	copy(bindings, o.Bindings)
	return ObligationDeclaration{Action: o.Action, Args: args, Bindings: bindings, Condition: o.Condition}
}

// Equal reports structural equality: same action, same argument and binding
// reference sequences, and equal condition trees.
func (o ObligationDeclaration) Equal(other ObligationDeclaration) bool {
	if o.Action != other.Action {
		return false
	}
	if !refsEqual(o.Args, other.Args) || !refsEqual(o.Bindings, other.Bindings) {
		return false
	}
	switch {
	case o.Condition == nil && other.Condition == nil:
		return true
	case o.Condition == nil || other.Condition == nil:
		return false
	default:
		return o.Condition.Equal(other.Condition)
	}
}

func refsEqual(a, b []AttributeReference) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Dump renders `obligation(action args..., [bindings], condition).`.
func (o ObligationDeclaration) Dump() string {
	var b strings.Builder
	b.WriteString("obligation(")
	b.WriteString(dumpToken(o.Action))
	for _, r := range o.Args {
		b.WriteString(" ")
		b.WriteString(r.String())
	}
	b.WriteString(", [")
	dumpRefs(&b, o.Bindings)
	b.WriteString("], ")
	if _, never := o.Condition.(NeverCondition); o.Condition == nil || never {
		b.WriteString("null")
	} else {
		b.WriteString(o.Condition.Dump())
	}
	b.WriteString(").")
	return b.String()
}

func dumpRefs(b *strings.Builder, refs []AttributeReference) {
	for i, r := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
}

// ActivatedObligation is an ObligationDeclaration with its Args resolved
// against an enclosing DataRuleContainer's capsule table at the moment of
// activation; Bindings are not carried forward since they have already
// served their purpose of gating Evaluate.
type ActivatedObligation struct {
	Action     string
	Attributes []Attribute
}

// Equal reports structural equality.
func (a ActivatedObligation) Equal(o ActivatedObligation) bool {
	if a.Action != o.Action || len(a.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range a.Attributes {
		if !a.Attributes[i].Equal(o.Attributes[i]) {
			return false
		}
	}
	return true
}
