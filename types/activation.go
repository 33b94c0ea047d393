package types

import "fmt"

// ANY is the wildcard value used by Equal/NotEqual leaves: it matches mere
// presence of the slot rather than a specific value.
const ANY = "*"

// ActivationCondition is a closed, recursive tagged tree. It is evaluated by
// the single exhaustive switch in Evaluate (below) rather than through
// virtual dispatch, per the "closed tagged union" design note: the sealed
// marker method below restricts implementations to this package.
type ActivationCondition interface {
	sealedActivationCondition()
	// Equal reports structural equality between two condition trees.
	Equal(other ActivationCondition) bool
	// Dump renders the condition using the activation_condition_expr grammar,
	// or "" for Never (the grammar's NULL production).
	Dump() string
}

type NeverCondition struct{}

func (NeverCondition) sealedActivationCondition() {}
func (NeverCondition) Dump() string               { return "" }
func (NeverCondition) Equal(o ActivationCondition) bool {
	_, ok := o.(NeverCondition)
	return ok
}

// EqualCondition is the Equal(slot, value-or-any) leaf. Value == nil means ANY.
type EqualCondition struct {
	Slot  string
	Value *string
}

func (EqualCondition) sealedActivationCondition() {}

func (c EqualCondition) Dump() string {
	return fmt.Sprintf("%s = %s", c.Slot, dumpSlotValue(c.Value))
}

func (c EqualCondition) Equal(o ActivationCondition) bool {
	other, ok := o.(EqualCondition)
	if !ok || c.Slot != other.Slot {
		return false
	}
	return equalValuePtr(c.Value, other.Value)
}

// NotEqualCondition is the NotEqual(slot, value-or-any) leaf.
type NotEqualCondition struct {
	Slot  string
	Value *string
}

func (NotEqualCondition) sealedActivationCondition() {}

func (c NotEqualCondition) Dump() string {
	return fmt.Sprintf("%s != %s", c.Slot, dumpSlotValue(c.Value))
}

func (c NotEqualCondition) Equal(o ActivationCondition) bool {
	other, ok := o.(NotEqualCondition)
	if !ok || c.Slot != other.Slot {
		return false
	}
	return equalValuePtr(c.Value, other.Value)
}

// AndCondition, OrCondition are short-circuiting, left-to-right binary nodes.
type AndCondition struct{ Left, Right ActivationCondition }
type OrCondition struct{ Left, Right ActivationCondition }
type NotCondition struct{ Inner ActivationCondition }

func (AndCondition) sealedActivationCondition() {}
func (OrCondition) sealedActivationCondition()  {}
func (NotCondition) sealedActivationCondition() {}

func (c AndCondition) Dump() string { return fmt.Sprintf("(%s) && (%s)", c.Left.Dump(), c.Right.Dump()) }
func (c OrCondition) Dump() string  { return fmt.Sprintf("(%s) || (%s)", c.Left.Dump(), c.Right.Dump()) }
func (c NotCondition) Dump() string { return fmt.Sprintf("!(%s)", c.Inner.Dump()) }

func (c AndCondition) Equal(o ActivationCondition) bool {
	other, ok := o.(AndCondition)
	return ok && c.Left.Equal(other.Left) && c.Right.Equal(other.Right)
}

func (c OrCondition) Equal(o ActivationCondition) bool {
	other, ok := o.(OrCondition)
	return ok && c.Left.Equal(other.Left) && c.Right.Equal(other.Right)
}

func (c NotCondition) Equal(o ActivationCondition) bool {
	other, ok := o.(NotCondition)
	return ok && c.Inner.Equal(other.Inner)
}

func equalValuePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func dumpSlotValue(v *string) string {
	if v == nil {
		return ANY
	}
	return dumpValue(*v)
}

// Evaluate is the pure recursive evaluator over the condition tree,
// implementing the §4.2 table. It has no side effects: repeated calls with
// equal arguments return equal results.
func Evaluate(cond ActivationCondition, stage Stage, function string, info map[string]string) bool {
	switch c := cond.(type) {
	case nil:
		return false
	case NeverCondition:
		return false
	case EqualCondition:
		return evalLeaf(c.Slot, c.Value, stage, function, info, false)
	case NotEqualCondition:
		return evalLeaf(c.Slot, c.Value, stage, function, info, true)
	case AndCondition:
		return Evaluate(c.Left, stage, function, info) && Evaluate(c.Right, stage, function, info)
	case OrCondition:
		return Evaluate(c.Left, stage, function, info) || Evaluate(c.Right, stage, function, info)
	case NotCondition:
		return !Evaluate(c.Inner, stage, function, info)
	default:
		panic(fmt.Sprintf("illegal case: unknown ActivationCondition variant %T", cond))
	}
}

func evalLeaf(slot string, value *string, stage Stage, function string, info map[string]string, negated bool) bool {
	switch slot {
	case "action":
		if value == nil {
			return (function != "") != negated
		}
		return (function == *value) != negated
	case "stage":
		if value == nil {
			// NotEqual(stage, ANY) is false per §4.2's table; Equal(stage, ANY) is true.
			return !negated
		}
		return (stage.String() == *value) != negated
	default:
		v, ok := info[slot]
		if !ok {
			return false
		}
		if value == nil {
			// Equal(k, ANY) and NotEqual(k, ANY) both just test k ∈ info
			// per §4.2's "other k" row; ANY means presence, not a value to
			// negate against.
			return ok
		}
		return (v == *value) != negated
	}
}
