// Package merge implements the data-rule merge algebra: combining the
// attribute capsules and obligation declarations of two or more
// DataRuleContainers (as happens at a fan-in port, or when a component both
// imports rules and receives propagated ones) into one container, without
// duplicating identical attributes or identical obligations.
package merge

import "github.com/renyuneyun/dr.aid/types"

// mergeCapsule merges into, which already belongs to the accumulator,
// appending any attribute of from not already present by value, and
// returns the per-position offset (newIndex - oldIndex) needed to rewrite
// references that pointed into from.
func mergeCapsule(into, from *types.AttributeCapsule) (*types.AttributeCapsule, []int) {
	merged := into.Clone()
	diff := make([]int, len(from.Attrs))
	for i, attr := range from.Attrs {
		index := indexOf(merged.Attrs, attr)
		if index < 0 {
			index = len(merged.Attrs)
			merged.Attrs = append(merged.Attrs, attr)
		}
		diff[i] = index - i
	}
	return merged, diff
}

func indexOf(attrs []types.Attribute, a types.Attribute) int {
	for i, x := range attrs {
		if x.Equal(a) {
			return i
		}
	}
	return -1
}

// transferRefs rewrites an obligation declaration's Args/Bindings
// references using the per-capsule-name offset table built while merging
// capsules: a reference into a capsule that was merged has its index
// shifted by that capsule's diff[originalIndex]; a reference into a
// capsule that was carried over unchanged (no entry in dmap) is untouched.
func transferRefs(o types.ObligationDeclaration, dmap map[string][]int) types.ObligationDeclaration {
	out := o.Clone()
	remap := func(refs []types.AttributeReference) {
		for i, r := range refs {
			if diff, ok := dmap[r.Name]; ok && r.Index >= 0 && r.Index < len(diff) {
				refs[i].Index = r.Index + diff[r.Index]
			}
		}
	}
	remap(out.Args)
	remap(out.Bindings)
	return out
}

// Merge combines first with every container in rest, in order, returning a
// new container. Attribute capsules are unioned by name, deduplicating
// attributes by value within a capsule; obligation declarations are
// appended only when no structurally equal declaration (after reference
// rewriting) is already present. Merge is associative in effect but not
// commutative in representation: the insertion order of first's capsules
// and obligations is preserved ahead of each subsequent container's.
func Merge(first *types.DataRuleContainer, rest ...*types.DataRuleContainer) *types.DataRuleContainer {
	out := first.Clone()
	for _, next := range rest {
		dmap := map[string][]int{}
		for _, cap := range next.Capsules {
			existing := out.Capsule(cap.Name)
			if existing == nil {
				out.Capsules = append(out.Capsules, cap.Clone())
				continue
			}
			merged, diff := mergeCapsule(existing, cap)
			replaceCapsule(out, merged)
			dmap[cap.Name] = diff
		}
		for _, ob := range next.Obligation {
			rewritten := transferRefs(ob, dmap)
			if containsObligation(out.Obligation, rewritten) {
				continue
			}
			out.Obligation = append(out.Obligation, rewritten)
		}
	}
	return out
}

func replaceCapsule(c *types.DataRuleContainer, replacement *types.AttributeCapsule) {
	for i, cap := range c.Capsules {
		if cap.Name == replacement.Name {
			c.Capsules[i] = replacement
			return
		}
	}
	c.Capsules = append(c.Capsules, replacement)
}

func containsObligation(obs []types.ObligationDeclaration, o types.ObligationDeclaration) bool {
	for _, x := range obs {
		if x.Equal(o) {
			return true
		}
	}
	return false
}
