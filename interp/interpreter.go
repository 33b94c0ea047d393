// Package interp interprets a types.FlowRule against a component's input
// data-rule containers, producing its output containers: the state
// transformer described by the flow-rule model (Propagate/Edit/Delete).
package interp

import (
	"fmt"

	"github.com/renyuneyun/dr.aid/merge"
	"github.com/renyuneyun/dr.aid/types"
)

// Apply runs rule's actions, in order, against inputs (keyed by input port
// name) and returns every port that ended up with a container, keyed by
// port name. Propagate merges a source port's container into one or more
// destination ports; Edit and Delete address one or more ports directly (an
// action with neither InputPort nor OutputPort set applies to every port
// currently holding a container; an action naming one or both applies only
// to those). A reference to a port that never received a container, or an
// attribute-matcher that matches nothing, is a no-op — not an error.
func Apply(rule types.FlowRule, inputs map[string]*types.DataRuleContainer) map[string]*types.DataRuleContainer {
	ports := make(map[string]*types.DataRuleContainer, len(inputs))
	for name, c := range inputs {
		ports[name] = c.Clone()
	}

	for _, action := range rule.MappedActions() {
		switch a := action.(type) {
		case types.PropagateAction:
			applyPropagate(ports, a)
		case types.EditAction:
			applyEdit(ports, a)
		case types.DeleteAction:
			applyDelete(ports, a)
		}
	}
	return ports
}

func applyPropagate(ports map[string]*types.DataRuleContainer, a types.PropagateAction) {
	src, ok := ports[a.InputPort]
	if !ok {
		return
	}
	for _, out := range a.OutputPorts {
		if existing, ok := ports[out]; ok {
			ports[out] = merge.Merge(existing, src)
		} else {
			ports[out] = src.Clone()
		}
	}
}

// targetPorts resolves which port names an Edit/Delete action addresses:
// both named ports if both are set, the one named port if only one is set,
// or every port currently populated if neither is set.
func targetPorts(ports map[string]*types.DataRuleContainer, in, out *string) []string {
	if in == nil && out == nil {
		names := make([]string, 0, len(ports))
		for name := range ports {
			names = append(names, name)
		}
		return names
	}
	var names []string
	if in != nil {
		names = append(names, *in)
	}
	if out != nil {
		names = append(names, *out)
	}
	return names
}

func matchesAttr(attr types.Attribute, m types.AttrMatcher) bool {
	if m.Name != nil && attr.Name != *m.Name {
		return false
	}
	if m.Type != nil && attr.Type != *m.Type {
		return false
	}
	if m.Value != nil {
		if scalarString(attr.Value) != *m.Value {
			return false
		}
	}
	return true
}

// scalarString renders attr.Value (int64/float64/string, per
// ruledsl/datarule.go's parseScalar) the same way the flow-rule parser
// stringifies a matcher's literal (ruledsl/flowrule.go's parseScalarMay), so
// a match_value compares equal regardless of which side carries the typed
// Go value and which carries the parsed-out string.
func scalarString(v any) string {
	switch x := v.(type) {
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%v", x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

func applyEdit(ports map[string]*types.DataRuleContainer, a types.EditAction) {
	for _, portName := range targetPorts(ports, a.InputPort, a.OutputPort) {
		c, ok := ports[portName]
		if !ok {
			continue
		}
		for _, cap := range c.Capsules {
			for i, attr := range cap.Attrs {
				if !matchesAttr(attr, a.Match) {
					continue
				}
				cap.Attrs[i] = types.Attribute{Name: attr.Name, Type: a.NewType, Value: a.NewValue}
			}
		}
	}
}

func applyDelete(ports map[string]*types.DataRuleContainer, a types.DeleteAction) {
	for _, portName := range targetPorts(ports, a.InputPort, a.OutputPort) {
		c, ok := ports[portName]
		if !ok {
			continue
		}
		for _, cap := range c.Capsules {
			deleteMatching(c, cap, a.Match)
		}
	}
}

// deleteMatching removes every attribute in cap matching m, re-indexes the
// survivors, rewrites every obligation reference into cap accordingly, and
// drops any obligation that referenced a removed attribute. The capsule
// itself is kept in place, even if left empty.
func deleteMatching(c *types.DataRuleContainer, cap *types.AttributeCapsule, m types.AttrMatcher) {
	remap := make([]int, len(cap.Attrs))
	survivors := make([]types.Attribute, 0, len(cap.Attrs))
	anyRemoved := false
	for i, attr := range cap.Attrs {
		if matchesAttr(attr, m) {
			remap[i] = -1
			anyRemoved = true
			continue
		}
		remap[i] = len(survivors)
		survivors = append(survivors, attr)
	}
	if !anyRemoved {
		return
	}
	cap.Attrs = survivors

	kept := make([]types.ObligationDeclaration, 0, len(c.Obligation))
	for _, ob := range c.Obligation {
		if referencesRemoved(ob.Args, cap.Name, remap) || referencesRemoved(ob.Bindings, cap.Name, remap) {
			continue
		}
		rewriteRefs(ob.Args, cap.Name, remap)
		rewriteRefs(ob.Bindings, cap.Name, remap)
		kept = append(kept, ob)
	}
	c.Obligation = kept
}

func referencesRemoved(refs []types.AttributeReference, capsuleName string, remap []int) bool {
	for _, r := range refs {
		if r.Name != capsuleName {
			continue
		}
		if r.Index < 0 || r.Index >= len(remap) || remap[r.Index] == -1 {
			return true
		}
	}
	return false
}

func rewriteRefs(refs []types.AttributeReference, capsuleName string, remap []int) {
	for i, r := range refs {
		if r.Name != capsuleName {
			continue
		}
		refs[i].Index = remap[r.Index]
	}
}
