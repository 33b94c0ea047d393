package types

import (
	"fmt"
	"strings"
)

// FlowRule is an ordered, stateless sequence of FlowActions attached to a
// component: it describes how that component's input-port containers are
// transformed into output-port containers as data flows across it. An
// optional NameMap rewrites port names at the moment the actions are read
// (MappedActions), so the same FlowRule text can be reused verbatim across
// components whose ports are named differently.
type FlowRule struct {
	Actions []FlowAction
	NameMap map[string]string
}

// FlowAction is a closed tagged union (Propagate, Edit, Delete). Each
// variant implements its own Dump and name mapping; the interpreter applies
// actions through a type switch.
type FlowAction interface {
	sealedFlowAction()
	Dump() string
	mapped(nameMap map[string]string) FlowAction
}

// Wildcard is the "*" port/attribute-name/match token meaning "any".
const Wildcard = "*"

func mapName(nameMap map[string]string, name string) string {
	if v, ok := nameMap[name]; ok {
		return v
	}
	return name
}

// PropagateAction merges the container read from InputPort, unchanged, into
// every port named in OutputPorts.
type PropagateAction struct {
	InputPort   string
	OutputPorts []string
}

func (PropagateAction) sealedFlowAction() {}

func (a PropagateAction) Dump() string {
	return fmt.Sprintf("%s -> %s", dumpPortName(a.InputPort), strings.Join(mapSlice(a.OutputPorts, dumpPortName), ", "))
}

func dumpPortName(p string) string {
	return dumpToken(p)
}

func mapSlice(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func (a PropagateAction) mapped(nameMap map[string]string) FlowAction {
	outs := make([]string, len(a.OutputPorts))
	for i, o := range a.OutputPorts {
		outs[i] = mapName(nameMap, o)
	}
	return PropagateAction{InputPort: mapName(nameMap, a.InputPort), OutputPorts: outs}
}

// AttrMatcher selects which attributes within a capsule an Edit/Delete
// action applies to. A nil field means "don't care" (matches anything).
type AttrMatcher struct {
	Name  *string
	Type  *string
	Value *string
}

func (m AttrMatcher) dump() string {
	return fmt.Sprintf("%s, %s, %s", dumpMay(m.Name), dumpMay(m.Type), dumpMayValue(m.Value))
}

func dumpMay(s *string) string {
	if s == nil {
		return Wildcard
	}
	return dumpToken(*s)
}

func dumpMayValue(s *string) string {
	if s == nil {
		return Wildcard
	}
	return dumpValue(*s)
}

// EditAction rewrites attributes matching Match within the capsule(s)
// addressed by InputPort/OutputPort (the named port or ports; only when both
// are nil does it apply to every populated port), replacing
// their declared type and value while preserving the attribute's name and
// its position, so existing AttributeReferences into it stay valid.
type EditAction struct {
	InputPort, OutputPort *string
	Match                 AttrMatcher
	NewType               string
	NewValue              any
}

func (EditAction) sealedFlowAction() {}

func (a EditAction) Dump() string {
	return fmt.Sprintf("edit(%s, %s, %s, %s, %s)",
		dumpMay(a.InputPort), dumpMay(a.OutputPort), a.Match.dump(), dumpToken(a.NewType), dumpValue(a.NewValue))
}

func (a EditAction) mapped(nameMap map[string]string) FlowAction {
	return EditAction{
		InputPort:  mapPortName(nameMap, a.InputPort),
		OutputPort: mapPortName(nameMap, a.OutputPort),
		Match:      a.Match,
		NewType:    a.NewType,
		NewValue:   a.NewValue,
	}
}

// DeleteAction removes attributes matching Match within the capsule(s)
// addressed by InputPort/OutputPort (the named port or ports; only when both
// are nil does it apply to every populated port). Any
// obligation whose Args/Bindings reference a removed attribute is itself
// dropped, and surviving attributes in the affected capsule are
// re-indexed, with obligation references rewritten to match. A capsule
// emptied by Delete is kept in place, with zero attributes, rather than
// removed.
type DeleteAction struct {
	InputPort, OutputPort *string
	Match                 AttrMatcher
}

func (DeleteAction) sealedFlowAction() {}

func (a DeleteAction) Dump() string {
	return fmt.Sprintf("delete(%s, %s, %s)", dumpMay(a.InputPort), dumpMay(a.OutputPort), a.Match.dump())
}

func (a DeleteAction) mapped(nameMap map[string]string) FlowAction {
	return DeleteAction{
		InputPort:  mapPortName(nameMap, a.InputPort),
		OutputPort: mapPortName(nameMap, a.OutputPort),
		Match:      a.Match,
	}
}

func mapPortName(nameMap map[string]string, p *string) *string {
	if p == nil {
		return nil
	}
	mapped := mapName(nameMap, *p)
	return &mapped
}

// MappedActions returns the actions with NameMap applied, or Actions
// unchanged if no NameMap is set.
func (f FlowRule) MappedActions() []FlowAction {
	if len(f.NameMap) == 0 {
		return f.Actions
	}
	out := make([]FlowAction, len(f.Actions))
	for i, a := range f.Actions {
		out[i] = a.mapped(f.NameMap)
	}
	return out
}

// Dump renders the flow rule as one action per line.
func (f FlowRule) Dump() string {
	var b strings.Builder
	for i, a := range f.Actions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.Dump())
	}
	return b.String()
}

// DefaultFlow is the implicit flow rule a component without a declared one
// follows: propagate every declared input port, unchanged, to every
// declared output port.
func DefaultFlow(inputPorts, outputPorts []string) FlowRule {
	actions := make([]FlowAction, 0, len(inputPorts))
	for _, in := range inputPorts {
		actions = append(actions, PropagateAction{InputPort: in, OutputPorts: outputPorts})
	}
	return FlowRule{Actions: actions}
}
