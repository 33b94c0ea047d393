// Package graph defines the workflow-graph contract the propagation
// engine runs against (Wrapper) and ships an in-memory implementation of
// it (memgraph.go) built from a small JSON description, standing in for
// the real SPARQL-backed provenance loader.
package graph

import "github.com/renyuneyun/dr.aid/types"

// ComponentInfo is the static description of a workflow component: its
// function tag (used to resolve injected rules by function name) and its
// declared parameters (exposed to activation conditions and
// context-enrichment scripts as part of `info`).
type ComponentInfo struct {
	ID         string
	Function   string
	Parameters map[string]string

	// EnrichEngine, when non-empty, names a types.Config.ScriptEngines entry
	// run against Parameters to derive extra activation-info entries ahead
	// of Parameters itself, per the driver's info-composition order. The
	// script source itself travels inside Parameters (conventionally under
	// the "script" key), decoded alongside the rest of the component's
	// declared configuration the way the teacher's node Init methods decode
	// their Configuration map into a typed Config struct.
	EnrichEngine string
}

// VirtualImportPort names the synthetic input port a component's imported
// rule (one with no upstream connection) is attached to, so it can be
// addressed by a FlowRule exactly like any other input port.
func VirtualImportPort(component string) string {
	return component + "#import"
}

// Wrapper is the workflow-graph contract: components, their ports and
// connections, the rules attached at each point, and a topological
// batching of the components for the propagation driver.
type Wrapper interface {
	// Components lists every component, in a stable order.
	Components() []string
	InputPorts(component string) []string
	OutputPorts(component string) []string

	// PortID qualifies a component-local port name into the identifier
	// UpstreamOutputPorts/DownstreamInputPorts/PortRule operate on.
	PortID(component, port string) string

	// UpstreamOutputPorts returns the output ports connected to inputPort,
	// in connection order (normally one, but fan-in is legal).
	UpstreamOutputPorts(inputPort string) []string
	// DownstreamInputPorts returns the input ports connected to outputPort.
	DownstreamInputPorts(outputPort string) []string

	ComponentOfPort(port string) string
	NameOfPort(port string) string
	ComponentInfo(component string) ComponentInfo

	// ComponentBatches topologically batches the components so that every
	// component in a batch has all its upstream dependencies satisfied by
	// an earlier batch. It errors if the component graph has a cycle.
	ComponentBatches() ([][]string, error)

	// GraphInfo returns graph-wide info entries (e.g. workflow id) merged
	// into every component's activation info ahead of its own parameters.
	GraphInfo() map[string]string

	SetFlowRule(component string, fr types.FlowRule)
	FlowRule(component string) (types.FlowRule, bool)

	SetImportedRule(component string, c *types.DataRuleContainer)
	ImportedRule(component string) (*types.DataRuleContainer, bool)

	// SetPortRule/PortRule attach/retrieve the DataRuleContainer produced
	// at an output port (or, for the driver's bookkeeping, read back at an
	// input port).
	SetPortRule(port string, c *types.DataRuleContainer)
	PortRule(port string) (*types.DataRuleContainer, bool)

	// RecordObligations appends the obligations activated by component
	// during this run, for later retrieval (e.g. by the obligation log).
	RecordObligations(component string, obs []types.ActivatedObligation)
	ActivatedObligations() map[string][]types.ActivatedObligation
}
