package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/renyuneyun/dr.aid/types"
)

// jsonComponent is one component entry in the JSON workflow description.
type jsonComponent struct {
	ID           string            `json:"id"`
	Function     string            `json:"function"`
	Parameters   map[string]string `json:"parameters"`
	InputPorts   []string          `json:"input_ports"`
	OutputPorts  []string          `json:"output_ports"`
	EnrichEngine string            `json:"enrich_engine"`
}

// jsonConnection wires one component's output port to another's input port.
type jsonConnection struct {
	FromComponent string `json:"from_component"`
	FromPort      string `json:"from_port"`
	ToComponent   string `json:"to_component"`
	ToPort        string `json:"to_port"`
}

// jsonWorkflow is the on-disk shape memgraph.Load reads.
type jsonWorkflow struct {
	Components  []jsonComponent   `json:"components"`
	Connections []jsonConnection  `json:"connections"`
	GraphInfo   map[string]string `json:"graph_info"`
}

// PortID globally qualifies a port name with its owning component, since
// port names are only unique within a component.
func PortID(component, port string) string {
	return component + "/" + port
}

// MemGraph is an in-memory Wrapper built from a JSON workflow description:
// the boundary stand-in for the out-of-scope SPARQL-backed loader.
type MemGraph struct {
	order       []string
	components  map[string]ComponentInfo
	inputPorts  map[string][]string
	outputPorts map[string][]string
	portOwner   map[string]string // portKey -> component
	portName    map[string]string // portKey -> bare port name

	upstream   map[string][]string // input portKey -> []output portKey
	downstream map[string][]string // output portKey -> []input portKey

	graphInfo map[string]string

	flowRules     map[string]types.FlowRule
	importedRules map[string]*types.DataRuleContainer
	portRules     map[string]*types.DataRuleContainer
	obligations   map[string][]types.ActivatedObligation
}

// Load parses a JSON workflow description into a MemGraph.
func Load(r io.Reader) (*MemGraph, error) {
	var wf jsonWorkflow
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode workflow description: %w", err)
	}
	return FromDescription(wf.Components, wf.Connections, wf.GraphInfo)
}

// FromDescription builds a MemGraph directly from decoded components and
// connections, without going through JSON.
func FromDescription(components []jsonComponent, connections []jsonConnection, graphInfo map[string]string) (*MemGraph, error) {
	g := &MemGraph{
		components:    map[string]ComponentInfo{},
		inputPorts:    map[string][]string{},
		outputPorts:   map[string][]string{},
		portOwner:     map[string]string{},
		portName:      map[string]string{},
		upstream:      map[string][]string{},
		downstream:    map[string][]string{},
		graphInfo:     graphInfo,
		flowRules:     map[string]types.FlowRule{},
		importedRules: map[string]*types.DataRuleContainer{},
		portRules:     map[string]*types.DataRuleContainer{},
		obligations:   map[string][]types.ActivatedObligation{},
	}
	for _, c := range components {
		if _, dup := g.components[c.ID]; dup {
			return nil, fmt.Errorf("duplicate component id %q", c.ID)
		}
		g.order = append(g.order, c.ID)
		g.components[c.ID] = ComponentInfo{
			ID:           c.ID,
			Function:     c.Function,
			Parameters:   c.Parameters,
			EnrichEngine: c.EnrichEngine,
		}
		g.inputPorts[c.ID] = append([]string(nil), c.InputPorts...)
		g.outputPorts[c.ID] = append([]string(nil), c.OutputPorts...)
		for _, p := range c.InputPorts {
			key := PortID(c.ID, p)
			g.portOwner[key] = c.ID
			g.portName[key] = p
		}
		for _, p := range c.OutputPorts {
			key := PortID(c.ID, p)
			g.portOwner[key] = c.ID
			g.portName[key] = p
		}
	}
	for _, conn := range connections {
		from := PortID(conn.FromComponent, conn.FromPort)
		to := PortID(conn.ToComponent, conn.ToPort)
		if _, ok := g.portOwner[from]; !ok {
			return nil, fmt.Errorf("connection references unknown output port %s.%s", conn.FromComponent, conn.FromPort)
		}
		if _, ok := g.portOwner[to]; !ok {
			return nil, fmt.Errorf("connection references unknown input port %s.%s", conn.ToComponent, conn.ToPort)
		}
		g.upstream[to] = append(g.upstream[to], from)
		g.downstream[from] = append(g.downstream[from], to)
	}
	return g, nil
}

// PortID qualifies a component-local port name into the global identifier
// used throughout MemGraph's internal maps.
func (g *MemGraph) PortID(component, port string) string { return PortID(component, port) }

func (g *MemGraph) Components() []string { return append([]string(nil), g.order...) }

func (g *MemGraph) InputPorts(component string) []string {
	return append([]string(nil), g.inputPorts[component]...)
}

func (g *MemGraph) OutputPorts(component string) []string {
	return append([]string(nil), g.outputPorts[component]...)
}

func (g *MemGraph) UpstreamOutputPorts(inputPort string) []string {
	return g.upstream[inputPort]
}

func (g *MemGraph) DownstreamInputPorts(outputPort string) []string {
	return g.downstream[outputPort]
}

func (g *MemGraph) ComponentOfPort(port string) string { return g.portOwner[port] }
func (g *MemGraph) NameOfPort(port string) string      { return g.portName[port] }

func (g *MemGraph) ComponentInfo(component string) ComponentInfo {
	return g.components[component]
}

func (g *MemGraph) GraphInfo() map[string]string {
	out := make(map[string]string, len(g.graphInfo))
	for k, v := range g.graphInfo {
		out[k] = v
	}
	return out
}

// ComponentBatches computes a topological batching via Kahn's algorithm:
// repeatedly strip every component with zero remaining in-degree into the
// next batch. A non-empty remainder after no component can be stripped
// means the component graph has a cycle.
func (g *MemGraph) ComponentBatches() ([][]string, error) {
	inDegree := map[string]int{}
	for _, c := range g.order {
		inDegree[c] = 0
	}
	for _, c := range g.order {
		for _, inPort := range g.inputPorts[c] {
			key := PortID(c, inPort)
			inDegree[c] += len(g.upstream[key])
		}
	}

	remaining := len(g.order)
	var batches [][]string
	for remaining > 0 {
		var batch []string
		for _, c := range g.order {
			if inDegree[c] == 0 {
				batch = append(batch, c)
			}
		}
		if len(batch) == 0 {
			return nil, fmt.Errorf("component graph has a cycle: %d component(s) unresolved", remaining)
		}
		for _, c := range batch {
			inDegree[c] = -1 // removed
			remaining--
			for _, outPort := range g.outputPorts[c] {
				key := PortID(c, outPort)
				for _, downInput := range g.downstream[key] {
					owner := g.portOwner[downInput]
					if inDegree[owner] > 0 {
						inDegree[owner]--
					}
				}
			}
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func (g *MemGraph) SetFlowRule(component string, fr types.FlowRule) { g.flowRules[component] = fr }

func (g *MemGraph) FlowRule(component string) (types.FlowRule, bool) {
	fr, ok := g.flowRules[component]
	return fr, ok
}

func (g *MemGraph) SetImportedRule(component string, c *types.DataRuleContainer) {
	g.importedRules[component] = c
}

func (g *MemGraph) ImportedRule(component string) (*types.DataRuleContainer, bool) {
	c, ok := g.importedRules[component]
	return c, ok
}

func (g *MemGraph) SetPortRule(port string, c *types.DataRuleContainer) { g.portRules[port] = c }

func (g *MemGraph) PortRule(port string) (*types.DataRuleContainer, bool) {
	c, ok := g.portRules[port]
	return c, ok
}

func (g *MemGraph) RecordObligations(component string, obs []types.ActivatedObligation) {
	if len(obs) == 0 {
		return
	}
	g.obligations[component] = append(g.obligations[component], obs...)
}

func (g *MemGraph) ActivatedObligations() map[string][]types.ActivatedObligation {
	return g.obligations
}
