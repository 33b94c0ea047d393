package ruledb

import (
	"fmt"

	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/merge"
	"github.com/renyuneyun/dr.aid/ruledsl"
	"github.com/renyuneyun/dr.aid/types"
)

// Inject resolves every data rule, imported rule, and flow rule the
// database declares for g's components within graphID and attaches them to
// g, parsing each rule-text entry with ruledsl along the way. It mirrors
// original_source/draid/recognizer.py's apply_data_rules /
// apply_imported_rules / apply_flow_rules, collapsed into a single pass
// since MemGraph holds all three kinds of injected rule directly rather
// than through a mutable RDF graph.
func (db *Database) Inject(g graph.Wrapper, graphID string) error {
	for _, component := range g.Components() {
		info := g.ComponentInfo(component)

		for _, port := range g.OutputPorts(component) {
			portID := g.PortID(component, port)
			ruleText, ok := db.ResolveDataRule(graphID, portID)
			if !ok {
				continue
			}
			container, err := ruledsl.ParseDataRule(ruleText)
			if err != nil {
				return fmt.Errorf("data rule for %s: %w", portID, err)
			}
			g.SetPortRule(portID, container)
		}

		if spec, ok := db.ResolveImportedRule(graphID, component, info.Function); ok {
			container, err := importedContainer(spec)
			if err != nil {
				return fmt.Errorf("imported rule for %s: %w", component, err)
			}
			if container != nil {
				g.SetImportedRule(component, container)
			}
		}

		if ruleText, ok := db.ResolveFlowRule(graphID, component, info.Function); ok {
			flowRule, err := ruledsl.ParseFlowRule(ruleText)
			if err != nil {
				return fmt.Errorf("flow rule for %s: %w", component, err)
			}
			g.SetFlowRule(component, flowRule)
		}
	}
	return nil
}

// importedContainer resolves an ImportedSpec to a single DataRuleContainer.
// A per-port breakdown is merged via the same Merge algebra the driver uses
// for multiple upstream containers, since an imported rule is conceptually
// just another (virtual) input.
func importedContainer(spec ImportedSpec) (*types.DataRuleContainer, error) {
	if spec.Ports == nil {
		if spec.Default == "" {
			return nil, nil
		}
		return ruledsl.ParseDataRule(spec.Default)
	}
	var containers []*types.DataRuleContainer
	for _, ruleText := range spec.Ports {
		c, err := ruledsl.ParseDataRule(ruleText)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}
	if len(containers) == 0 {
		return nil, nil
	}
	if len(containers) == 1 {
		return containers[0], nil
	}
	return merge.Merge(containers[0], containers[1:]...), nil
}
