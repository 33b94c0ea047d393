package ruledb

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/renyuneyun/dr.aid/graph"
)

// WriteBack appends g's current output-port rules to the global
// (graph-unscoped, "") data_rules section of the rule database document at
// path, creating it if absent. It is the Go-native counterpart of
// update_db_default, reading the resulting rule text back out through
// each container's Dump rather than re-deriving it.
func WriteBack(g graph.Wrapper, path string) error {
	doc := map[string]any{}
	if raw, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse existing rule database: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read rule database: %w", err)
	}

	dataRules, _ := doc["data_rules"].(map[string]any)
	if dataRules == nil {
		dataRules = map[string]any{}
	}
	global, _ := dataRules[globalGraph].(map[string]any)
	if global == nil {
		global = map[string]any{}
	}
	byURI, _ := global["uri"].(map[string]any)
	if byURI == nil {
		byURI = map[string]any{}
	}

	for _, component := range g.Components() {
		for _, port := range g.OutputPorts(component) {
			portID := g.PortID(component, port)
			container, ok := g.PortRule(portID)
			if !ok {
				continue
			}
			byURI[portID] = container.Dump()
		}
	}

	global["uri"] = byURI
	dataRules[globalGraph] = global
	doc["data_rules"] = dataRules

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule database: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}
