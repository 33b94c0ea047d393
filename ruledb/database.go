// Package ruledb decodes the JSON rule database — the externally supplied
// document that seeds a workflow graph with initial data rules, imported
// rules, flow rules, and upstream-data links — and resolves its entries
// against a concrete graph.Wrapper.
//
// The on-disk shape mirrors original_source/draid/rule_database_helper.py's
// schema directly:
//
//	{
//	  "data_rules":     {"<graphID>": {"uri": {"<portID>": "<rule text>"}}},
//	  "imported_rules": {"<graphID>": {"uri": {...}, "function": {...}}},
//	  "flow_rules":     {"<graphID>": {"uri": {...}, "function": {...}}},
//	  "link":           {"<fromGraph>": {"<fromURI>": {"<toGraph>": "<toURI>"}}}
//	}
//
// "" is the sentinel graph id standing in for the original's `None` /
// graph-unscoped ("global") entries.
package ruledb

import (
	"encoding/json"
	"fmt"
)

const globalGraph = ""

// ImportedSpec is either a single rule text applying to a component's
// default import port, or a per-port breakdown (port "" denotes the
// default/virtual import port, matching the original's `vport or None`).
type ImportedSpec struct {
	Default string
	Ports   map[string]string
}

// UnmarshalJSON accepts either a bare string or an object of port->rule text.
func (s *ImportedSpec) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Default = str
		s.Ports = nil
		return nil
	}
	var ports map[string]string
	if err := json.Unmarshal(data, &ports); err != nil {
		return fmt.Errorf("imported rule entry must be a string or object: %w", err)
	}
	s.Ports = ports
	return nil
}

// scopedSection is the "uri"/"function" pair shared by the imported_rules
// and flow_rules sections.
type scopedSection[V any] struct {
	ByComponent map[string]V `json:"uri"`
	ByFunction  map[string]V `json:"function"`
}

type dataRuleSection struct {
	ByComponent map[string]string `json:"uri"`
}

type jsonDatabase struct {
	DataRules     map[string]dataRuleSection             `json:"data_rules"`
	ImportedRules map[string]scopedSection[ImportedSpec]  `json:"imported_rules"`
	FlowRules     map[string]scopedSection[string]        `json:"flow_rules"`
	Link          map[string]map[string]map[string]string `json:"link"`
}

// Link records one upstream->downstream data-rule forwarding edge supplied
// by the rule database, outside of the workflow graph's own connections
// (e.g. a dataset produced in one graph consumed as an import in another).
type Link struct {
	FromGraph string
	FromURI   string
	ToGraph   string
	ToURI     string
}

// Database is the decoded rule database. Entries are kept per graph id; the
// Resolve methods look in the requested graph's entries first and fall back
// to the global ("") ones. Component-id entries take precedence over
// function-name ones wherever both are offered
// (ResolveImportedRule/ResolveFlowRule).
type Database struct {
	dataRules     map[string]map[string]string // graphID -> portID -> rule text
	importedRules map[string]scopedSection[ImportedSpec]
	flowRules     map[string]scopedSection[string]
	links         []Link
}

// Load decodes a rule database document.
func Load(data []byte) (*Database, error) {
	var jd jsonDatabase
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("decode rule database: %w", err)
	}

	db := &Database{
		dataRules:     map[string]map[string]string{},
		importedRules: jd.ImportedRules,
		flowRules:     jd.FlowRules,
	}
	for graphID, section := range jd.DataRules {
		db.dataRules[graphID] = section.ByComponent
	}

	for fromGraph, byURI := range jd.Link {
		for fromURI, toSection := range byURI {
			for toGraph, toURI := range toSection {
				db.links = append(db.links, Link{
					FromGraph: fromGraph,
					FromURI:   fromURI,
					ToGraph:   toGraph,
					ToURI:     toURI,
				})
			}
		}
	}
	return db, nil
}

// ResolveDataRule returns the rule text injected for the output port portID
// within graphID, preferring the graph-scoped entry over the global one.
func (db *Database) ResolveDataRule(graphID, portID string) (string, bool) {
	if rule, ok := lookup(db.dataRules[graphID], portID); ok {
		return rule, true
	}
	return lookup(db.dataRules[globalGraph], portID)
}

// ResolveImportedRule returns the imported-rule spec for a component,
// resolving component-id before function-name and graph scope before
// global scope (graphID's component-id entry wins over everything else,
// down to global's function-name entry).
func (db *Database) ResolveImportedRule(graphID, componentID, function string) (ImportedSpec, bool) {
	for _, gid := range []string{graphID, globalGraph} {
		section, ok := db.importedRules[gid]
		if !ok {
			continue
		}
		if spec, ok := lookup(section.ByComponent, componentID); ok {
			return spec, true
		}
		if spec, ok := lookup(section.ByFunction, function); ok {
			return spec, true
		}
	}
	return ImportedSpec{}, false
}

// ResolveFlowRule returns the flow-rule text for a component, with the same
// component-id-over-function-name, graph-over-global precedence as
// ResolveImportedRule.
func (db *Database) ResolveFlowRule(graphID, componentID, function string) (string, bool) {
	for _, gid := range []string{graphID, globalGraph} {
		section, ok := db.flowRules[gid]
		if !ok {
			continue
		}
		if rule, ok := lookup(section.ByComponent, componentID); ok {
			return rule, true
		}
		if rule, ok := lookup(section.ByFunction, function); ok {
			return rule, true
		}
	}
	return "", false
}

// ResolveLink finds the most specific link landing on (toGraph, toURI): an
// exact graph match wins; a graph-unscoped link only applies when no
// graph-scoped one matches, mirroring
// original_source/injection.py's find_upstream_in_link.
func (db *Database) ResolveLink(toGraph, toURI string) (Link, bool) {
	var best *Link
	for i := range db.links {
		l := &db.links[i]
		if l.ToURI != toURI {
			continue
		}
		if l.ToGraph != "" {
			if l.ToGraph == toGraph {
				best = l
			}
			continue
		}
		if best == nil {
			best = l
		}
	}
	if best == nil {
		return Link{}, false
	}
	return *best, true
}

func lookup[V any](m map[string]V, key string) (V, bool) {
	v, ok := m[key]
	return v, ok
}
