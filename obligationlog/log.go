// Package obligationlog persists the obligations a propagation run
// activates as a flat, append-only, de-duplicated JSON list, grounded on
// original_source/draid/obligation_store.py's ObligationStore.
package obligationlog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/renyuneyun/dr.aid/types"
)

// entry is one (component, obligation) pair, matching ObligationStore's
// internal `(component_uri, ActivatedObligation)` tuple list. It marshals to
// SPEC_FULL.md §6's on-disk shape, a pair rather than an object:
//
//	[component-uri, [action-name, [[attr-name, attr-type, attr-value], ...]]]
type entry struct {
	Component  string
	Obligation types.ActivatedObligation
}

func (e entry) MarshalJSON() ([]byte, error) {
	attrs := make([][3]any, len(e.Obligation.Attributes))
	for i, a := range e.Obligation.Attributes {
		attrs[i] = [3]any{a.Name, a.Type, a.Value}
	}
	pair := []any{e.Component, []any{e.Obligation.Action, attrs}}
	return json.Marshal(pair)
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("obligation log entry must be a [component, obligation] pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &e.Component); err != nil {
		return fmt.Errorf("obligation log entry component: %w", err)
	}
	var obPair [2]json.RawMessage
	if err := json.Unmarshal(raw[1], &obPair); err != nil {
		return fmt.Errorf("obligation log entry obligation must be [action, attrs]: %w", err)
	}
	if err := json.Unmarshal(obPair[0], &e.Obligation.Action); err != nil {
		return fmt.Errorf("obligation log entry action: %w", err)
	}
	var rawAttrs []json.RawMessage
	if err := json.Unmarshal(obPair[1], &rawAttrs); err != nil {
		return fmt.Errorf("obligation log entry attributes: %w", err)
	}
	e.Obligation.Attributes = make([]types.Attribute, len(rawAttrs))
	for i, raw := range rawAttrs {
		var triple [3]any
		if err := json.Unmarshal(raw, &triple); err != nil {
			return fmt.Errorf("obligation log entry attribute %d: %w", i, err)
		}
		name, _ := triple[0].(string)
		typ, _ := triple[1].(string)
		e.Obligation.Attributes[i] = types.Attribute{Name: name, Type: typ, Value: triple[2]}
	}
	return nil
}

// Log is an in-memory, file-backed obligation record. It is not safe for
// concurrent use; callers serialize access (e.g. the CLI driving a single
// run to completion before writing).
type Log struct {
	path    string
	entries []entry
}

// Open loads path's existing entries, if any; a missing file starts empty.
func Open(path string) (*Log, error) {
	l := &Log{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read obligation log: %w", err)
	}
	if len(raw) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(raw, &l.entries); err != nil {
		return nil, fmt.Errorf("parse obligation log: %w", err)
	}
	return l, nil
}

// Insert appends every obligation in activated for component, skipping any
// (component, obligation) pair already present, matching ObligationStore's
// insert's "not in self._obligation_list" de-duplication.
func (l *Log) Insert(component string, activated []types.ActivatedObligation) {
	for _, ob := range activated {
		if l.contains(component, ob) {
			continue
		}
		l.entries = append(l.entries, entry{Component: component, Obligation: ob})
	}
}

func (l *Log) contains(component string, ob types.ActivatedObligation) bool {
	for _, e := range l.entries {
		if e.Component == component && e.Obligation.Equal(ob) {
			return true
		}
	}
	return false
}

// List returns every recorded (component, obligation) pair in insertion
// order.
func (l *Log) List() []struct {
	Component  string
	Obligation types.ActivatedObligation
} {
	out := make([]struct {
		Component  string
		Obligation types.ActivatedObligation
	}, len(l.entries))
	for i, e := range l.entries {
		out[i].Component = e.Component
		out[i].Obligation = e.Obligation
	}
	return out
}

// Write persists the log back to its path.
func (l *Log) Write() error {
	out, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal obligation log: %w", err)
	}
	return os.WriteFile(l.path, out, 0o644)
}
