package ruledb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/types"
)

func TestWriteBackCreatesDataRulesSection(t *testing.T) {
	doc := `{"components": [{"id": "a", "output_ports": ["out"]}]}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	container := types.NewDataRuleContainer()
	container.Capsules = append(container.Capsules, &types.AttributeCapsule{
		Name:  "person",
		Attrs: []types.Attribute{{Name: "name", Type: "str", Value: "Alice"}},
	})
	g.SetPortRule(g.PortID("a", "out"), container)

	path := filepath.Join(t.TempDir(), "db.json")
	if err := WriteBack(g, path); err != nil {
		t.Fatalf("WriteBack error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	var doc2 map[string]any
	if err := json.Unmarshal(raw, &doc2); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	dataRules := doc2["data_rules"].(map[string]any)
	global := dataRules[""].(map[string]any)
	byURI := global["uri"].(map[string]any)
	if byURI["a/out"] != container.Dump() {
		t.Errorf("written rule = %v, want %q", byURI["a/out"], container.Dump())
	}
}

func TestWriteBackMergesIntoExistingDocument(t *testing.T) {
	doc := `{"components": [{"id": "a", "output_ports": ["out"]}]}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	g.SetPortRule(g.PortID("a", "out"), types.NewDataRuleContainer())

	path := filepath.Join(t.TempDir(), "db.json")
	existing := `{"flow_rules": {"": {"function": {"f1": "in -> out"}}}}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if err := WriteBack(g, path); err != nil {
		t.Fatalf("WriteBack error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	var doc2 map[string]any
	if err := json.Unmarshal(raw, &doc2); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, ok := doc2["flow_rules"]; !ok {
		t.Error("WriteBack should preserve pre-existing sections of the document")
	}
	if _, ok := doc2["data_rules"]; !ok {
		t.Error("WriteBack should add the data_rules section")
	}
}

func TestWriteBackSkipsPortsWithoutARule(t *testing.T) {
	doc := `{"components": [{"id": "a", "output_ports": ["out", "out2"]}]}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	g.SetPortRule(g.PortID("a", "out"), types.NewDataRuleContainer())

	path := filepath.Join(t.TempDir(), "db.json")
	if err := WriteBack(g, path); err != nil {
		t.Fatalf("WriteBack error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	var doc2 map[string]any
	if err := json.Unmarshal(raw, &doc2); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	byURI := doc2["data_rules"].(map[string]any)[""].(map[string]any)["uri"].(map[string]any)
	if _, ok := byURI["a/out2"]; ok {
		t.Error("expected no entry for a port with no attached rule")
	}
	if _, ok := byURI["a/out"]; !ok {
		t.Error("expected an entry for the port with an attached rule")
	}
}
