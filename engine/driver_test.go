package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/types"
)

type recordingScriptEngine struct {
	name string
	got  map[string]any
}

func (e *recordingScriptEngine) Name() string { return e.name }

func (e *recordingScriptEngine) Eval(source string, params map[string]any) (map[string]string, error) {
	e.got = params
	return map[string]string{"enriched": source}, nil
}

func personContainer(value string) *types.DataRuleContainer {
	c := types.NewDataRuleContainer()
	c.Capsules = append(c.Capsules, &types.AttributeCapsule{
		Name:  "person",
		Attrs: []types.Attribute{{Name: "name", Type: "str", Value: value}},
	})
	return c
}

func TestDriverRunPropagatesImportedRuleThroughLinearChain(t *testing.T) {
	doc := `{
		"components": [
			{"id": "a", "function": "source", "output_ports": ["out"]},
			{"id": "b", "function": "sink", "input_ports": ["in"], "output_ports": ["out"]}
		],
		"connections": [
			{"from_component": "a", "from_port": "out", "to_component": "b", "to_port": "in"}
		]
	}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	g.SetImportedRule("a", personContainer("Alice"))

	d := New(types.NewConfig())
	if err := d.Run(context.Background(), g); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	final, ok := g.PortRule(g.PortID("b", "out"))
	if !ok {
		t.Fatal("expected b/out to have a resulting container")
	}
	cap := final.Capsule("person")
	if cap == nil || cap.Attrs[0].Value != "Alice" {
		t.Errorf("final container = %v", final.Dump())
	}
}

func TestDriverRunActivatesObligationsAndInvokesSink(t *testing.T) {
	doc := `{"components": [{"id": "a", "function": "source", "output_ports": ["out"]}]}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	container := types.NewDataRuleContainer()
	container.Obligation = append(container.Obligation, types.ObligationDeclaration{
		Action:    "notify",
		Condition: types.EqualCondition{Slot: "action", Value: nil},
	})
	g.SetImportedRule("a", container)

	var got []string
	d := New(types.NewConfig(types.WithObligationSink(func(componentURI string, ob types.ActivatedObligation) {
		got = append(got, componentURI+":"+ob.Action)
	})))
	if err := d.Run(context.Background(), g); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(got) != 1 || got[0] != "a:notify" {
		t.Errorf("obligation sink calls = %v", got)
	}
	if len(g.ActivatedObligations()["a"]) != 1 {
		t.Errorf("RecordObligations did not record on the graph: %v", g.ActivatedObligations())
	}
}

func TestDriverRunEvaluatesEnrichmentAheadOfParameters(t *testing.T) {
	doc := `{
		"components": [
			{"id": "a", "function": "source", "output_ports": ["out"],
			 "parameters": {"enriched": "from-params", "script": "src"},
			 "enrich_engine": "fake"}
		]
	}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	container := types.NewDataRuleContainer()
	container.Obligation = append(container.Obligation, types.ObligationDeclaration{
		Action:    "notify",
		Condition: types.EqualCondition{Slot: "enriched", Value: strPtr("from-params")},
	})
	g.SetImportedRule("a", container)

	engine := &recordingScriptEngine{name: "fake"}
	d := New(types.NewConfig(types.WithScriptEngine(engine)))
	if err := d.Run(context.Background(), g); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(g.ActivatedObligations()["a"]) != 1 {
		t.Errorf("expected parameters to override enrichment's %q entry: %v", "enriched", g.ActivatedObligations())
	}
}

func strPtr(s string) *string { return &s }

type onceForceFailAspect struct {
	target string
	failed bool
}

func (a *onceForceFailAspect) PointCut(component string) bool { return component == a.target }

func (a *onceForceFailAspect) Before(_ context.Context, _ graph.Wrapper, component string) error {
	a.failed = true
	return &types.ForceFailedError{Component: component, Err: errors.New("transient upstream failure")}
}

func (a *onceForceFailAspect) After(context.Context, graph.Wrapper, string) error { return nil }

func TestDriverRunSkipsRecoverableForceFailedComponent(t *testing.T) {
	doc := `{"components": [{"id": "a"}, {"id": "b"}]}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	aspect := &onceForceFailAspect{target: "a"}
	d := New(types.NewConfig(), aspect)
	if err := d.Run(context.Background(), g); err != nil {
		t.Fatalf("Run should tolerate a recoverable ForceFailedError, got: %v", err)
	}
	if !aspect.failed {
		t.Error("expected the aspect to have been invoked")
	}
}

func TestDriverRunAbortsOnCycle(t *testing.T) {
	doc := `{
		"components": [
			{"id": "a", "input_ports": ["in"], "output_ports": ["out"]},
			{"id": "b", "input_ports": ["in"], "output_ports": ["out"]}
		],
		"connections": [
			{"from_component": "a", "from_port": "out", "to_component": "b", "to_port": "in"},
			{"from_component": "b", "from_port": "out", "to_component": "a", "to_port": "in"}
		]
	}`
	g, err := graph.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("graph.Load error: %v", err)
	}
	d := New(types.NewConfig())
	if err := d.Run(context.Background(), g); err == nil {
		t.Error("expected Run to report a cycle error")
	}
}
