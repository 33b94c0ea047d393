package types

import "testing"

func TestPropagateActionDump(t *testing.T) {
	a := PropagateAction{InputPort: "in1", OutputPorts: []string{"out1", "out2"}}
	want := "in1 -> out1, out2"
	if got := a.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestPropagateActionMapped(t *testing.T) {
	a := PropagateAction{InputPort: "in1", OutputPorts: []string{"out1"}}
	nameMap := map[string]string{"in1": "renamed_in", "out1": "renamed_out"}
	mapped := a.mapped(nameMap).(PropagateAction)
	if mapped.InputPort != "renamed_in" || mapped.OutputPorts[0] != "renamed_out" {
		t.Errorf("mapped() = %+v", mapped)
	}
}

func TestEditActionDump(t *testing.T) {
	name := "email"
	a := EditAction{
		InputPort: &name,
		Match:     AttrMatcher{Name: &name},
		NewType:   "str",
		NewValue:  "redacted@example.com",
	}
	want := `edit(email, *, email, *, *, str, "redacted@example.com")`
	if got := a.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestDeleteActionDump(t *testing.T) {
	a := DeleteAction{Match: AttrMatcher{}}
	want := "delete(*, *, *, *, *)"
	if got := a.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestFlowRuleMappedActionsNoOp(t *testing.T) {
	f := FlowRule{Actions: []FlowAction{PropagateAction{InputPort: "a", OutputPorts: []string{"b"}}}}
	mapped := f.MappedActions()
	if len(mapped) != 1 {
		t.Fatalf("expected 1 action, got %d", len(mapped))
	}
	if p, ok := mapped[0].(PropagateAction); !ok || p.InputPort != "a" {
		t.Errorf("MappedActions() with no NameMap = %+v", mapped[0])
	}
}

func TestDefaultFlow(t *testing.T) {
	f := DefaultFlow([]string{"in1", "in2"}, []string{"out1", "out2"})
	if len(f.Actions) != 2 {
		t.Fatalf("expected 2 propagate actions, got %d", len(f.Actions))
	}
	for i, in := range []string{"in1", "in2"} {
		p, ok := f.Actions[i].(PropagateAction)
		if !ok {
			t.Fatalf("action %d is not a PropagateAction: %T", i, f.Actions[i])
		}
		if p.InputPort != in {
			t.Errorf("action %d input port = %q, want %q", i, p.InputPort, in)
		}
		if len(p.OutputPorts) != 2 || p.OutputPorts[0] != "out1" || p.OutputPorts[1] != "out2" {
			t.Errorf("action %d output ports = %v", i, p.OutputPorts)
		}
	}
}
