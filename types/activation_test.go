package types

import "testing"

func strp(s string) *string { return &s }

func TestEvaluateLeafConditions(t *testing.T) {
	info := map[string]string{"user": "alice", "purpose": "research"}

	cases := []struct {
		name     string
		cond     ActivationCondition
		stage    Stage
		function string
		want     bool
	}{
		{"never is always false", NeverCondition{}, Processing, "f", false},
		{"equal action match", EqualCondition{Slot: "action", Value: strp("f")}, Processing, "f", true},
		{"equal action mismatch", EqualCondition{Slot: "action", Value: strp("g")}, Processing, "f", false},
		{"equal action any", EqualCondition{Slot: "action"}, Processing, "f", true},
		{"equal action any empty", EqualCondition{Slot: "action"}, Processing, "", false},
		{"notequal action mismatch", NotEqualCondition{Slot: "action", Value: strp("g")}, Processing, "f", true},
		{"equal stage match", EqualCondition{Slot: "stage", Value: strp("processing")}, Processing, "f", true},
		{"equal stage mismatch", EqualCondition{Slot: "stage", Value: strp("import")}, Processing, "f", false},
		{"equal stage any", EqualCondition{Slot: "stage"}, Processing, "f", true},
		{"notequal stage any is false", NotEqualCondition{Slot: "stage"}, Processing, "f", false},
		{"notequal stage mismatch", NotEqualCondition{Slot: "stage", Value: strp("import")}, Processing, "f", true},
		{"equal info slot match", EqualCondition{Slot: "user", Value: strp("alice")}, Processing, "f", true},
		{"equal info slot mismatch", EqualCondition{Slot: "user", Value: strp("bob")}, Processing, "f", false},
		{"equal info slot any present", EqualCondition{Slot: "user"}, Processing, "f", true},
		{"equal info slot any absent", EqualCondition{Slot: "date"}, Processing, "f", false},
		{"notequal info slot any absent", NotEqualCondition{Slot: "date"}, Processing, "f", false},
		{"notequal info slot any present", NotEqualCondition{Slot: "purpose"}, Processing, "f", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.cond, tc.stage, tc.function, info)
			if got != tc.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}

func TestEvaluateCombinators(t *testing.T) {
	info := map[string]string{}
	trueC := EqualCondition{Slot: "action"}
	falseC := EqualCondition{Slot: "action", Value: strp("nope")}

	if !Evaluate(AndCondition{trueC, trueC}, Processing, "f", info) {
		t.Error("true && true should be true")
	}
	if Evaluate(AndCondition{trueC, falseC}, Processing, "f", info) {
		t.Error("true && false should be false")
	}
	if !Evaluate(OrCondition{falseC, trueC}, Processing, "f", info) {
		t.Error("false || true should be true")
	}
	if Evaluate(OrCondition{falseC, falseC}, Processing, "f", info) {
		t.Error("false || false should be false")
	}
	if !Evaluate(NotCondition{falseC}, Processing, "f", info) {
		t.Error("!false should be true")
	}
}

func TestEvaluateNilCondition(t *testing.T) {
	if Evaluate(nil, Processing, "f", nil) {
		t.Error("nil condition should evaluate to false")
	}
}

func TestActivationConditionEqual(t *testing.T) {
	a := EqualCondition{Slot: "user", Value: strp("alice")}
	b := EqualCondition{Slot: "user", Value: strp("alice")}
	c := EqualCondition{Slot: "user", Value: strp("bob")}

	if !a.Equal(b) {
		t.Error("identical equal-conditions should be Equal")
	}
	if a.Equal(c) {
		t.Error("differing values should not be Equal")
	}
	if a.Equal(NotEqualCondition{Slot: "user", Value: strp("alice")}) {
		t.Error("different variants should not be Equal")
	}

	and1 := AndCondition{a, c}
	and2 := AndCondition{a, c}
	if !and1.Equal(and2) {
		t.Error("structurally identical And trees should be Equal")
	}
}

func TestActivationConditionDump(t *testing.T) {
	cases := []struct {
		cond ActivationCondition
		want string
	}{
		{NeverCondition{}, ""},
		{EqualCondition{Slot: "action", Value: strp("f")}, `action = "f"`},
		{EqualCondition{Slot: "action"}, "action = *"},
		{NotEqualCondition{Slot: "stage", Value: strp("import")}, `stage != "import"`},
	}
	for _, tc := range cases {
		if got := tc.cond.Dump(); got != tc.want {
			t.Errorf("Dump() = %q, want %q", got, tc.want)
		}
	}
}
