package types

import "testing"

func personCapsule() *AttributeCapsule {
	return &AttributeCapsule{
		Name: "person",
		Attrs: []Attribute{
			{Name: "name", Type: "str", Value: "Alice"},
		},
	}
}

func TestDataRuleContainerResolve(t *testing.T) {
	c := NewDataRuleContainer()
	c.Capsules = append(c.Capsules, personCapsule())

	a, ok := c.Resolve(AttributeReference{Name: "person", Index: 0})
	if !ok || a.Value != "Alice" {
		t.Fatalf("Resolve = %v, %v", a, ok)
	}
	if _, ok := c.Resolve(AttributeReference{Name: "missing", Index: 0}); ok {
		t.Error("Resolve of an unknown capsule should fail")
	}
}

func TestDataRuleContainerEqualIsOrderIndependent(t *testing.T) {
	c1 := &DataRuleContainer{Capsules: []*AttributeCapsule{personCapsule(), {Name: "extra"}}}
	c2 := &DataRuleContainer{Capsules: []*AttributeCapsule{{Name: "extra"}, personCapsule()}}

	if !c1.Equal(c2) {
		t.Error("Equal should ignore capsule order")
	}

	c3 := &DataRuleContainer{Capsules: []*AttributeCapsule{personCapsule()}}
	if c1.Equal(c3) {
		t.Error("differing capsule counts should not be Equal")
	}
}

func TestDataRuleContainerOnStage(t *testing.T) {
	c := NewDataRuleContainer()
	c.Capsules = append(c.Capsules, personCapsule())
	c.Obligation = append(c.Obligation,
		ObligationDeclaration{
			Action:    "notify",
			Args:      []AttributeReference{{Name: "person", Index: 0}},
			Condition: EqualCondition{Slot: "action", Value: strp("ingest")},
		},
		ObligationDeclaration{
			Action:    "delete",
			Condition: NeverCondition{},
		},
	)

	activated := c.OnStage(Processing, "ingest", nil)
	if len(activated) != 1 {
		t.Fatalf("expected 1 activated obligation, got %d", len(activated))
	}
	if activated[0].Action != "notify" {
		t.Errorf("activated obligation action = %q, want notify", activated[0].Action)
	}
	if len(activated[0].Attributes) != 1 || activated[0].Attributes[0].Value != "Alice" {
		t.Errorf("activated obligation attributes = %v", activated[0].Attributes)
	}

	none := c.OnStage(Processing, "other-function", nil)
	if len(none) != 0 {
		t.Errorf("expected no activated obligations, got %v", none)
	}
}

func TestDataRuleContainerClone(t *testing.T) {
	c := NewDataRuleContainer()
	c.Capsules = append(c.Capsules, personCapsule())
	c.Obligation = append(c.Obligation, ObligationDeclaration{Action: "notify"})

	clone := c.Clone()
	if !c.Equal(clone) {
		t.Error("clone should be Equal to original")
	}
	clone.Capsules[0].Attrs[0].Value = "Bob"
	if c.Capsules[0].Attrs[0].Value == "Bob" {
		t.Error("Clone should deep-copy capsules")
	}
}
