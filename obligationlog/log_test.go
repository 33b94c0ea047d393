package obligationlog

import (
	"path/filepath"
	"testing"

	"github.com/renyuneyun/dr.aid/types"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(l.List()) != 0 {
		t.Errorf("expected an empty log, got %v", l.List())
	}
}

func TestInsertAppendsAndDedupes(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log.json"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	ob := types.ActivatedObligation{Action: "notify", Attributes: []types.Attribute{{Name: "n", Type: "str", Value: "Alice"}}}
	l.Insert("c1", []types.ActivatedObligation{ob})
	l.Insert("c1", []types.ActivatedObligation{ob}) // duplicate, should be dropped

	entries := l.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 deduplicated entry, got %d", len(entries))
	}
	if entries[0].Component != "c1" || entries[0].Obligation.Action != "notify" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestInsertKeepsDistinctComponentsSeparate(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log.json"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	ob := types.ActivatedObligation{Action: "notify"}
	l.Insert("c1", []types.ActivatedObligation{ob})
	l.Insert("c2", []types.ActivatedObligation{ob})
	if len(l.List()) != 2 {
		t.Errorf("expected 2 entries (same obligation, different components), got %d", len(l.List()))
	}
}

func TestWriteAndReopenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	ob := types.ActivatedObligation{Action: "notify", Attributes: []types.Attribute{{Name: "n", Type: "str", Value: "Alice"}}}
	l.Insert("c1", []types.ActivatedObligation{ob})
	if err := l.Write(); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open error: %v", err)
	}
	entries := reopened.List()
	if len(entries) != 1 || entries[0].Component != "c1" || !entries[0].Obligation.Equal(ob) {
		t.Errorf("round-tripped entries = %+v", entries)
	}
}

func TestInsertIsNoOpForEmptyActivatedList(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log.json"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	l.Insert("c1", nil)
	if len(l.List()) != 0 {
		t.Errorf("expected no entries, got %v", l.List())
	}
}
