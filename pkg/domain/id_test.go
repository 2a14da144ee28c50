package domain

import "testing"

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("node")
	if id := g.NewID(); id != "node-1" {
		t.Errorf("first id = %q, want node-1", id)
	}
	if id := g.NewID(); id != "node-2" {
		t.Errorf("second id = %q, want node-2", id)
	}
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.NewID()
		if len(id) != 36 {
			t.Fatalf("id %q is not a hyphenated UUID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
