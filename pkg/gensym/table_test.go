package gensym

import "testing"

func TestResolveIsStable(t *testing.T) {
	tab := NewTable()

	a := tab.Resolve(3)
	b := tab.Resolve(3)
	if a != b {
		t.Errorf("Resolve(3) returned different symbols: %p vs %p", a, b)
	}
	if !a.IsGensym() {
		t.Error("resolved symbol should be a gensym")
	}
}

func TestResolveDistinctIDs(t *testing.T) {
	tab := NewTable()

	seen := make(map[string]bool)
	for id := int64(0); id < 50; id++ {
		s := tab.Resolve(id)
		if seen[s.Name] {
			t.Fatalf("symbol name %s reused for id %d", s.Name, id)
		}
		seen[s.Name] = true
	}
	if tab.Len() != 50 {
		t.Errorf("Len() = %d, want 50", tab.Len())
	}
	if tab.Resolve(1) == tab.Resolve(2) {
		t.Error("distinct ids must map to distinct symbols")
	}
}

func TestTablesAreIndependent(t *testing.T) {
	a := NewTable()
	b := NewTable()
	if a.Resolve(1) == b.Resolve(1) {
		t.Error("separate sessions should not share gensym identities")
	}
}
