package cachesim

import "testing"

func TestFullyAssocMissThenHit(t *testing.T) {
	next := &mockLevel{}
	c := NewFullyAssoc("L3", 8, 64, 6, next)

	c.Access(0x1000, 0x1000, 8, false)
	if c.Stats().ReadMisses != 1 {
		t.Fatalf("ReadMisses = %d, want 1", c.Stats().ReadMisses)
	}

	c.Access(0x1000, 0x1000, 8, false)
	if c.Stats().ReadMisses != 1 || c.Stats().ReadAccesses != 2 {
		t.Fatalf("stats = %+v, want 2 accesses, 1 miss", c.Stats())
	}
	if len(next.calls) != 1 {
		t.Fatalf("expected a single propagated fill, got %d", len(next.calls))
	}
}

func TestFullyAssocFillsBeforeEvicting(t *testing.T) {
	next := &mockLevel{}
	c := NewFullyAssoc("L3", 2, 64, 6, next)

	c.Access(0x1000, 0x1000, 8, false)
	c.Access(0x2000, 0x2000, 8, false)

	if len(c.entries) != 2 {
		t.Fatalf("entries = %d, want 2 (ways not yet exhausted)", len(c.entries))
	}
	if c.Stats().Writebacks != 0 {
		t.Fatalf("Writebacks = %d, want 0 before ways are exhausted", c.Stats().Writebacks)
	}
}

func TestFullyAssocEvictsOnceWaysExhausted(t *testing.T) {
	next := &mockLevel{}
	c := NewFullyAssoc("L3", 2, 64, 6, next)

	c.Access(0x1000, 0x1000, 8, true) // dirty
	c.Access(0x2000, 0x2000, 8, false)
	c.Access(0x3000, 0x3000, 8, false) // forces an eviction

	if len(c.entries) != 2 {
		t.Fatalf("entries = %d, want capped at ways (2)", len(c.entries))
	}
	if c.Stats().Misses() != 3 {
		t.Fatalf("Misses() = %d, want 3", c.Stats().Misses())
	}
}

func TestFullyAssocStoreMarksDirty(t *testing.T) {
	next := &mockLevel{}
	c := NewFullyAssoc("L3", 4, 64, 6, next)

	c.Access(0x1000, 0x1000, 8, true)

	key, ok := c.checkTag(0x1000)
	if !ok {
		t.Fatal("line should be resident")
	}
	if !tagIsDirty(c.entries[key].tag) {
		t.Fatal("entry should be dirty after a store miss")
	}
}
