package memtrace

import "testing"

func TestInitL1BuildsBothLevels(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("64:4:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	if c.l1i == nil || c.l1d == nil {
		t.Fatal("InitL1 should build both L1-I and L1-D")
	}
	if !c.cacheEnabled {
		t.Fatal("InitL1 should set cacheEnabled")
	}
	if c.registry.Len() != 2 {
		t.Fatalf("registry.Len() = %d, want 2 (L1-I and L1-D) when trace_code is true", c.registry.Len())
	}
}

func TestInitL1WithoutTraceCodeWithholdsL1I(t *testing.T) {
	c := New(identityTranslator)
	c.SetTraceCode(false)
	if err := c.InitL1("64:4:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	if c.l1i == nil {
		t.Fatal("L1-I should still be built even with trace_code false")
	}
	if c.registry.Len() != 1 {
		t.Fatalf("registry.Len() = %d, want 1 (L1-D only) when trace_code is false", c.registry.Len())
	}
}

func TestInitL1InvalidGeometry(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("bad"); err == nil {
		t.Fatal("InitL1 with bad geometry should fail")
	}
}

func TestInitL2RequiresL1(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL2("512:8:64"); err == nil {
		t.Fatal("InitL2 before InitL1 should fail")
	}
}

func TestInitL3RequiresL2(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("64:4:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	if err := c.InitL3("1:8:64"); err == nil {
		t.Fatal("InitL3 before InitL2 should fail")
	}
}

func TestFullHierarchyWiring(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("64:4:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	if err := c.InitL2("512:8:64"); err != nil {
		t.Fatalf("InitL2: %v", err)
	}
	if err := c.InitL3("1:8:64"); err != nil {
		t.Fatalf("InitL3: %v", err)
	}
	if c.l2 == nil || c.l3 == nil {
		t.Fatal("InitL2/InitL3 should populate c.l2 and c.l3")
	}
}
