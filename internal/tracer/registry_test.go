package tracer

import "testing"

type recordingTracer struct {
	kind  AccessKind
	calls []recordedAccess
}

type recordedAccess struct {
	vaddr, paddr uint64
	size         uint32
	store        bool
}

func (r *recordingTracer) Interested(kind AccessKind) bool { return kind == r.kind }
func (r *recordingTracer) Access(vaddr, paddr uint64, size uint32, store bool) {
	r.calls = append(r.calls, recordedAccess{vaddr, paddr, size, store})
}

func TestAccessKindString(t *testing.T) {
	tests := []struct {
		kind AccessKind
		want string
	}{
		{Load, "load"},
		{Store, "store"},
		{Fetch, "fetch"},
		{AccessKind(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestRegistryDispatchesOnlyToInterestedTracers(t *testing.T) {
	var r Registry
	fetch := &recordingTracer{kind: Fetch}
	loadStore := &recordingTracer{kind: Load}

	r.Register(fetch)
	r.Register(loadStore)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	r.Trace(0x1000, 0x1000, 4, Fetch)
	if len(fetch.calls) != 1 || len(loadStore.calls) != 0 {
		t.Fatalf("Fetch dispatch: fetch=%d loadStore=%d, want 1/0", len(fetch.calls), len(loadStore.calls))
	}

	r.Trace(0x2000, 0x2000, 4, Load)
	if len(fetch.calls) != 1 || len(loadStore.calls) != 1 {
		t.Fatalf("Load dispatch: fetch=%d loadStore=%d, want 1/1", len(fetch.calls), len(loadStore.calls))
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	var r Registry
	var order []string

	first := &orderTracer{name: "first", order: &order}
	second := &orderTracer{name: "second", order: &order}
	r.Register(first)
	r.Register(second)

	r.Trace(0x1000, 0x1000, 4, Load)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("dispatch order = %v, want [first second]", order)
	}
}

type orderTracer struct {
	name  string
	order *[]string
}

func (o *orderTracer) Interested(AccessKind) bool { return true }
func (o *orderTracer) Access(uint64, uint64, uint32, bool) {
	*o.order = append(*o.order, o.name)
}
