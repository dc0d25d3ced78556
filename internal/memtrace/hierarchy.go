package memtrace

import (
	"github.com/intuitionamiga/memtrace/internal/cachesim"
	"github.com/intuitionamiga/memtrace/internal/tracer"
)

// fetchTracer adapts an L1-I cachesim.Level to the tracer.Tracer
// contract: interested only in FETCH (§4.2).
type fetchTracer struct{ level cachesim.Level }

func (t fetchTracer) Interested(kind tracer.AccessKind) bool { return kind == tracer.Fetch }
func (t fetchTracer) Access(vaddr, paddr uint64, size uint32, store bool) {
	t.level.Access(vaddr, paddr, size, store)
}

// loadStoreTracer adapts an L1-D cachesim.Level: interested in LOAD and
// STORE.
type loadStoreTracer struct{ level cachesim.Level }

func (t loadStoreTracer) Interested(kind tracer.AccessKind) bool {
	return kind == tracer.Load || kind == tracer.Store
}
func (t loadStoreTracer) Access(vaddr, paddr uint64, size uint32, store bool) {
	t.level.Access(vaddr, paddr, size, store)
}

// InitL1 builds L1-I and L1-D with identical geometry and registers them
// with the tracer registry in that order (§4.5). L1-I is withheld from
// the registry when trace_code is false, though it is still built and
// the registry dispatch for FETCH accesses becomes a no-op (§3).
func (c *Core) InitL1(cfg string) error {
	l1i, err := cachesim.Construct(cfg, "L1-I", nil)
	if err != nil {
		return wrapConfigError("init_l1", err)
	}
	l1d, err := cachesim.Construct(cfg, "L1-D", nil)
	if err != nil {
		return wrapConfigError("init_l1", err)
	}

	c.l1i, c.l1d = l1i, l1d
	c.cacheEnabled = true

	if c.traceCode {
		c.registry.Register(fetchTracer{l1i})
	}
	c.registry.Register(loadStoreTracer{l1d})

	return nil
}

// InitL2 builds L2 and sets it as the miss handler of both L1 instances.
// Fails if L1 has not been built yet.
func (c *Core) InitL2(cfg string) error {
	if c.l1i == nil || c.l1d == nil {
		return configErrorf("init_l2: L1 must be initialized first")
	}

	l2, err := cachesim.Construct(cfg, "L2", nil)
	if err != nil {
		return wrapConfigError("init_l2", err)
	}

	c.l1i.SetNextLevel(l2)
	c.l1d.SetNextLevel(l2)
	c.l2 = l2

	return nil
}

// InitL3 builds L3 and sets it as the miss handler of L2. Fails if L2
// has not been built yet.
func (c *Core) InitL3(cfg string) error {
	if c.l2 == nil {
		return configErrorf("init_l3: L2 must be initialized first")
	}

	l3, err := cachesim.Construct(cfg, "L3", nil)
	if err != nil {
		return wrapConfigError("init_l3", err)
	}

	c.l2.SetNextLevel(l3)
	c.l3 = l3

	return nil
}
