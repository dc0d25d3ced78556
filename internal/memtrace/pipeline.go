package memtrace

import "github.com/intuitionamiga/memtrace/internal/tracer"

const (
	pageSize = 0x1000
	pageMask = pageSize - 1
)

// OnLoad is the helper the emulator calls for every guest load (§6).
func (c *Core) OnLoad(vaddr uint64, size uint32) { c.pipe(vaddr, size, tracer.Load) }

// OnStore is the helper the emulator calls for every guest store (§6).
func (c *Core) OnStore(vaddr uint64, size uint32) { c.pipe(vaddr, size, tracer.Store) }

// OnFetch is the helper the emulator calls for every guest instruction
// fetch (§6).
func (c *Core) OnFetch(vaddr uint64, size uint32) { c.pipe(vaddr, size, tracer.Fetch) }

// pipe is the internal procedure entry points route through (§4.1):
// filter on started, split page-crossing accesses, translate, then
// dispatch to the cache registry or the direct emitter.
func (c *Core) pipe(vaddr uint64, size uint32, kind tracer.AccessKind) {
	if !c.started {
		return
	}

	if crossesPage(vaddr, size) {
		half := size / 2
		c.pipe(vaddr, half, kind)
		c.pipe(vaddr+uint64(half), half, kind)
		return
	}

	pageVaddr := vaddr &^ uint64(pageMask)
	pagePaddr, ok := c.translator(pageVaddr)
	if !ok {
		// TranslationFault (§7): drop silently, no record, no cache update.
		return
	}
	paddr := pagePaddr | (vaddr & pageMask)

	if c.cacheEnabled {
		c.registry.Trace(vaddr, paddr, size, kind)
		return
	}
	c.logFiltered(vaddr, paddr, size, kind)
}

// crossesPage reports whether an unaligned access of the given size
// starting at vaddr straddles a 4 KiB page boundary (§4.1 step 2).
// Physical translation is page-granular, so each half must be translated
// independently; callers are contracted to present power-of-two sizes
// that split cleanly.
func crossesPage(vaddr uint64, size uint32) bool {
	unaligned := (uint64(size)-1)&vaddr != 0
	spansBoundary := (vaddr&pageMask)+uint64(size) >= pageSize
	return unaligned && spansBoundary
}

// logFiltered is the direct emitter used when no cache is configured:
// one record per access that survives the emit flag, the region window,
// and (if installed) the Lua narrowing filter.
func (c *Core) logFiltered(vaddr, paddr uint64, size uint32, kind tracer.AccessKind) {
	if !c.emit || c.sink == nil {
		return
	}
	if paddr < c.regionStart || paddr >= c.regionEnd {
		return
	}

	store := kind == tracer.Store
	if c.filter != nil && !c.filter.Allow(vaddr, paddr, size, kind.String()) {
		return
	}

	c.sink.Record(store, paddr, size, vaddr)
}
