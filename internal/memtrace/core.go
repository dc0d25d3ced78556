// Package memtrace is the façade exposing the emulator-facing entry
// points of spec §6 as methods on a single Core: the access pipeline
// (§4.1), region filter and RAM-base bookkeeping, the three cache-level
// initializers and finalize (§4.5), and teardown.
//
// Each Core owns everything spec §9 calls "process-wide mutable state" —
// the cache hierarchy, the tracer registry, the sink — as fields rather
// than package globals, matching the teacher's habit of threading an
// explicit *SystemBus/*CPU through constructors instead of reaching for
// a singleton. The emulator is expected to keep exactly one Core and
// call its methods only from its own execution thread (§5): there are no
// locks here, by design.
package memtrace

import (
	"github.com/intuitionamiga/memtrace/internal/cachesim"
	"github.com/intuitionamiga/memtrace/internal/filter"
	"github.com/intuitionamiga/memtrace/internal/sink"
	"github.com/intuitionamiga/memtrace/internal/tracer"
)

// Translator resolves a page-aligned guest virtual address to its
// physical address. This is the "guest_paddr(vaddr)" collaborator spec
// §1 treats as external; Core only ever calls it, never implements it.
// ok is false on a translation fault (§7): the pipeline drops that
// access with no record and no cache update.
type Translator func(pageVaddr uint64) (pagePaddr uint64, ok bool)

// Core holds one tracing context. Zero value is not usable; build one
// with New.
type Core struct {
	translator Translator

	started bool
	emit    bool

	regionStart uint64
	regionEnd   uint64

	ramBaseSet     bool
	ramBaseWritten bool
	ramBaseAddr    uint64
	ramBaseSize    uint64

	traceCode bool

	sink     *sink.Sink
	registry tracer.Registry
	filter   *filter.Filter

	l1i, l1d, l2, l3 cachesim.Level
	cacheEnabled     bool
}

// New builds a Core with spec §3's documented defaults: the region
// window is wide open ([0, 2^64-1)), emit is on, and FETCH accesses are
// registered with L1-I once a cache is built (traceCode true).
func New(translator Translator) *Core {
	return &Core{
		translator:  translator,
		emit:        true,
		regionStart: 0,
		regionEnd:   ^uint64(0),
		traceCode:   true,
	}
}

// SetTraceCode controls whether L1-I is registered with the tracer
// registry once built (§3 TraceConfig.trace_code). Must be called before
// InitL1 to take effect.
func (c *Core) SetTraceCode(enabled bool) { c.traceCode = enabled }

// SetEmit gates whether the pipeline ever writes to the sink, independent
// of the started/stopped toggle.
func (c *Core) SetEmit(enabled bool) { c.emit = enabled }

// SetFilter installs the optional Lua trace-narrowing hook (§3 domain
// stack). Pass nil to disable it.
func (c *Core) SetFilter(f *filter.Filter) { c.filter = f }

// Start begins a traced region of guest execution; the pipeline is a
// no-op until this is called.
func (c *Core) Start() { c.started = true }

// Stop ends a traced region; pipe() becomes a no-op again.
func (c *Core) Stop() { c.started = false }

// Started reports the current start/stop state.
func (c *Core) Started() bool { return c.started }
