package memtrace

import (
	"github.com/intuitionamiga/memtrace/internal/cachesim"
	"github.com/intuitionamiga/memtrace/internal/sink"
)

// missAdapter turns a cache level's miss into a sink record, subject to
// the core's emit flag and region window, and consulting the optional Lua
// filter first (§3 domain stack).
type missAdapter struct {
	core   *Core
	sink   *sink.Sink
	filter filterFunc
}

// filterFunc matches *filter.Filter.Allow without importing the filter
// package's concrete type into the hot miss path signature.
type filterFunc func(vaddr, paddr uint64, size uint32, kind string) bool

func (a *missAdapter) Miss(vaddr, paddr uint64, size uint32, store bool) {
	if !a.core.emit || paddr < a.core.regionStart || paddr >= a.core.regionEnd {
		return
	}
	if a.filter != nil {
		kind := "load"
		if store {
			kind = "store"
		}
		if !a.filter(vaddr, paddr, size, kind) {
			return
		}
	}
	a.sink.Record(store, paddr, size, vaddr)
}

// Finalize opens the sink (file path, or standard output for "" / "-")
// and designates the deepest cache level built so far as the tracing
// tap: its misses (and only its misses) become the sink's miss stream.
// When no cache was configured, Finalize still opens the sink for direct
// access logging but there is no level to tap (§4.5).
func (c *Core) Finalize(sinkPath string) error {
	s, err := sink.Open(sinkPath)
	if err != nil {
		return wrapConfigError("finalize", err)
	}
	c.finalizeWithSink(s)
	return nil
}

// FinalizeWith wires the hierarchy to an already-open sink, the same way
// Finalize does, for callers (and tests) that own their output stream
// directly instead of a file path.
func (c *Core) FinalizeWith(s *sink.Sink) {
	c.finalizeWithSink(s)
}

func (c *Core) finalizeWithSink(s *sink.Sink) {
	c.sink = s
	c.flushRAMBase()

	var filterFn filterFunc
	if c.filter != nil {
		filterFn = c.filter.Allow
	}
	adapter := &missAdapter{core: c, sink: s, filter: filterFn}

	var headerName string
	switch {
	case c.l3 != nil:
		c.l3.SetTraceMiss(true)
		c.l3.SetMissSink(adapter)
		headerName = c.l3.Name()
	case c.l2 != nil:
		c.l2.SetTraceMiss(true)
		c.l2.SetMissSink(adapter)
		headerName = c.l2.Name()
	case c.l1i != nil || c.l1d != nil:
		if c.l1i != nil {
			c.l1i.SetTraceMiss(true)
			c.l1i.SetMissSink(adapter)
		}
		if c.l1d != nil {
			c.l1d.SetTraceMiss(true)
			c.l1d.SetMissSink(adapter)
		}
		headerName = "L1-I, L1-D"
	default:
		return
	}

	s.WriteHeader(headerName)
}

// Shutdown destroys the cache levels top-down (L1s, then L2, then L3),
// flushing each one's statistics to the sink before closing it (§4.5,
// §6). Safe to call even when Finalize was never reached.
func (c *Core) Shutdown() {
	if c.sink == nil {
		c.filter.Close()
		return
	}

	for _, lvl := range []cachesim.Level{c.l1i, c.l1d, c.l2, c.l3} {
		if lvl == nil {
			continue
		}
		c.sink.WriteStats(lvl.Name(), lvl.Stats())
	}

	c.filter.Close()
	c.sink.Close()
}
