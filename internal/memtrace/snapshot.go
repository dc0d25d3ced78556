package memtrace

import "github.com/intuitionamiga/memtrace/internal/cachesim"

// LevelStats returns a point-in-time copy of the named level's counters
// for programmatic inspection — tests, or a future interactive monitor
// in the vein of the teacher's MachineMonitor, which exposes read-only
// state snapshots to its UI layer rather than letting callers reach into
// live state.
func (c *Core) LevelStats(name string) (cachesim.Statistics, bool) {
	for _, lvl := range []cachesim.Level{c.l1i, c.l1d, c.l2, c.l3} {
		if lvl != nil && lvl.Name() == name {
			return lvl.Stats(), true
		}
	}
	return cachesim.Statistics{}, false
}

// CacheEnabled reports whether InitL1 has built a cache hierarchy.
func (c *Core) CacheEnabled() bool { return c.cacheEnabled }
