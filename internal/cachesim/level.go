// Package cachesim models a single level of the memory hierarchy: a
// set-associative or fully-associative cache with random replacement,
// write-back/write-allocate policy, and miss propagation to a configurable
// next level. It owns no knowledge of virtual/physical translation or of
// the emulator's trace sink; a Level only ever sees the addresses it is
// handed.
package cachesim

import "github.com/intuitionamiga/memtrace/internal/lfsr"

// MissSink receives one record per miss at the level it is attached to.
// Implemented by the tracer/sink glue; a Level never formats trace lines
// itself.
type MissSink interface {
	Miss(vaddr, paddr uint64, size uint32, store bool)
}

// Level is the shared contract both cache shapes satisfy: access a line,
// report its name and statistics, and accept the trace-miss wiring that
// finalize() performs on the designated last-level cache.
type Level interface {
	// Access services one line-granular request from a higher level (or
	// from the pipeline directly for L1). store indicates a write.
	Access(vaddr, paddr uint64, size uint32, store bool)
	Name() string
	Stats() Statistics
	SetTraceMiss(enabled bool)
	SetMissSink(sink MissSink)
	// SetNextLevel rewires the miss-propagation target after construction,
	// since init_l2/init_l3 build their level only after L1/L2 already
	// exist (§4.5).
	SetNextLevel(next Level)
}

// Statistics holds the monotonically non-decreasing per-level counters
// from spec §3. A zero Statistics means the level saw no accesses.
type Statistics struct {
	ReadAccesses  uint64
	ReadMisses    uint64
	BytesRead     uint64
	WriteAccesses uint64
	WriteMisses   uint64
	BytesWritten  uint64
	Writebacks    uint64
}

// Accesses is the sum of read and write accesses.
func (s Statistics) Accesses() uint64 {
	return s.ReadAccesses + s.WriteAccesses
}

// Misses is the sum of read and write misses.
func (s Statistics) Misses() uint64 {
	return s.ReadMisses + s.WriteMisses
}

// MissRate returns 100 * misses/accesses, or 0 when there were no accesses.
func (s Statistics) MissRate() float64 {
	acc := s.Accesses()
	if acc == 0 {
		return 0
	}
	return 100 * float64(s.Misses()) / float64(acc)
}

// base carries the fields common to both cache shapes: geometry derived
// constants, the miss-handler link, the trace-miss tap, replacement state
// and the counters. The two shapes (set.go, fa.go) embed it and implement
// their own check_tag/victimize.
type base struct {
	name       string
	lineSize   uint32
	indexShift uint
	ways       int
	missHandler Level
	traceMiss  bool
	missSink   MissSink
	lfsr       *lfsr.LFSR
	stats      Statistics
}

func newBase(name string, lineSize uint32, indexShift uint, ways int, missHandler Level) base {
	return base{
		name:        name,
		lineSize:    lineSize,
		indexShift:  indexShift,
		ways:        ways,
		missHandler: missHandler,
		lfsr:        lfsr.New(),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) Stats() Statistics { return b.stats }

func (b *base) SetTraceMiss(enabled bool) { b.traceMiss = enabled }

func (b *base) SetMissSink(sink MissSink) { b.missSink = sink }

func (b *base) SetNextLevel(next Level) { b.missHandler = next }

func (b *base) recordAccess(size uint32, store bool) {
	if store {
		b.stats.WriteAccesses++
		b.stats.BytesWritten += uint64(size)
	} else {
		b.stats.ReadAccesses++
		b.stats.BytesRead += uint64(size)
	}
}

func (b *base) recordMiss(store bool) {
	if store {
		b.stats.WriteMisses++
	} else {
		b.stats.ReadMisses++
	}
}

// emitMiss reports the line-aligned miss to the designated tracing sink,
// if this level is the one finalize() chose as the last-level tap.
func (b *base) emitMiss(vaddr, paddr uint64, store bool) {
	if !b.traceMiss || b.missSink == nil {
		return
	}
	b.missSink.Miss(lineAlign(vaddr, b.lineSize), lineAlign(paddr, b.lineSize), b.lineSize, store)
}

// propagateFill fetches the line from the next level. The fill is always a
// read regardless of the originating access (write-allocate).
func (b *base) propagateFill(vaddr, paddr uint64) {
	if b.missHandler == nil {
		return
	}
	b.missHandler.Access(lineAlign(vaddr, b.lineSize), lineAlign(paddr, b.lineSize), b.lineSize, false)
}

// propagateWriteback pushes a dirty evicted line to the next level and
// counts it. src is the installing access's saved line-aligned vaddr, not
// the vaddr of the access that triggered the eviction.
func (b *base) propagateWriteback(src, dirtyPaddr uint64) {
	if b.missHandler == nil {
		return
	}
	b.missHandler.Access(src, dirtyPaddr, b.lineSize, true)
	b.stats.Writebacks++
}
