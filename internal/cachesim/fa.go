package cachesim

import "sort"

// faEntry mirrors a set-associative cell but lives in a map rather than a
// fixed array slot.
type faEntry struct {
	tag uint64
	src uint64
}

// FullyAssoc is a one-set, arbitrary-way cache keyed by paddr>>indexShift
// in a map whose keys are sorted when a victim is chosen (§4.4). Used when
// the configuration declares sets==1 and ways>4.
type FullyAssoc struct {
	base
	entries map[uint64]faEntry
}

// NewFullyAssoc builds a fully-associative level with the given way count.
func NewFullyAssoc(name string, ways int, lineSize uint32, indexShift uint, missHandler Level) *FullyAssoc {
	return &FullyAssoc{
		base:    newBase(name, lineSize, indexShift, ways, missHandler),
		entries: make(map[uint64]faEntry, ways),
	}
}

func (c *FullyAssoc) checkTag(paddr uint64) (key uint64, ok bool) {
	key = paddr >> c.indexShift
	_, ok = c.entries[key]
	return key, ok
}

// Access implements Level.
func (c *FullyAssoc) Access(vaddr, paddr uint64, size uint32, store bool) {
	c.recordAccess(size, store)

	if key, ok := c.checkTag(paddr); ok {
		if store {
			e := c.entries[key]
			e.tag = tagWithDirty(e.tag)
			c.entries[key] = e
		}
		return
	}

	c.emitMiss(vaddr, paddr, store)
	c.recordMiss(store)
	c.victimizeAndFill(vaddr, paddr, store)
}

// victimizeAndFill evicts an entry chosen by advancing the LFSR-derived
// index through the map's key-sorted iteration order (the map's iteration
// order under sorted keys is what makes replacement reproducible, per
// spec §4.4), then proceeds exactly as the set-associative path does.
func (c *FullyAssoc) victimizeAndFill(vaddr, paddr uint64, store bool) {
	key := paddr >> c.indexShift

	if len(c.entries) >= c.ways {
		keys := make([]uint64, 0, len(c.entries))
		for k := range c.entries {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		victimKey := keys[c.lfsr.Next()%uint32(len(keys))]
		victim := c.entries[victimKey]
		delete(c.entries, victimKey)

		if tagIsValid(victim.tag) && tagIsDirty(victim.tag) {
			dirtyPaddr := tagLineNumber(victim.tag) << c.indexShift
			c.propagateWriteback(victim.src, dirtyPaddr)
		}
	}

	c.entries[key] = faEntry{
		tag: packValid(key),
		src: lineAlign(vaddr, c.lineSize),
	}

	c.propagateFill(vaddr, paddr)

	if store {
		if e, ok := c.entries[key]; ok {
			e.tag = tagWithDirty(e.tag)
			c.entries[key] = e
		}
	}
}
