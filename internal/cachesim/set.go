package cachesim

// SetAssoc is a power-of-two-set, arbitrary-way cache with random
// replacement (§4.3). Storage is two parallel arrays of sets*ways tag and
// source words.
type SetAssoc struct {
	base
	sets      int
	indexMask uint64
	tags      []uint64
	srcs      []uint64
}

// NewSetAssoc builds a set-associative level. sets must be a power of two.
func NewSetAssoc(name string, sets, ways int, lineSize uint32, indexShift uint, missHandler Level) *SetAssoc {
	return &SetAssoc{
		base:      newBase(name, lineSize, indexShift, ways, missHandler),
		sets:      sets,
		indexMask: uint64(sets - 1),
		tags:      make([]uint64, sets*ways),
		srcs:      make([]uint64, sets*ways),
	}
}

func (c *SetAssoc) setIndex(paddr uint64) uint64 {
	return (paddr >> c.indexShift) & c.indexMask
}

// checkTag scans the ways of the set addressed by paddr for a valid match.
// Tie-break on multiple matches (which the invariants forbid) is the
// lowest way index.
func (c *SetAssoc) checkTag(paddr uint64) (way int, ok bool) {
	idx := c.setIndex(paddr)
	query := (paddr >> c.indexShift) | tagValid
	base := int(idx) * c.ways
	for w := 0; w < c.ways; w++ {
		if c.tags[base+w]&^tagDirty == query {
			return w, true
		}
	}
	return 0, false
}

// Access implements Level.
func (c *SetAssoc) Access(vaddr, paddr uint64, size uint32, store bool) {
	c.recordAccess(size, store)

	if way, ok := c.checkTag(paddr); ok {
		if store {
			idx := int(c.setIndex(paddr))
			c.tags[idx*c.ways+way] = tagWithDirty(c.tags[idx*c.ways+way])
		}
		return
	}

	c.emitMiss(vaddr, paddr, store)
	c.recordMiss(store)
	c.victimizeAndFill(vaddr, paddr, store)
}

// victimizeAndFill evicts a random way in the target set, writes back the
// victim if dirty, fills from the next level, and (on a store) marks the
// freshly-installed line dirty.
func (c *SetAssoc) victimizeAndFill(vaddr, paddr uint64, store bool) {
	idx := int(c.setIndex(paddr))
	way := int(c.lfsr.Next() % uint32(c.ways))
	cell := idx*c.ways + way

	victimTag := c.tags[cell]
	victimSrc := c.srcs[cell]

	c.tags[cell] = packValid(paddr >> c.indexShift)
	c.srcs[cell] = lineAlign(vaddr, c.lineSize)

	if tagIsValid(victimTag) && tagIsDirty(victimTag) {
		dirtyPaddr := tagLineNumber(victimTag) << c.indexShift
		c.propagateWriteback(victimSrc, dirtyPaddr)
	}

	c.propagateFill(vaddr, paddr)

	if store {
		// Re-lookup rather than reuse cell: expresses that after the fill
		// returns the line is resident, and stays correct if a future
		// miss-handler recursion ever mutates this level.
		if way, ok := c.checkTag(paddr); ok {
			c.tags[idx*c.ways+way] = tagWithDirty(c.tags[idx*c.ways+way])
		}
	}
}
