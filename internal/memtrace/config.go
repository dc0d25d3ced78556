package memtrace

import (
	"fmt"
	"strconv"
	"strings"
)

// SetRegion parses "<hex_start>:<hex_end>" (both optionally 0x-prefixed,
// no spaces) and overwrites the physical-address filter window. Prior
// trace records are unaffected; a later call simply replaces the bounds
// (§8 round-trip property). Malformed input is a ConfigError — the
// caller (cmd/memtrace) prints a usage string and exits 1 (§6).
func (c *Core) SetRegion(s string) error {
	start, end, err := parseRegion(s)
	if err != nil {
		return wrapConfigError("invalid region", err)
	}
	c.regionStart, c.regionEnd = start, end
	return nil
}

func parseRegion(s string) (start, end uint64, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want <hex_start>:<hex_end>, got %q", s)
	}

	start, err = parseHex(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err = parseHex(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseHex(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex integer %q", s)
	}
	return v, nil
}

// SetRAMBase records the host virtual address of guest RAM on its first
// call; subsequent calls are ignored (§6, §8 idempotence). Writes a "RAM
// base: ..." line to the sink immediately if one is already open, or
// once Finalize opens one otherwise.
func (c *Core) SetRAMBase(addr, size uint64) {
	if c.ramBaseSet {
		return
	}
	c.ramBaseSet = true
	c.ramBaseAddr, c.ramBaseSize = addr, size
	c.flushRAMBase()
}

func (c *Core) flushRAMBase() {
	if !c.ramBaseSet || c.ramBaseWritten || c.sink == nil {
		return
	}
	c.sink.WriteRAMBase(c.ramBaseAddr, c.ramBaseSize)
	c.ramBaseWritten = true
}
