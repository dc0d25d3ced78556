package cachesim

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Geometry is a parsed "sets:ways:linesize" configuration string.
type Geometry struct {
	Sets     int
	Ways     int
	LineSize uint32
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ParseGeometry parses the "sets:ways:linesize" form from §4.5: three
// positive integers, sets and linesize powers of two, linesize >= 8.
func ParseGeometry(cfg string) (Geometry, error) {
	parts := strings.Split(cfg, ":")
	if len(parts) != 3 {
		return Geometry{}, fmt.Errorf("cachesim: malformed config %q, want sets:ways:linesize", cfg)
	}

	sets, err := strconv.Atoi(parts[0])
	if err != nil || sets <= 0 {
		return Geometry{}, fmt.Errorf("cachesim: invalid sets %q", parts[0])
	}
	if !isPowerOfTwo(sets) {
		return Geometry{}, fmt.Errorf("cachesim: sets %d is not a power of two", sets)
	}

	ways, err := strconv.Atoi(parts[1])
	if err != nil || ways <= 0 {
		return Geometry{}, fmt.Errorf("cachesim: invalid ways %q", parts[1])
	}

	lineSize, err := strconv.Atoi(parts[2])
	if err != nil || lineSize <= 0 {
		return Geometry{}, fmt.Errorf("cachesim: invalid linesize %q", parts[2])
	}
	if !isPowerOfTwo(lineSize) || lineSize < 8 {
		return Geometry{}, fmt.Errorf("cachesim: linesize %d must be a power of two >= 8", lineSize)
	}

	return Geometry{Sets: sets, Ways: ways, LineSize: uint32(lineSize)}, nil
}

// Construct parses cfg and builds the level it describes, choosing the
// fully-associative shape when sets==1 and ways>4 (§4.5), wiring
// missHandler as its miss-propagation target (nil for a level with no
// next level, e.g. the deepest one built so far).
func Construct(cfg, name string, missHandler Level) (Level, error) {
	geo, err := ParseGeometry(cfg)
	if err != nil {
		return nil, err
	}

	indexShift := uint(bits.TrailingZeros32(geo.LineSize))

	if geo.Sets == 1 && geo.Ways > 4 {
		return NewFullyAssoc(name, geo.Ways, geo.LineSize, indexShift, missHandler), nil
	}
	return NewSetAssoc(name, geo.Sets, geo.Ways, geo.LineSize, indexShift, missHandler), nil
}
