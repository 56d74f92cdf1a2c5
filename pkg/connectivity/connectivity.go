// Package connectivity defines the neighbour relations used to walk 2D and 3D
// voxel grids.
//
// A Connectivity selects a fixed offset table:
//
//   - C4, C8: planar neighbourhoods (dz is always 0)
//   - C6, C18, C26: volumetric neighbourhoods (faces, faces+edges, faces+edges+corners)
//
// Offsets are listed in raster order (z, then y, then x ascending) and the
// table is built once at init, so every call returns the same ordering. The
// zero vector is never included and every table is symmetric: if d is an
// offset then so is -d. The first half of each table holds the offsets that
// precede the centre voxel in raster order (the causal half).
package connectivity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknown is returned when a Connectivity value is not one of the
// supported neighbourhoods.
var ErrUnknown = errors.New("connectivity: unknown connectivity")

// Connectivity selects a neighbour offset table. Its numeric value is the
// number of neighbours of an interior voxel.
type Connectivity int

const (
	// C4 uses the 4 orthogonal in-plane neighbours.
	C4 Connectivity = 4
	// C8 adds the 4 in-plane diagonals to C4.
	C8 Connectivity = 8
	// C6 uses the 6 face neighbours of a voxel.
	C6 Connectivity = 6
	// C18 adds the 12 edge neighbours to C6.
	C18 Connectivity = 18
	// C26 uses the full 3×3×3 cube around a voxel.
	C26 Connectivity = 26
)

// Offset is a relative voxel displacement.
type Offset struct {
	DX, DY, DZ int
}

// Neg returns the opposite displacement.
func (o Offset) Neg() Offset {
	return Offset{-o.DX, -o.DY, -o.DZ}
}

// IsZero reports whether o is the null displacement.
func (o Offset) IsZero() bool {
	return o.DX == 0 && o.DY == 0 && o.DZ == 0
}

// precedes reports whether the voxel at o comes before the origin in raster order.
func (o Offset) precedes() bool {
	if o.DZ != 0 {
		return o.DZ < 0
	}
	if o.DY != 0 {
		return o.DY < 0
	}
	return o.DX < 0
}

var tables = map[Connectivity][]Offset{}

func init() {
	for _, c := range []Connectivity{C4, C8, C6, C18, C26} {
		tables[c] = build(c)
	}
}

// build enumerates the 3×3×3 cube in raster order and keeps the offsets
// belonging to c.
func build(c Connectivity) []Offset {
	offsets := make([]Offset, 0, int(c))
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				o := Offset{dx, dy, dz}
				if o.IsZero() {
					continue
				}
				// number of non-zero components: 1 = face, 2 = edge, 3 = corner
				n := abs(dx) + abs(dy) + abs(dz)
				keep := false
				switch c {
				case C4:
					keep = dz == 0 && n == 1
				case C8:
					keep = dz == 0
				case C6:
					keep = n == 1
				case C18:
					keep = n <= 2
				case C26:
					keep = true
				}
				if keep {
					offsets = append(offsets, o)
				}
			}
		}
	}
	return offsets
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Valid reports whether c is a supported connectivity.
func (c Connectivity) Valid() bool {
	_, ok := tables[c]
	return ok
}

// Validate returns an error wrapping ErrUnknown if c is not supported.
func (c Connectivity) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknown, int(c))
	}
	return nil
}

// Is3D reports whether c reaches neighbours in adjacent planes.
func (c Connectivity) Is3D() bool {
	return c == C6 || c == C18 || c == C26
}

// String returns the neighbour count, e.g. "26".
func (c Connectivity) String() string {
	return strconv.Itoa(int(c))
}

// Offsets returns the raster-ordered offset table for c. The returned slice
// is shared and must not be modified.
//
// Offsets panics if c is not valid; callers at API boundaries check
// Validate first.
func (c Connectivity) Offsets() []Offset {
	t, ok := tables[c]
	if !ok {
		panic(fmt.Sprintf("connectivity: illegal connectivity %d", int(c)))
	}
	return t
}

// Causal returns the offsets preceding the centre voxel in raster order.
func (c Connectivity) Causal() []Offset {
	t := c.Offsets()
	return t[:len(t)/2]
}

// AntiCausal returns the offsets following the centre voxel in raster order.
func (c Connectivity) AntiCausal() []Offset {
	t := c.Offsets()
	return t[len(t)/2:]
}

// Parse reads a connectivity from its neighbour count, optionally prefixed
// with "c" (e.g. "26" or "C26").
func Parse(s string) (Connectivity, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "c")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	c := Connectivity(n)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c, nil
}

// For returns the default connectivity for a grid of the given depth: the
// planar variants when depth is 1, the volumetric ones otherwise. full
// selects the largest neighbourhood (8 or 26) instead of the smallest (4 or 6).
func For(depth int, full bool) Connectivity {
	if depth <= 1 {
		if full {
			return C8
		}
		return C4
	}
	if full {
		return C26
	}
	return C6
}
