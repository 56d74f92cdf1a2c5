package grid

import (
	"iter"

	"morphoseg/pkg/connectivity"
)

// step is a connectivity offset together with its linear index delta.
type step struct {
	o     connectivity.Offset
	delta int
}

// Neighborhood enumerates the neighbours of a voxel under a connectivity,
// restricted to the grid bounds and, when a mask is set, to mask voxels.
//
// Neighbours are always produced in the connectivity's raster offset order,
// which the engines rely on for deterministic tie-breaking.
type Neighborhood struct {
	shape  Shape
	mask   []bool
	all    []step
	before []step
	after  []step
}

// NewNeighborhood precomputes the offset table of conn for shape. mask may
// be nil; otherwise it must have the same shape.
//
// Returns ErrUnknownConnectivity or ErrShapeMismatch on bad input.
func NewNeighborhood(s Shape, conn connectivity.Connectivity, mask *Grid[bool]) (*Neighborhood, error) {
	if err := CheckConnectivity(conn); err != nil {
		return nil, err
	}
	n := &Neighborhood{shape: s}
	if mask != nil {
		if err := SameShape(s, mask.Shape()); err != nil {
			return nil, err
		}
		n.mask = mask.data
	}
	n.all = n.steps(conn.Offsets())
	n.before = n.steps(conn.Causal())
	n.after = n.steps(conn.AntiCausal())
	return n, nil
}

func (n *Neighborhood) steps(offsets []connectivity.Offset) []step {
	out := make([]step, len(offsets))
	for k, o := range offsets {
		out[k] = step{o: o, delta: (o.DZ*n.shape.Height+o.DY)*n.shape.Width + o.DX}
	}
	return out
}

// Shape returns the shape the neighbourhood was built for.
func (n *Neighborhood) Shape() Shape { return n.shape }

// InDomain reports whether linear index i is inside the mask (always true
// without a mask).
func (n *Neighborhood) InDomain(i int) bool {
	return n.mask == nil || n.mask[i]
}

// Of yields the linear indices of all neighbours of voxel i.
func (n *Neighborhood) Of(i int) iter.Seq[int] {
	return n.walk(n.all, i)
}

// Before yields the neighbours of i that precede it in raster order.
func (n *Neighborhood) Before(i int) iter.Seq[int] {
	return n.walk(n.before, i)
}

// After yields the neighbours of i that follow it in raster order.
func (n *Neighborhood) After(i int) iter.Seq[int] {
	return n.walk(n.after, i)
}

// Points yields the neighbouring coordinates of p.
func (n *Neighborhood) Points(p Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		if !n.shape.Contains(p.X, p.Y, p.Z) {
			return
		}
		for j := range n.Of(n.shape.Index(p.X, p.Y, p.Z)) {
			x, y, z := n.shape.Coord(j)
			if !yield(Point{x, y, z}) {
				return
			}
		}
	}
}

func (n *Neighborhood) walk(steps []step, i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		x, y, z := n.shape.Coord(i)
		for _, s := range steps {
			if !n.shape.Contains(x+s.o.DX, y+s.o.DY, z+s.o.DZ) {
				continue
			}
			j := i + s.delta
			if n.mask != nil && !n.mask[j] {
				continue
			}
			if !yield(j) {
				return
			}
		}
	}
}
