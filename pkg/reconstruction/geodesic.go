package reconstruction

import (
	"fmt"

	"github.com/eapache/queue"

	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/grid"
	"morphoseg/pkg/progress"
)

// ByDilation reconstructs marker under mask by geodesic dilation. marker
// must be pointwise <= mask.
func ByDilation[T grid.Scalar](marker, mask *grid.Grid[T], conn connectivity.Connectivity, opts ...Option) (*grid.Grid[T], error) {
	return Reconstruct(marker, mask, conn, Dilation, opts...)
}

// ByErosion reconstructs marker above mask by geodesic erosion. marker
// must be pointwise >= mask.
func ByErosion[T grid.Scalar](marker, mask *grid.Grid[T], conn connectivity.Connectivity, opts ...Option) (*grid.Grid[T], error) {
	return Reconstruct(marker, mask, conn, Erosion, opts...)
}

// Reconstruct runs geodesic reconstruction of marker under mask in the
// given direction and returns a new grid. Neither input is modified.
//
// All preconditions are checked before any work: ErrUnknownDirection,
// grid.ErrShapeMismatch, grid.ErrUnknownConnectivity, grid.ErrNaN, and
// ErrMarkerNotBounded when marker lies on the wrong side of mask.
func Reconstruct[T grid.Scalar](
	marker, mask *grid.Grid[T],
	conn connectivity.Connectivity,
	dir Direction,
	opts ...Option,
) (*grid.Grid[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := dir.Validate(); err != nil {
		return nil, err
	}
	if err := grid.SameShape(marker.Shape(), mask.Shape()); err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	nb, err := grid.NewNeighborhood(marker.Shape(), conn, nil)
	if err != nil {
		return nil, err
	}
	if grid.HasNaN(marker) || grid.HasNaN(mask) {
		return nil, grid.ErrNaN
	}
	ord := order[T]{dilate: dir == Dilation}
	if i := ord.firstUnbounded(marker.Data(), mask.Data()); i >= 0 {
		x, y, z := marker.Coord(i)
		return nil, fmt.Errorf("%w: %s at (%d,%d,%d)", ErrMarkerNotBounded, dir, x, y, z)
	}

	out := marker.Clone()
	r := &reconstructor[T]{
		nb:     nb,
		ord:    ord,
		out:    out.Data(),
		mask:   mask.Data(),
		report: progress.NewReporter(o.progress, "reconstruction", "raster scan", 2*out.Len()),
	}
	r.run()
	return out, nil
}

// order holds the comparisons that differ between dilation and erosion.
type order[T grid.Scalar] struct {
	dilate bool
}

// better reports whether a would propagate over b.
func (o order[T]) better(a, b T) bool {
	if o.dilate {
		return a > b
	}
	return a < b
}

// clip bounds v by the mask value m.
func (o order[T]) clip(v, m T) T {
	if o.better(v, m) {
		return m
	}
	return v
}

func (o order[T]) firstUnbounded(marker, mask []T) int {
	for i := range marker {
		if o.better(marker[i], mask[i]) {
			return i
		}
	}
	return -1
}

type reconstructor[T grid.Scalar] struct {
	nb     *grid.Neighborhood
	ord    order[T]
	out    []T
	mask   []T
	report *progress.Reporter
}

func (r *reconstructor[T]) run() {
	out, mask := r.out, r.mask
	n := len(out)

	for i := 0; i < n; i++ {
		v := out[i]
		for j := range r.nb.Before(i) {
			if r.ord.better(out[j], v) {
				v = out[j]
			}
		}
		out[i] = r.ord.clip(v, mask[i])
		r.report.Step(i + 1)
	}

	r.report.Status("anti-raster scan")
	fifo := queue.New()
	for i := n - 1; i >= 0; i-- {
		v := out[i]
		for j := range r.nb.After(i) {
			if r.ord.better(out[j], v) {
				v = out[j]
			}
		}
		v = r.ord.clip(v, mask[i])
		out[i] = v
		// i can still raise a later neighbour that has room below its mask
		for j := range r.nb.After(i) {
			if r.ord.better(v, out[j]) && r.ord.better(mask[j], out[j]) {
				fifo.Add(i)
				break
			}
		}
		r.report.Step(2*n - i)
	}

	r.report.Status("propagation")
	for fifo.Length() > 0 {
		p := fifo.Remove().(int)
		v := out[p]
		for q := range r.nb.Of(p) {
			if r.ord.better(v, out[q]) && out[q] != mask[q] {
				out[q] = r.ord.clip(v, mask[q])
				fifo.Add(q)
			}
		}
	}
	r.report.Done()
}
