package watershed

import (
	"fmt"

	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/grid"
	"morphoseg/pkg/labeling"
	"morphoseg/pkg/progress"
)

// voxel states during flooding
const (
	unvisited uint8 = iota
	queued
	settled
)

// Watershed floods intensity from the labelled markers and returns a new
// label grid.
//
// markers must have the shape of intensity and hold at least one positive
// label inside the domain; 0 marks territory to be flooded. mask, when not
// nil, restricts the domain: voxels outside it are never visited and are 0
// in the result, and markers outside it are ignored. With computeDams,
// voxels where distinct basins meet are set to Dam and do not propagate;
// otherwise they join the smallest adjacent label and every reachable
// domain voxel ends up labelled.
//
// Returns grid.ErrShapeMismatch, grid.ErrUnknownConnectivity, grid.ErrNaN,
// ErrNegativeLabel or ErrNoMarkers before touching any state.
func Watershed[T grid.Intensity](
	intensity *grid.Grid[T],
	markers *grid.Grid[int32],
	mask *grid.Grid[bool],
	conn connectivity.Connectivity,
	computeDams bool,
	opts ...Option,
) (*grid.Grid[int32], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := grid.SameShape(intensity.Shape(), markers.Shape()); err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	nb, err := grid.NewNeighborhood(intensity.Shape(), conn, mask)
	if err != nil {
		return nil, err
	}
	if grid.HasNaN(intensity) {
		return nil, grid.ErrNaN
	}
	if err := checkMarkers(markers, nb); err != nil {
		return nil, err
	}

	values := intensity.Data()
	f := &flooder{
		nb:     nb,
		labels: markers.Clone(),
		dams:   computeDams,
		queue:  newQueue(values, func(v T) float64 { return float64(v) }),
	}
	f.status = make([]uint8, f.labels.Len())
	f.report = progress.NewReporter(o.progress, "watershed", "flooding", domainSize(nb, f.labels.Len()))
	f.run()
	return f.labels, nil
}

// FromBinaryMarkers labels the connected components of binary markers
// under conn and floods from them.
func FromBinaryMarkers[T grid.Intensity](
	intensity *grid.Grid[T],
	markers *grid.Grid[bool],
	mask *grid.Grid[bool],
	conn connectivity.Connectivity,
	computeDams bool,
	opts ...Option,
) (*grid.Grid[int32], error) {
	if err := grid.SameShape(intensity.Shape(), markers.Shape()); err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	labels, err := labeling.Label(markers, conn, labeling.WithProgress(o.progress))
	if err != nil {
		return nil, err
	}
	return Watershed(intensity, labels, mask, conn, computeDams, opts...)
}

func checkMarkers(markers *grid.Grid[int32], nb *grid.Neighborhood) error {
	found := false
	for i, l := range markers.Data() {
		if l < 0 {
			x, y, z := markers.Coord(i)
			return fmt.Errorf("%w: %d at (%d,%d,%d)", ErrNegativeLabel, l, x, y, z)
		}
		if l > 0 && nb.InDomain(i) {
			found = true
		}
	}
	if !found {
		return ErrNoMarkers
	}
	return nil
}

func domainSize(nb *grid.Neighborhood, n int) int {
	count := 0
	for i := 0; i < n; i++ {
		if nb.InDomain(i) {
			count++
		}
	}
	return count
}

// flooder owns the working state of one watershed call.
type flooder struct {
	nb     *grid.Neighborhood
	labels *grid.Grid[int32]
	status []uint8
	queue  floodQueue
	dams   bool
	report *progress.Reporter
	done   int
}

func (f *flooder) run() {
	out := f.labels.Data()

	// markers are settled from the start; markers outside the mask are dropped
	for i, l := range out {
		if !f.nb.InDomain(i) {
			out[i] = 0
			continue
		}
		if l > 0 {
			f.status[i] = settled
			f.done++
		}
	}
	for i := range out {
		if f.status[i] == settled {
			f.enqueueNeighbors(i)
		}
	}

	for f.queue.len() > 0 {
		i := f.queue.pop()
		first, smallest, distinct := f.adjacentLabels(i)
		switch {
		case distinct == 0:
			if f.queue.len() == 0 {
				// nothing left that could ever label it
				f.settle(i, 0)
				continue
			}
			f.queue.push(i)
		case distinct == 1:
			f.settle(i, first)
			f.enqueueNeighbors(i)
		case f.dams:
			f.settle(i, Dam)
		default:
			f.settle(i, smallest)
			f.enqueueNeighbors(i)
		}
	}
	f.report.Done()
}

func (f *flooder) settle(i int, label int32) {
	f.labels.SetIndex(i, label)
	f.status[i] = settled
	f.done++
	f.report.Step(f.done)
}

func (f *flooder) enqueueNeighbors(i int) {
	for j := range f.nb.Of(i) {
		if f.status[j] == unvisited {
			f.status[j] = queued
			f.queue.push(j)
		}
	}
}

// adjacentLabels inspects the positive labels of the settled neighbours of
// i. distinct is 0, 1, or 2 for "two or more".
func (f *flooder) adjacentLabels(i int) (first, smallest int32, distinct int) {
	out := f.labels.Data()
	for j := range f.nb.Of(i) {
		if f.status[j] != settled || out[j] <= 0 {
			continue
		}
		l := out[j]
		switch {
		case distinct == 0:
			first, smallest, distinct = l, l, 1
		case l != first:
			distinct = 2
		}
		if l < smallest {
			smallest = l
		}
	}
	return first, smallest, distinct
}
