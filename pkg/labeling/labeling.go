// Package labeling turns binary voxel grids into label grids where every
// connected foreground component carries its own positive identifier.
//
// Components are numbered 1..K in the order their first voxel is met by a
// raster scan (x fastest, then y, then z). Each component is flooded
// breadth-first from that voxel with an explicit FIFO, so grids of tens of
// millions of voxels never hit call-stack limits.
//
// Complexity: O(N·d) time and O(N) memory for N voxels and d neighbours.
package labeling

import (
	"fmt"
	"math"

	"github.com/eapache/queue"

	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/grid"
	"morphoseg/pkg/progress"
)

type options struct {
	progress progress.Func
	maxLabel int64
}

// Option configures Label.
type Option func(*options)

// WithProgress reports labelling progress in voxels.
func WithProgress(f progress.Func) Option {
	return func(o *options) { o.progress = f }
}

// withMaxLabel lowers the label ceiling; used to exercise overflow handling.
func withMaxLabel(n int64) Option {
	return func(o *options) { o.maxLabel = n }
}

// Label assigns distinct positive labels to the connected components of the
// true voxels of binary under conn. Background voxels get 0.
//
// Returns grid.ErrUnknownConnectivity for unsupported connectivity and
// grid.ErrOutOfRange if the component count exceeds the int32 label range.
func Label(binary *grid.Grid[bool], conn connectivity.Connectivity, opts ...Option) (*grid.Grid[int32], error) {
	o := options{maxLabel: math.MaxInt32}
	for _, opt := range opts {
		opt(&o)
	}

	nb, err := grid.NewNeighborhood(binary.Shape(), conn, binary)
	if err != nil {
		return nil, err
	}
	labels, err := grid.NewLike[int32](binary.Shape())
	if err != nil {
		return nil, err
	}

	fg := binary.Data()
	out := labels.Data()
	rep := progress.NewReporter(o.progress, "labeling", "labelling components", len(fg))
	q := queue.New()
	var next int64 = 1

	for seed := range fg {
		rep.Step(seed)
		if !fg[seed] || out[seed] != 0 {
			continue
		}
		if next > o.maxLabel {
			return nil, fmt.Errorf("%w: more than %d components", grid.ErrOutOfRange, o.maxLabel)
		}
		label := int32(next)
		next++

		out[seed] = label
		q.Add(seed)
		for q.Length() > 0 {
			i := q.Remove().(int)
			// the neighbourhood is masked by binary, so every j is foreground
			for j := range nb.Of(i) {
				if out[j] == 0 {
					out[j] = label
					q.Add(j)
				}
			}
		}
	}
	rep.Done()
	return labels, nil
}

// Count returns the largest label of a label grid, which for grids produced
// by Label equals the number of components.
func Count(labels *grid.Grid[int32]) int {
	var maxLabel int32
	for _, l := range labels.Data() {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return int(maxLabel)
}

// Sizes returns the voxel count of every label, indexed by label; index 0
// counts background voxels.
func Sizes(labels *grid.Grid[int32]) []int {
	sizes := make([]int, Count(labels)+1)
	for _, l := range labels.Data() {
		if l >= 0 {
			sizes[l]++
		}
	}
	return sizes
}
