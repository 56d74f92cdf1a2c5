// Package watershed implements marker-controlled watershed segmentation of
// 2D and 3D grids by priority flooding.
//
// Labelled markers are immersed and their basins grow outwards in
// non-decreasing order of the intensity of the voxels being reached. Voxels
// of equal intensity are processed first-in-first-out, which approximates
// simultaneous isotropic fronts and keeps the result independent of scan
// direction. A voxel reached by two or more distinct basins is either
// turned into a dam (label 0) or, without dams, given the smallest of the
// competing labels.
//
// The queue is chosen once per call: a bucket queue (O(1) push/pop) for
// uint8 and uint16 intensities, a binary heap keyed by (intensity,
// insertion sequence) for floating-point intensities.
//
// Complexity: O(N·d) with the bucket queue, O(N·d·log N) with the heap,
// memory O(N) for N voxels and d neighbours.
package watershed

import (
	"fmt"

	"morphoseg/pkg/grid"
	"morphoseg/pkg/progress"
)

var (
	// ErrNoMarkers indicates that no positive marker label lies inside the
	// flooding domain.
	ErrNoMarkers = fmt.Errorf("%w: no positive marker label", grid.ErrInvalidInput)
	// ErrNegativeLabel indicates a marker grid holding negative labels.
	ErrNegativeLabel = fmt.Errorf("%w: negative marker label", grid.ErrInvalidInput)
)

// Dam is the label given to watershed-line voxels.
const Dam int32 = 0

type options struct {
	progress progress.Func
}

// Option configures a watershed run.
type Option func(*options)

// WithProgress reports flooding progress in settled voxels.
func WithProgress(f progress.Func) Option {
	return func(o *options) { o.progress = f }
}
