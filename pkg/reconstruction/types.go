// Package reconstruction implements geodesic morphological reconstruction
// of 2D and 3D grids.
//
// Reconstruction by dilation grows a marker grid under a mask grid until it
// reaches the fixed point of "dilate one step, clip to the mask":
//
//	R = lim  min(δ(Rₖ), mask),  R₀ = marker ≤ mask
//
// Reconstruction by erosion is the dual, shrinking a marker that lies above
// the mask. Both run the hybrid algorithm of Vincent (1993): one raster pass
// over the causal half of the neighbourhood, one anti-raster pass over the
// anti-causal half, and a FIFO propagation that settles whatever the two
// passes could not reach.
package reconstruction

import (
	"fmt"

	"morphoseg/pkg/grid"
	"morphoseg/pkg/progress"
)

// ErrMarkerNotBounded indicates a marker that is not below the mask
// (dilation) or not above it (erosion) at some voxel.
var ErrMarkerNotBounded = fmt.Errorf("%w: marker not bounded by mask", grid.ErrInvalidInput)

// ErrUnknownDirection indicates a Direction outside the defined values.
var ErrUnknownDirection = fmt.Errorf("%w: unknown reconstruction direction", grid.ErrInvalidInput)

// Direction selects the monotone direction of propagation.
type Direction int

const (
	// Dilation grows the marker from below the mask.
	Dilation Direction = iota
	// Erosion shrinks the marker from above the mask.
	Erosion
)

func (d Direction) String() string {
	switch d {
	case Dilation:
		return "dilation"
	case Erosion:
		return "erosion"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts "dilation" or "erosion".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "dilation", "by-dilation":
		return Dilation, nil
	case "erosion", "by-erosion":
		return Erosion, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Validate returns ErrUnknownDirection for undefined values.
func (d Direction) Validate() error {
	if d != Dilation && d != Erosion {
		return fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
	return nil
}

type options struct {
	progress progress.Func
}

// Option configures a reconstruction.
type Option func(*options)

// WithProgress reports progress of the two scans and the propagation.
func WithProgress(f progress.Func) Option {
	return func(o *options) { o.progress = f }
}
