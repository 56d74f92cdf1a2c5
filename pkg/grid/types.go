// Package grid provides the dense voxel grids consumed and produced by the
// labelling, flooding and reconstruction engines.
//
// A Grid stores Width×Height×Depth elements in a single row-major slice;
// voxel (x, y, z) lives at index z*Width*Height + y*Width + x. A 2D image
// is a grid of depth 1. Shapes are fixed at construction.
//
// Label grids are Grid[int32] (0 means background, unlabelled or dam) and
// masks are Grid[bool] (false voxels are outside the domain).
package grid

import "fmt"

// Scalar is the set of numeric element types a grid may hold.
type Scalar interface {
	~uint8 | ~uint16 | ~int32 | ~float32 | ~float64
}

// Intensity is the set of grey-level element types that can drive flooding
// and reconstruction: 8/16-bit unsigned integers and floating point.
type Intensity interface {
	~uint8 | ~uint16 | ~float32 | ~float64
}

// Element is any type storable in a grid.
type Element interface {
	Scalar | ~bool
}

// Point is an integer voxel coordinate.
type Point struct {
	X, Y, Z int
}

// Shape holds the dimensions of a grid.
type Shape struct {
	Width, Height, Depth int
}

// Validate returns ErrInvalidShape if any dimension is not positive.
func (s Shape) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Depth <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidShape, s)
	}
	return nil
}

// Len returns the number of voxels.
func (s Shape) Len() int {
	return s.Width * s.Height * s.Depth
}

// Is3D reports whether the shape has more than one plane.
func (s Shape) Is3D() bool {
	return s.Depth > 1
}

// Contains reports whether (x, y, z) lies inside the shape.
func (s Shape) Contains(x, y, z int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height && z >= 0 && z < s.Depth
}

// Index maps (x, y, z) to its linear index.
func (s Shape) Index(x, y, z int) int {
	return (z*s.Height+y)*s.Width + x
}

// Coord converts a linear index back to (x, y, z).
func (s Shape) Coord(i int) (x, y, z int) {
	plane := s.Width * s.Height
	z = i / plane
	r := i - z*plane
	return r % s.Width, r / s.Width, z
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Depth)
}
