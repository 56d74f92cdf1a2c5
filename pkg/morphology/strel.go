package morphology

import (
	"fmt"
	"strings"

	"morphoseg/pkg/grid"
)

// Shape is the closed set of structuring element shapes.
type Shape int

const (
	// Square is the (2r+1)×(2r+1) planar square.
	Square Shape = iota
	// Disk is the planar disk of radius r.
	Disk
	// Diamond is the planar L1 ball of radius r.
	Diamond
	// Cube is the (2r+1)³ cube.
	Cube
	// Ball is the Euclidean ball of radius r.
	Ball
)

var shapeNames = map[Shape]string{
	Square:  "square",
	Disk:    "disk",
	Diamond: "diamond",
	Cube:    "cube",
	Ball:    "ball",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape accepts shape names case-insensitively.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if strings.EqualFold(name, n) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// Is3D reports whether the shape extends along z.
func (s Shape) Is3D() bool { return s == Cube || s == Ball }

// Strel is a flat, symmetric structuring element centred on the origin.
type Strel struct {
	Shape  Shape
	Radius int
}

// Validate checks the shape and radius.
func (s Strel) Validate() error {
	if _, ok := shapeNames[s.Shape]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownShape, int(s.Shape))
	}
	if s.Radius < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeRadius, s.Radius)
	}
	return nil
}

func (s Strel) String() string {
	return fmt.Sprintf("%s(r=%d)", s.Shape, s.Radius)
}

// Offsets returns the element's voxel offsets in raster order. The origin
// is always included.
func (s Strel) Offsets() []grid.Point {
	r := s.Radius
	rz := 0
	if s.Shape.Is3D() {
		rz = r
	}
	// +r keeps the discrete disk and ball close to their continuous area
	r2 := r*r + r
	var out []grid.Point
	for dz := -rz; dz <= rz; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				var in bool
				switch s.Shape {
				case Square, Cube:
					in = true
				case Disk, Ball:
					in = dx*dx+dy*dy+dz*dz <= r2
				case Diamond:
					in = abs(dx)+abs(dy) <= r
				}
				if in {
					out = append(out, grid.Point{X: dx, Y: dy, Z: dz})
				}
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
