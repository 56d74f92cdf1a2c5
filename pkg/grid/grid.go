package grid

import "fmt"

// Grid is a dense 2D/3D array of elements with an immutable shape.
//
// Grids are handed to the engines by reference. An engine never mutates its
// inputs; the grid it returns is owned by the caller.
type Grid[T Element] struct {
	shape Shape
	data  []T
}

// New allocates a zero-valued grid.
// Returns ErrInvalidShape if any dimension is not positive.
func New[T Element](width, height, depth int) (*Grid[T], error) {
	s := Shape{width, height, depth}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Grid[T]{shape: s, data: make([]T, s.Len())}, nil
}

// NewLike allocates a zero-valued grid with the given shape.
func NewLike[T Element](s Shape) (*Grid[T], error) {
	return New[T](s.Width, s.Height, s.Depth)
}

// FromSlice builds a grid from row-major data. The data is copied.
// Returns ErrInvalidShape if the shape is invalid or len(data) differs
// from the voxel count.
func FromSlice[T Element](s Shape, data []T) (*Grid[T], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(data) != s.Len() {
		return nil, fmt.Errorf("%w: %d values for %v", ErrInvalidShape, len(data), s)
	}
	cp := make([]T, len(data))
	copy(cp, data)
	return &Grid[T]{shape: s, data: cp}, nil
}

// From2D builds a single-plane grid from rows indexed [y][x].
// Returns ErrInvalidShape if rows is empty or jagged.
func From2D[T Element](rows [][]T) (*Grid[T], error) {
	return From3D([][][]T{rows})
}

// From3D builds a grid from planes indexed [z][y][x].
// Returns ErrInvalidShape if any level is empty or jagged.
func From3D[T Element](planes [][][]T) (*Grid[T], error) {
	if len(planes) == 0 || len(planes[0]) == 0 || len(planes[0][0]) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidShape)
	}
	s := Shape{len(planes[0][0]), len(planes[0]), len(planes)}
	g := &Grid[T]{shape: s, data: make([]T, 0, s.Len())}
	for z, plane := range planes {
		if len(plane) != s.Height {
			return nil, fmt.Errorf("%w: plane %d has %d rows, want %d", ErrInvalidShape, z, len(plane), s.Height)
		}
		for y, row := range plane {
			if len(row) != s.Width {
				return nil, fmt.Errorf("%w: row %d of plane %d has %d values, want %d",
					ErrInvalidShape, y, z, len(row), s.Width)
			}
			g.data = append(g.data, row...)
		}
	}
	return g, nil
}

// Shape returns the grid dimensions.
func (g *Grid[T]) Shape() Shape { return g.shape }

// Width returns the size along x.
func (g *Grid[T]) Width() int { return g.shape.Width }

// Height returns the size along y.
func (g *Grid[T]) Height() int { return g.shape.Height }

// Depth returns the number of planes.
func (g *Grid[T]) Depth() int { return g.shape.Depth }

// Len returns the number of voxels.
func (g *Grid[T]) Len() int { return len(g.data) }

// InBounds reports whether (x, y, z) lies inside the grid.
func (g *Grid[T]) InBounds(x, y, z int) bool { return g.shape.Contains(x, y, z) }

// Index maps (x, y, z) to its linear index.
func (g *Grid[T]) Index(x, y, z int) int { return g.shape.Index(x, y, z) }

// Coord converts a linear index back to (x, y, z).
func (g *Grid[T]) Coord(i int) (x, y, z int) { return g.shape.Coord(i) }

// At returns the value at (x, y, z). It panics when out of bounds.
func (g *Grid[T]) At(x, y, z int) T {
	g.check(x, y, z)
	return g.data[g.shape.Index(x, y, z)]
}

// Set stores v at (x, y, z). It panics when out of bounds.
func (g *Grid[T]) Set(x, y, z int, v T) {
	g.check(x, y, z)
	g.data[g.shape.Index(x, y, z)] = v
}

func (g *Grid[T]) check(x, y, z int) {
	if !g.shape.Contains(x, y, z) {
		panic(fmt.Sprintf("grid: (%d,%d,%d) outside %v", x, y, z, g.shape))
	}
}

// AtIndex returns the value at linear index i.
func (g *Grid[T]) AtIndex(i int) T { return g.data[i] }

// SetIndex stores v at linear index i.
func (g *Grid[T]) SetIndex(i int, v T) { g.data[i] = v }

// Data exposes the backing slice in row-major order. Writes through it
// modify the grid.
func (g *Grid[T]) Data() []T { return g.data }

// Plane returns the backing slice of plane z.
func (g *Grid[T]) Plane(z int) []T {
	n := g.shape.Width * g.shape.Height
	return g.data[z*n : (z+1)*n]
}

// Clone returns a deep copy.
func (g *Grid[T]) Clone() *Grid[T] {
	cp := make([]T, len(g.data))
	copy(cp, g.data)
	return &Grid[T]{shape: g.shape, data: cp}
}

// Fill sets every voxel to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}
