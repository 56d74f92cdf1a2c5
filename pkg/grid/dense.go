package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FromDense builds a single-plane float64 grid from a gonum matrix; row i
// becomes y = i and column j becomes x = j.
func FromDense(m mat.Matrix) (*Grid[float64], error) {
	rows, cols := m.Dims()
	g, err := New[float64](cols, rows, 1)
	if err != nil {
		return nil, err
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.data[y*cols+x] = m.At(y, x)
		}
	}
	return g, nil
}

// PlaneDense copies plane z of g into a Height×Width gonum matrix.
func PlaneDense[T Scalar](g *Grid[T], z int) (*mat.Dense, error) {
	if z < 0 || z >= g.shape.Depth {
		return nil, fmt.Errorf("%w: plane %d outside %v", ErrInvalidInput, z, g.shape)
	}
	plane := g.Plane(z)
	data := make([]float64, len(plane))
	for i, v := range plane {
		data[i] = float64(v)
	}
	return mat.NewDense(g.shape.Height, g.shape.Width, data), nil
}
