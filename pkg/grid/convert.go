package grid

import "math"

// maxUnsigned returns the largest value of T and true when T is an unsigned
// integer type; it relies on unsigned subtraction wrapping around.
func maxUnsigned[T Scalar]() (T, bool) {
	var zero T
	m := zero - 1
	return m, m > zero
}

// isInteger reports whether T truncates fractional values.
func isInteger[T Scalar]() bool {
	half := 0.5
	return T(half) == 0
}

// Complement returns the per-type negation of g: max-v for unsigned
// integers and -v for signed and floating-point types. Complement is an
// involution and reverses the order of values, which makes reconstruction
// by erosion the dual of reconstruction by dilation.
func Complement[T Scalar](g *Grid[T]) *Grid[T] {
	out := g.Clone()
	if m, ok := maxUnsigned[T](); ok {
		for i, v := range out.data {
			out.data[i] = m - v
		}
		return out
	}
	for i, v := range out.data {
		out.data[i] = -v
	}
	return out
}

// Binarize returns a mask that is true wherever g is non-zero.
func Binarize[T Scalar](g *Grid[T]) *Grid[bool] {
	out := &Grid[bool]{shape: g.shape, data: make([]bool, len(g.data))}
	for i, v := range g.data {
		out.data[i] = v != 0
	}
	return out
}

// Convert copies g into a grid of element type U. Integer targets are
// rounded and clamped to their representable range: values beyond it
// saturate at the type's minimum or maximum instead of wrapping, and NaN
// becomes 0. The clamp is intentional.
func Convert[U, T Scalar](g *Grid[T]) *Grid[U] {
	out := &Grid[U]{shape: g.shape, data: make([]U, len(g.data))}
	lo, hi, bounded := bounds[U]()
	for i, v := range g.data {
		f := float64(v)
		if bounded {
			switch {
			case math.IsNaN(f):
				f = 0
			case f < lo:
				f = lo
			case f > hi:
				f = hi
			default:
				f = math.Round(f)
			}
		}
		out.data[i] = U(f)
	}
	return out
}

// bounds returns the representable range of integer types.
func bounds[U Scalar]() (lo, hi float64, bounded bool) {
	if m, ok := maxUnsigned[U](); ok {
		return 0, float64(m), true
	}
	if isInteger[U]() {
		return math.MinInt32, math.MaxInt32, true
	}
	return 0, 0, false
}

// HasNaN reports whether any voxel is NaN. It is always false for integer grids.
func HasNaN[T Scalar](g *Grid[T]) bool {
	for _, v := range g.data {
		if v != v {
			return true
		}
	}
	return false
}

// Equal reports whether a and b have the same shape and identical values.
func Equal[T Element](a, b *Grid[T]) bool {
	if a.shape != b.shape {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// LessEqual reports whether a[i] <= b[i] for every voxel. Shapes must match.
func LessEqual[T Scalar](a, b *Grid[T]) bool {
	if a.shape != b.shape {
		return false
	}
	for i := range a.data {
		if a.data[i] > b.data[i] {
			return false
		}
	}
	return true
}
