package grid

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"morphoseg/pkg/connectivity"
)

func TestNew_InvalidShape(t *testing.T) {
	_, err := New[uint8](0, 3, 1)
	require.ErrorIs(t, err, ErrInvalidShape)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = FromSlice(Shape{2, 2, 1}, []uint8{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestFrom2D_RejectsBadRows(t *testing.T) {
	_, err := From2D[uint8](nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = From2D([][]uint8{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = From3D([][][]uint8{{{1, 2}}, {{1, 2}, {3, 4}}})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestIndexCoordRoundTrip(t *testing.T) {
	g, err := New[int32](4, 3, 2)
	require.NoError(t, err)
	for i := 0; i < g.Len(); i++ {
		x, y, z := g.Coord(i)
		require.True(t, g.InBounds(x, y, z))
		require.Equal(t, i, g.Index(x, y, z))
	}
	g.Set(3, 2, 1, 7)
	assert.Equal(t, int32(7), g.AtIndex(g.Len()-1))
	assert.Panics(t, func() { g.At(4, 0, 0) })
}

func TestFrom3D_Layout(t *testing.T) {
	g, err := From3D([][][]uint16{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
	})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 2}, g.Shape())
	assert.Equal(t, []uint16{1, 2, 3, 4, 5, 6, 7, 8}, g.Data())
	assert.Equal(t, uint16(7), g.At(0, 1, 1))
	assert.Equal(t, []uint16{5, 6, 7, 8}, g.Plane(1))
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := From2D([][]uint8{{1, 2}, {3, 4}})
	c := g.Clone()
	c.Set(0, 0, 0, 9)
	assert.Equal(t, uint8(1), g.At(0, 0, 0))
	assert.False(t, Equal(g, c))
	c.Fill(0)
	assert.Equal(t, []uint8{0, 0, 0, 0}, c.Data())
}

func TestNeighborhood_BoundsAndOrder(t *testing.T) {
	s := Shape{3, 3, 1}
	nb, err := NewNeighborhood(s, connectivity.C8, nil)
	require.NoError(t, err)

	corner := slices.Collect(nb.Of(s.Index(0, 0, 0)))
	assert.Equal(t, []int{s.Index(1, 0, 0), s.Index(0, 1, 0), s.Index(1, 1, 0)}, corner)

	centre := slices.Collect(nb.Of(s.Index(1, 1, 0)))
	assert.Len(t, centre, 8)
	assert.True(t, slices.IsSorted(centre), "raster order expected, got %v", centre)

	before := slices.Collect(nb.Before(s.Index(1, 1, 0)))
	after := slices.Collect(nb.After(s.Index(1, 1, 0)))
	assert.Equal(t, []int{0, 1, 2, 3}, before)
	assert.Equal(t, []int{5, 6, 7, 8}, after)
}

func TestNeighborhood_NoRowWrap(t *testing.T) {
	s := Shape{3, 2, 1}
	nb, err := NewNeighborhood(s, connectivity.C4, nil)
	require.NoError(t, err)
	// (2,0) must not see (0,1) through index arithmetic
	got := slices.Collect(nb.Of(s.Index(2, 0, 0)))
	assert.Equal(t, []int{s.Index(1, 0, 0), s.Index(2, 1, 0)}, got)
}

func TestNeighborhood_Mask(t *testing.T) {
	mask, _ := From2D([][]bool{
		{true, false, true},
		{true, true, true},
	})
	nb, err := NewNeighborhood(mask.Shape(), connectivity.C4, mask)
	require.NoError(t, err)
	got := slices.Collect(nb.Points(Point{0, 0, 0}))
	assert.Equal(t, []Point{{0, 1, 0}}, got)
	assert.False(t, nb.InDomain(1))
	assert.True(t, nb.InDomain(0))

	_, err = NewNeighborhood(Shape{4, 4, 1}, connectivity.C4, mask)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewNeighborhood(mask.Shape(), connectivity.Connectivity(3), nil)
	assert.ErrorIs(t, err, ErrUnknownConnectivity)
	assert.ErrorIs(t, err, connectivity.ErrUnknown)
}

func TestNeighborhood_3D(t *testing.T) {
	s := Shape{3, 3, 3}
	for _, c := range []connectivity.Connectivity{connectivity.C6, connectivity.C18, connectivity.C26} {
		nb, err := NewNeighborhood(s, c, nil)
		require.NoError(t, err)
		assert.Len(t, slices.Collect(nb.Of(s.Index(1, 1, 1))), int(c))
	}
}

func TestComplement(t *testing.T) {
	g8, _ := From2D([][]uint8{{0, 10, 255}})
	assert.Equal(t, []uint8{255, 245, 0}, Complement(g8).Data())

	g16, _ := From2D([][]uint16{{0, 65535}})
	assert.Equal(t, []uint16{65535, 0}, Complement(g16).Data())

	gf, _ := From2D([][]float32{{-1.5, 2}})
	assert.Equal(t, []float32{1.5, -2}, Complement(gf).Data())

	assert.True(t, Equal(g8, Complement(Complement(g8))))
}

func TestConvert_Saturates(t *testing.T) {
	g, _ := From2D([][]float64{{-4, 3.6, 300, 70000}})
	assert.Equal(t, []uint8{0, 4, 255, 255}, Convert[uint8](g).Data())
	assert.Equal(t, []uint16{0, 4, 300, 65535}, Convert[uint16](g).Data())

	labels, _ := From2D([][]int32{{1, 70000}})
	assert.Equal(t, []uint16{1, 65535}, Convert[uint16](labels).Data())
	assert.Equal(t, []float32{1, 70000}, Convert[float32](labels).Data())
}

func TestBinarizeAndNaN(t *testing.T) {
	g, _ := From2D([][]float64{{0, 0.5, -1}})
	assert.Equal(t, []bool{false, true, true}, Binarize(g).Data())
	assert.False(t, HasNaN(g))
	g.Set(0, 0, 0, nan())
	assert.True(t, HasNaN(g))
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestLessEqual(t *testing.T) {
	a, _ := From2D([][]uint8{{1, 2}})
	b, _ := From2D([][]uint8{{1, 3}})
	assert.True(t, LessEqual(a, b))
	assert.False(t, LessEqual(b, a))
}

func TestDenseInterop(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	g, err := FromDense(m)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2, 1}, g.Shape())
	assert.Equal(t, 6.0, g.At(2, 1, 0))

	back, err := PlaneDense(g, 0)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, back))

	_, err = PlaneDense(g, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
