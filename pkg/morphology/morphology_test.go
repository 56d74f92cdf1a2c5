package morphology

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morphoseg/pkg/grid"
)

func TestStrel_Offsets(t *testing.T) {
	tests := []struct {
		strel Strel
		want  int
	}{
		{Strel{Square, 0}, 1},
		{Strel{Square, 1}, 9},
		{Strel{Square, 2}, 25},
		{Strel{Diamond, 1}, 5},
		{Strel{Diamond, 2}, 13},
		{Strel{Disk, 1}, 9},
		{Strel{Disk, 2}, 21},
		{Strel{Cube, 1}, 27},
		{Strel{Ball, 1}, 19},
	}
	for _, tc := range tests {
		t.Run(tc.strel.String(), func(t *testing.T) {
			offsets := tc.strel.Offsets()
			assert.Len(t, offsets, tc.want)
			assert.Contains(t, offsets, grid.Point{})
		})
	}
}

func TestStrel_Validate(t *testing.T) {
	assert.ErrorIs(t, Strel{Shape: Disk, Radius: -1}.Validate(), ErrNegativeRadius)
	assert.ErrorIs(t, Strel{Shape: Shape(42)}.Validate(), ErrUnknownShape)
	assert.ErrorIs(t, Strel{Shape: Shape(42)}.Validate(), grid.ErrInvalidInput)

	s, err := ParseShape("Disk")
	require.NoError(t, err)
	assert.Equal(t, Disk, s)
	_, err = ParseShape("octagon")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestDilateErode_SinglePeak(t *testing.T) {
	g, _ := grid.From2D([][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 9, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	ctx := context.Background()

	dil, err := Dilate(ctx, g, Strel{Diamond, 1})
	require.NoError(t, err)
	want, _ := grid.From2D([][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 9, 0, 0},
		{0, 9, 9, 9, 0},
		{0, 0, 9, 0, 0},
		{0, 0, 0, 0, 0},
	})
	if diff := cmp.Diff(want.Data(), dil.Data()); diff != "" {
		t.Errorf("dilation mismatch (-want +got):\n%s", diff)
	}

	ero, err := Erode(ctx, dil, Strel{Diamond, 1})
	require.NoError(t, err)
	assert.True(t, grid.Equal(g, ero), "erosion of the dilated peak gives the peak back")
}

func TestGradient_Edges(t *testing.T) {
	g, _ := grid.From2D([][]uint16{{0, 0, 0, 100, 100, 100}})
	grad, err := Apply(context.Background(), g, Gradient, Strel{Square, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 0, 100, 100, 0, 0}, grad.Data())
}

func TestApply_Ordering(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	g, _ := grid.New[float64](12, 10, 4)
	for i := range g.Data() {
		g.SetIndex(i, rng.Float64())
	}
	ctx := context.Background()
	for _, strel := range []Strel{{Square, 1}, {Disk, 2}, {Ball, 1}} {
		apply := func(op Operation) *grid.Grid[float64] {
			out, err := Apply(ctx, g, op, strel, WithWorkers(2))
			require.NoError(t, err)
			return out
		}
		dil, ero := apply(Dilation), apply(Erosion)
		open, closed := apply(Opening), apply(Closing)

		assert.True(t, grid.LessEqual(ero, g), "%v erosion", strel)
		assert.True(t, grid.LessEqual(g, dil), "%v dilation", strel)
		assert.True(t, grid.LessEqual(open, g), "%v opening", strel)
		assert.True(t, grid.LessEqual(g, closed), "%v closing", strel)
		assert.True(t, grid.LessEqual(ero, open), "%v erosion <= opening", strel)
	}
}

func TestApply_PlanarStrelStaysInPlane(t *testing.T) {
	g, _ := grid.New[uint8](3, 3, 3)
	g.Set(1, 1, 1, 50)
	dil, err := Dilate(context.Background(), g, Strel{Square, 1})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), dil.At(1, 1, 0))
	assert.Equal(t, uint8(50), dil.At(0, 0, 1))

	dil3, err := Dilate(context.Background(), g, Strel{Cube, 1})
	require.NoError(t, err)
	assert.Equal(t, uint8(50), dil3.At(0, 0, 0))
}

func TestApply_Errors(t *testing.T) {
	g, _ := grid.New[uint8](2, 2, 1)
	_, err := Apply(context.Background(), g, Operation(99), Strel{Square, 1})
	assert.ErrorIs(t, err, ErrUnknownOperation)
	_, err = Apply(context.Background(), g, Dilation, Strel{Square, -2})
	assert.ErrorIs(t, err, ErrNegativeRadius)

	op, err := ParseOperation("GRADIENT")
	require.NoError(t, err)
	assert.Equal(t, Gradient, op)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Apply(ctx, g, Dilation, Strel{Square, 1})
	assert.ErrorIs(t, err, context.Canceled)
}
