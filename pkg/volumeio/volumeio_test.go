package volumeio

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morphoseg/internal/models"
	"morphoseg/pkg/grid"
)

func writeGray(t *testing.T, path string, w, h int, value func(x, y int) uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: value(x, y)})
		}
	}
	require.NoError(t, SaveSlice(img, path))
}

func TestListSlices_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"slice_10.png", "slice_2.jpg", "slice_1.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	names, err := ListSlices(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"slice_1.png", "slice_2.jpg", "slice_10.png"}, names)
}

func TestListSlices_Empty(t *testing.T) {
	_, err := ListSlices(t.TempDir())
	assert.ErrorIs(t, err, ErrNoSlices)
}

func TestLoadStack(t *testing.T) {
	dir := t.TempDir()
	// written out of order on purpose
	for _, z := range []int{2, 0, 1} {
		writeGray(t, filepath.Join(dir, "img"+string(rune('0'+z))+".png"), 4, 3, func(x, y int) uint8 {
			return uint8(z*100 + y*10 + x)
		})
	}

	g, slices, err := LoadStack(context.Background(), dir, 2)
	require.NoError(t, err)
	assert.Equal(t, grid.Shape{Width: 4, Height: 3, Depth: 3}, g.Shape())
	require.Len(t, slices, 3)
	assert.Equal(t, "img0.png", slices[0].Filename)
	assert.Equal(t, 2, slices[2].Index)
	// 8-bit gray levels are kept as is
	assert.Equal(t, uint16(0), g.At(0, 0, 0))
	assert.Equal(t, uint16(123), g.At(3, 2, 1))
	assert.Equal(t, uint16(213), g.At(3, 1, 2))
}

func TestLoadStack_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	writeGray(t, filepath.Join(dir, "a1.png"), 4, 4, func(int, int) uint8 { return 1 })
	writeGray(t, filepath.Join(dir, "a2.png"), 5, 4, func(int, int) uint8 { return 1 })
	_, _, err := LoadStack(context.Background(), dir, 0)
	assert.ErrorIs(t, err, ErrSliceSize)
}

func TestLoadStack_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeGray(t, filepath.Join(dir, "a1.png"), 2, 2, func(int, int) uint8 { return 1 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := LoadStack(ctx, dir, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveStack_RoundTripAndSaturation(t *testing.T) {
	labels, err := grid.From3D([][][]int32{
		{{0, 1, 2}, {-5, 70000, 300}},
		{{7, 7, 7}, {8, 8, 8}},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, SaveStack(dir, "labels", labels))
	assert.FileExists(t, filepath.Join(dir, "labels_000.png"))
	assert.FileExists(t, filepath.Join(dir, "labels_001.png"))

	back, _, err := LoadStack(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2, 0, 65535, 300, 7, 7, 7, 8, 8, 8}, back.Data())
}

func TestExtractSlice(t *testing.T) {
	g, _ := grid.New[uint8](4, 3, 2)
	for i := range g.Data() {
		g.SetIndex(i, uint8(i))
	}

	x, err := ExtractSlice(g, models.AxisX, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 3), x.Bounds())
	assert.Equal(t, uint16(g.At(1, 2, 1)), x.Gray16At(1, 2).Y)

	y, err := ExtractSlice(g, models.AxisY, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), y.Bounds())
	assert.Equal(t, uint16(g.At(3, 2, 1)), y.Gray16At(3, 1).Y)

	z, err := ExtractSlice(g, models.AxisZ, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(g.At(2, 1, 1)), z.Gray16At(2, 1).Y)

	_, err = ExtractSlice(g, models.AxisZ, 2)
	assert.Error(t, err)
	_, err = ExtractSlice(g, models.AxisX, -1)
	assert.Error(t, err)
	_, err = ExtractSlice(g, models.Axis(7), 0)
	assert.Error(t, err)
}

func TestSaveSliceSequence(t *testing.T) {
	g, _ := grid.New[float32](3, 2, 4)
	dir := t.TempDir()
	for _, axis := range models.Axes {
		require.NoError(t, SaveSliceSequence(g, axis, filepath.Join(dir, axis.String())))
	}
	for axis, want := range map[string]int{"x": 3, "y": 2, "z": 4} {
		entries, err := os.ReadDir(filepath.Join(dir, axis))
		require.NoError(t, err)
		assert.Len(t, entries, want, axis)
	}
}
