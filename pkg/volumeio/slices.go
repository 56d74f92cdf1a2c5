package volumeio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"morphoseg/internal/models"
	"morphoseg/pkg/grid"
)

// ExtractSlice extracts the plane orthogonal to axis at position pos as a
// 16-bit image. X planes are depth wide and height tall, Y planes width
// wide and depth tall. Values saturate to 0-65535.
func ExtractSlice[T grid.Scalar](g *grid.Grid[T], axis models.Axis, pos int) (*image.Gray16, error) {
	return extract(grid.Convert[uint16](g), axis, pos)
}

func extract(u *grid.Grid[uint16], axis models.Axis, pos int) (*image.Gray16, error) {
	if pos < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	w, h, d := u.Width(), u.Height(), u.Depth()

	switch axis {
	case models.AxisX:
		if pos >= w {
			return nil, fmt.Errorf("position %d exceeds width %d", pos, w)
		}
		plane := make([]uint16, d*h)
		for y := 0; y < h; y++ {
			for z := 0; z < d; z++ {
				plane[y*d+z] = u.At(pos, y, z)
			}
		}
		return planeImage(plane, d, h), nil

	case models.AxisY:
		if pos >= h {
			return nil, fmt.Errorf("position %d exceeds height %d", pos, h)
		}
		plane := make([]uint16, w*d)
		for z := 0; z < d; z++ {
			for x := 0; x < w; x++ {
				plane[z*w+x] = u.At(x, pos, z)
			}
		}
		return planeImage(plane, w, d), nil

	case models.AxisZ:
		if pos >= d {
			return nil, fmt.Errorf("position %d exceeds depth %d", pos, d)
		}
		return planeImage(u.Plane(pos), w, h), nil
	}
	return nil, fmt.Errorf("invalid axis: %v", axis)
}

// SaveSliceSequence extracts and saves every plane of g along axis to
// outputDir as slice_<axis>_NNN.png.
func SaveSliceSequence[T grid.Scalar](g *grid.Grid[T], axis models.Axis, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case models.AxisX:
		maxPos = g.Width()
	case models.AxisY:
		maxPos = g.Height()
	case models.AxisZ:
		maxPos = g.Depth()
	default:
		return fmt.Errorf("invalid axis: %v", axis)
	}

	u := grid.Convert[uint16](g)
	for pos := 0; pos < maxPos; pos++ {
		img, err := extract(u, axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := SaveSlice(img, filename); err != nil {
			return err
		}
	}
	return nil
}
