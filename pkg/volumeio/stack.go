// Package volumeio reads and writes grids as stacks of 2D grayscale images,
// one file per z plane.
package volumeio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	// JPEG slices are decoded through image.Decode
	_ "image/jpeg"

	"golang.org/x/sync/errgroup"

	"morphoseg/internal/models"
	"morphoseg/pkg/grid"
)

// ErrNoSlices indicates a directory without any readable slice image.
var ErrNoSlices = errors.New("volumeio: no PNG or JPEG slices found")

// ErrSliceSize indicates slices of different dimensions in one stack.
var ErrSliceSize = errors.New("volumeio: slice dimensions differ")

var sliceExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// ListSlices returns the slice files of dir ordered by the number embedded
// in their names, so that "slice_2" sorts before "slice_10".
func ListSlices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !sliceExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSlices, dir)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names, nil
}

// extractNumber returns the digits of the base name as a number, 0 if none.
func extractNumber(filename string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadStack reads every slice of dir into a grid, decoding up to workers
// files at once (all CPUs when workers < 1). 8-bit images keep their 0-255
// gray levels, 16-bit images their full range; colour images are converted
// to 8-bit luminance.
func LoadStack(ctx context.Context, dir string, workers int) (*grid.Grid[uint16], []models.Slice, error) {
	names, err := ListSlices(dir)
	if err != nil {
		return nil, nil, err
	}

	slices := make([]models.Slice, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := LoadImage(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			slices[i] = models.Slice{Image: img, Index: i, Filename: name}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load slices: %w", err)
	}

	width, height := slices[0].Bounds()
	out, err := grid.New[uint16](width, height, len(slices))
	if err != nil {
		return nil, nil, err
	}
	for z, s := range slices {
		if w, h := s.Bounds(); w != width || h != height {
			return nil, nil, fmt.Errorf("%w: %s is %dx%d, expected %dx%d", ErrSliceSize, s.Filename, w, h, width, height)
		}
		copyPlane(out.Plane(z), s.Image, width)
	}
	return out, slices, nil
}

func copyPlane(dst []uint16, img image.Image, width int) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst[(y-b.Min.Y)*width+x-b.Min.X] = src.Gray16At(x, y).Y
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst[(y-b.Min.Y)*width+x-b.Min.X] = uint16(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
			}
		}
	}
}

// SaveStack writes each z plane of g to dir as prefix_NNN.png, 16-bit
// grayscale. Values outside 0-65535 saturate.
func SaveStack[T grid.Scalar](dir, prefix string, g *grid.Grid[T]) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	u := grid.Convert[uint16](g)
	for z := 0; z < g.Depth(); z++ {
		img := planeImage(u.Plane(z), g.Width(), g.Height())
		name := filepath.Join(dir, fmt.Sprintf("%s_%03d.png", prefix, z))
		if err := SaveSlice(img, name); err != nil {
			return err
		}
	}
	return nil
}

func planeImage(plane []uint16, width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: plane[y*width+x]})
		}
	}
	return img
}

// SaveSlice writes img as a PNG file.
func SaveSlice(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return f.Close()
}
