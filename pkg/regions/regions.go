// Package regions measures the labelled regions of a segmentation.
package regions

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"morphoseg/pkg/grid"
)

// Box is an inclusive bounding box.
type Box struct {
	Min, Max grid.Point
}

// Region holds the measurements of one positive label.
type Region struct {
	Label  int32
	Voxels int
	// Intensity statistics; zero when no intensity grid was given.
	Mean, StdDev, Min, Max float64
	Bounds                 Box
	// Centroid is the mean voxel coordinate (x, y, z).
	Centroid [3]float64
}

type accumulator struct {
	values     []float64
	xs, ys, zs []float64
	bounds     Box
}

// Analyze measures every positive label of labels, sorted by label.
// intensity may be nil; otherwise it must have the shape of labels.
func Analyze[T grid.Scalar](labels *grid.Grid[int32], intensity *grid.Grid[T]) ([]Region, error) {
	if intensity != nil {
		if err := grid.SameShape(labels.Shape(), intensity.Shape()); err != nil {
			return nil, fmt.Errorf("intensity: %w", err)
		}
	}

	acc := map[int32]*accumulator{}
	for i, l := range labels.Data() {
		if l <= 0 {
			continue
		}
		x, y, z := labels.Coord(i)
		p := grid.Point{X: x, Y: y, Z: z}
		a, ok := acc[l]
		if !ok {
			a = &accumulator{bounds: Box{Min: p, Max: p}}
			acc[l] = a
		}
		a.xs = append(a.xs, float64(x))
		a.ys = append(a.ys, float64(y))
		a.zs = append(a.zs, float64(z))
		a.bounds.extend(p)
		if intensity != nil {
			a.values = append(a.values, float64(intensity.AtIndex(i)))
		}
	}

	out := make([]Region, 0, len(acc))
	for l, a := range acc {
		r := Region{
			Label:    l,
			Voxels:   len(a.xs),
			Bounds:   a.bounds,
			Centroid: [3]float64{stat.Mean(a.xs, nil), stat.Mean(a.ys, nil), stat.Mean(a.zs, nil)},
		}
		if len(a.values) > 0 {
			r.Mean = stat.Mean(a.values, nil)
			if len(a.values) > 1 {
				r.StdDev = stat.StdDev(a.values, nil)
			}
			r.Min = floats.Min(a.values)
			r.Max = floats.Max(a.values)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (b *Box) extend(p grid.Point) {
	b.Min.X, b.Max.X = min(b.Min.X, p.X), max(b.Max.X, p.X)
	b.Min.Y, b.Max.Y = min(b.Min.Y, p.Y), max(b.Max.Y, p.Y)
	b.Min.Z, b.Max.Z = min(b.Min.Z, p.Z), max(b.Max.Z, p.Z)
}

// CountDams counts the zero-labelled voxels inside mask (the whole grid
// when mask is nil). After a watershed with dams these are the watershed
// lines plus any unreachable voxels.
func CountDams(labels *grid.Grid[int32], mask *grid.Grid[bool]) int {
	n := 0
	for i, l := range labels.Data() {
		if l == 0 && (mask == nil || mask.AtIndex(i)) {
			n++
		}
	}
	return n
}

// Total returns the number of voxels covered by regions.
func Total(regions []Region) int {
	var sizes []float64
	for _, r := range regions {
		sizes = append(sizes, float64(r.Voxels))
	}
	return int(floats.Sum(sizes))
}
