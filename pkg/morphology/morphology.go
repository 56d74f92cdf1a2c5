// Package morphology implements flat grayscale dilation, erosion and the
// filters derived from them. Output planes are computed concurrently.
package morphology

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"morphoseg/pkg/grid"
)

var (
	ErrUnknownShape     = fmt.Errorf("%w: unknown structuring element shape", grid.ErrInvalidInput)
	ErrNegativeRadius   = fmt.Errorf("%w: negative structuring element radius", grid.ErrInvalidInput)
	ErrUnknownOperation = fmt.Errorf("%w: unknown morphological operation", grid.ErrInvalidInput)
)

// Operation is the closed set of filters Apply understands.
type Operation int

const (
	Dilation Operation = iota
	Erosion
	Opening
	Closing
	// Gradient is dilation minus erosion.
	Gradient
)

var opNames = map[Operation]string{
	Dilation: "dilation",
	Erosion:  "erosion",
	Opening:  "opening",
	Closing:  "closing",
	Gradient: "gradient",
}

func (op Operation) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// ParseOperation accepts operation names case-insensitively.
func ParseOperation(name string) (Operation, error) {
	for op, n := range opNames {
		if strings.EqualFold(name, n) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

type options struct {
	workers int
}

// Option configures Apply.
type Option func(*options)

// WithWorkers bounds the number of planes filtered at once. n < 1 means
// one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Apply filters g with op and strel and returns a new grid. Voxels outside
// the grid are ignored, so borders are never padded with artificial values.
func Apply[T grid.Scalar](ctx context.Context, g *grid.Grid[T], op Operation, strel Strel, opts ...Option) (*grid.Grid[T], error) {
	o := options{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	if err := strel.Validate(); err != nil {
		return nil, err
	}
	f := &filter[T]{offsets: strel.Offsets(), workers: o.workers}

	switch op {
	case Dilation:
		return f.run(ctx, g, true)
	case Erosion:
		return f.run(ctx, g, false)
	case Opening:
		return f.chain(ctx, g, false, true)
	case Closing:
		return f.chain(ctx, g, true, false)
	case Gradient:
		dil, err := f.run(ctx, g, true)
		if err != nil {
			return nil, err
		}
		ero, err := f.run(ctx, g, false)
		if err != nil {
			return nil, err
		}
		out := dil.Data()
		for i, v := range ero.Data() {
			out[i] -= v
		}
		return dil, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op))
}

// Dilate is Apply with Dilation.
func Dilate[T grid.Scalar](ctx context.Context, g *grid.Grid[T], strel Strel, opts ...Option) (*grid.Grid[T], error) {
	return Apply(ctx, g, Dilation, strel, opts...)
}

// Erode is Apply with Erosion.
func Erode[T grid.Scalar](ctx context.Context, g *grid.Grid[T], strel Strel, opts ...Option) (*grid.Grid[T], error) {
	return Apply(ctx, g, Erosion, strel, opts...)
}

type filter[T grid.Scalar] struct {
	offsets []grid.Point
	workers int
}

func (f *filter[T]) chain(ctx context.Context, g *grid.Grid[T], firstMax, secondMax bool) (*grid.Grid[T], error) {
	tmp, err := f.run(ctx, g, firstMax)
	if err != nil {
		return nil, err
	}
	return f.run(ctx, tmp, secondMax)
}

// run computes the running max (or min) over the offsets, one goroutine per
// output plane.
func (f *filter[T]) run(ctx context.Context, g *grid.Grid[T], takeMax bool) (*grid.Grid[T], error) {
	out := g.Clone()
	src := g.Data()
	s := g.Shape()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.workers)
	for z := 0; z < s.Depth; z++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plane := out.Plane(z)
			for y := 0; y < s.Height; y++ {
				for x := 0; x < s.Width; x++ {
					v := src[s.Index(x, y, z)]
					for _, o := range f.offsets {
						nx, ny, nz := x+o.X, y+o.Y, z+o.Z
						if !s.Contains(nx, ny, nz) {
							continue
						}
						w := src[s.Index(nx, ny, nz)]
						if takeMax && w > v || !takeMax && w < v {
							v = w
						}
					}
					plane[y*s.Width+x] = v
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
