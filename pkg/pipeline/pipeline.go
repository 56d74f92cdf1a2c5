// Package pipeline runs a complete segmentation job: it loads slice stacks
// from disk, runs labelling, watershed or reconstruction on them, measures
// the resulting regions and writes the result back as a slice stack.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"morphoseg/internal/logging"
	"morphoseg/internal/models"
	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/grid"
	"morphoseg/pkg/labeling"
	"morphoseg/pkg/morphology"
	"morphoseg/pkg/progress"
	"morphoseg/pkg/reconstruction"
	"morphoseg/pkg/regions"
	"morphoseg/pkg/volumeio"
	"morphoseg/pkg/watershed"
)

// Params holds the job description.
type Params struct {
	// Operation selects label, watershed or reconstruct.
	Operation models.Operation

	// InputDir holds the input slices: the binary image to label, the
	// relief to flood, or the mask to reconstruct under.
	InputDir string

	// MarkersDir holds the marker slices for watershed and reconstruction.
	MarkersDir string

	// MaskDir optionally restricts flooding to its non-zero voxels.
	MaskDir string

	// OutputDir receives the result stack.
	OutputDir string

	// Connectivity of 0 picks the largest neighbourhood for the stack depth.
	Connectivity connectivity.Connectivity

	ComputeDams bool

	// BinaryMarkers labels the connected components of the marker stack
	// before flooding; otherwise marker gray levels are the labels.
	BinaryMarkers bool

	// GradientRadius > 0 floods the morphological gradient of the input.
	GradientRadius int
	GradientShape  morphology.Shape

	Direction reconstruction.Direction

	// NumCores bounds slice loading and filtering concurrency.
	NumCores int

	// SaveIntermediaryResults writes the flooding relief and marker labels
	// to IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string

	// SlicesDir, when set, receives the result sliced along every axis.
	SlicesDir string
}

// Validate checks the parameters that do not need the input data.
func (p *Params) Validate() error {
	if p.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	switch p.Operation {
	case models.OpLabel:
	case models.OpWatershed, models.OpReconstruct:
		if p.MarkersDir == "" {
			return fmt.Errorf("%s requires a markers directory", p.Operation)
		}
	default:
		return fmt.Errorf("unknown operation %q", p.Operation)
	}
	if p.Connectivity != 0 {
		if err := grid.CheckConnectivity(p.Connectivity); err != nil {
			return err
		}
	}
	if p.Operation == models.OpReconstruct && p.MaskDir != "" {
		return fmt.Errorf("reconstruct takes its mask from the input directory")
	}
	return p.Direction.Validate()
}

// Pipeline runs one job. It is not safe for concurrent use.
type Pipeline struct {
	params *Params
	log    logging.Logger

	input  *grid.Grid[uint16]
	conn   connectivity.Connectivity
	labels *grid.Grid[int32]
	recon  *grid.Grid[uint16]
	stats  []regions.Region
	dams   int

	elapsed time.Duration
}

// New returns a pipeline for params. A nil logger discards messages.
func New(params *Params, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{params: params, log: logger}
}

// Process runs the job end to end.
func (p *Pipeline) Process(ctx context.Context) error {
	start := time.Now()
	defer func() { p.elapsed = time.Since(start) }()

	if err := p.params.Validate(); err != nil {
		return err
	}

	p.log.Infof("Step 1: Loading input slices from %s...", p.params.InputDir)
	input, slices, err := volumeio.LoadStack(ctx, p.params.InputDir, p.params.NumCores)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	p.input = input
	p.log.Infof("Loaded %d slices with dimensions %dx%d (%s voxels, %s)",
		len(slices), input.Width(), input.Height(), logging.Voxels(input.Len()), logging.Bytes(uint64(2*input.Len())))

	p.conn = p.params.Connectivity
	if p.conn == 0 {
		p.conn = connectivity.For(input.Depth(), true)
	}
	p.log.Debugf("Using connectivity %v", p.conn)

	p.log.Infof("Step 2: Running %s...", p.params.Operation)
	switch p.params.Operation {
	case models.OpLabel:
		err = p.runLabel()
	case models.OpWatershed:
		err = p.runWatershed(ctx)
	case models.OpReconstruct:
		err = p.runReconstruct(ctx)
	}
	if err != nil {
		return err
	}

	if p.labels != nil {
		p.log.Infof("Step 3: Measuring regions...")
		p.stats, err = regions.Analyze(p.labels, p.input)
		if err != nil {
			return err
		}
		p.log.Infof("Found %d regions covering %s voxels", len(p.stats), logging.Voxels(regions.Total(p.stats)))
		if p.params.Operation == models.OpWatershed && p.params.ComputeDams {
			p.dams = regions.CountDams(p.labels, nil)
			p.log.Infof("Watershed lines: %s voxels", logging.Voxels(p.dams))
		}
	}

	return p.save()
}

func (p *Pipeline) runLabel() error {
	labels, err := labeling.Label(grid.Binarize(p.input), p.conn, labeling.WithProgress(p.progressFunc()))
	if err != nil {
		return fmt.Errorf("labelling failed: %w", err)
	}
	p.labels = labels
	return nil
}

func (p *Pipeline) runWatershed(ctx context.Context) error {
	markers, err := p.loadCompanion(ctx, p.params.MarkersDir, "markers")
	if err != nil {
		return err
	}
	var mask *grid.Grid[bool]
	if p.params.MaskDir != "" {
		m, err := p.loadCompanion(ctx, p.params.MaskDir, "mask")
		if err != nil {
			return err
		}
		mask = grid.Binarize(m)
	}

	relief := p.input
	if p.params.GradientRadius > 0 {
		strel := morphology.Strel{Shape: p.params.GradientShape, Radius: p.params.GradientRadius}
		p.log.Infof("Computing morphological gradient with %v...", strel)
		relief, err = morphology.Apply(ctx, p.input, morphology.Gradient, strel, morphology.WithWorkers(p.params.NumCores))
		if err != nil {
			return fmt.Errorf("gradient failed: %w", err)
		}
		if err := saveIntermediary(p, "relief", relief); err != nil {
			return err
		}
	}

	var labels *grid.Grid[int32]
	if p.params.BinaryMarkers {
		labels, err = labeling.Label(grid.Binarize(markers), p.conn)
		if err != nil {
			return fmt.Errorf("marker labelling failed: %w", err)
		}
		p.log.Infof("Labelled %d marker components", labeling.Count(labels))
	} else {
		labels = grid.Convert[int32](markers)
	}
	if err := saveIntermediary(p, "markers", labels); err != nil {
		return err
	}

	p.log.Infof("-> Running watershed...")
	tlog := logging.NewTimeLog(p.log)
	p.labels, err = watershed.Watershed(relief, labels, mask, p.conn, p.params.ComputeDams,
		watershed.WithProgress(p.progressFunc()))
	if err != nil {
		return fmt.Errorf("watershed failed: %w", err)
	}
	tlog.Infof("Watershed %s took", dims(p.input))
	return nil
}

func (p *Pipeline) runReconstruct(ctx context.Context) error {
	marker, err := p.loadCompanion(ctx, p.params.MarkersDir, "markers")
	if err != nil {
		return err
	}
	tlog := logging.NewTimeLog(p.log)
	p.recon, err = reconstruction.Reconstruct(marker, p.input, p.conn, p.params.Direction,
		reconstruction.WithProgress(p.progressFunc()))
	if err != nil {
		return fmt.Errorf("reconstruction by %s failed: %w", p.params.Direction, err)
	}
	tlog.Infof("Reconstruction by %s %s took", p.params.Direction, dims(p.input))
	return nil
}

// loadCompanion loads a stack that must match the input shape.
func (p *Pipeline) loadCompanion(ctx context.Context, dir, what string) (*grid.Grid[uint16], error) {
	p.log.Infof("Loading %s from %s...", what, dir)
	g, _, err := volumeio.LoadStack(ctx, dir, p.params.NumCores)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", what, err)
	}
	if err := grid.SameShape(p.input.Shape(), g.Shape()); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return g, nil
}

func (p *Pipeline) save() error {
	if p.params.OutputDir == "" {
		return nil
	}
	p.log.Infof("Step 4: Saving result to %s...", p.params.OutputDir)
	var err error
	if p.labels != nil {
		err = volumeio.SaveStack(p.params.OutputDir, "labels", p.labels)
	} else {
		err = volumeio.SaveStack(p.params.OutputDir, "reconstructed", p.recon)
	}
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	if p.params.SlicesDir == "" {
		return nil
	}
	for _, axis := range models.Axes {
		axisDir := filepath.Join(p.params.SlicesDir, axis.String())
		p.log.Infof("Saving %s-axis slices to: %s", axis, axisDir)
		if p.labels != nil {
			err = volumeio.SaveSliceSequence(p.labels, axis, axisDir)
		} else {
			err = volumeio.SaveSliceSequence(p.recon, axis, axisDir)
		}
		if err != nil {
			p.log.Warningf("Failed to save %s-axis slices: %v", axis, err)
		}
	}
	return nil
}

func saveIntermediary[T grid.Scalar](p *Pipeline, stage string, g *grid.Grid[T]) error {
	if !p.params.SaveIntermediaryResults {
		return nil
	}
	dir := filepath.Join(p.params.IntermediaryDir, stage)
	p.log.Debugf("Saving %s to %s", stage, dir)
	if err := volumeio.SaveStack(dir, stage, g); err != nil {
		return fmt.Errorf("failed to save intermediary %s: %w", stage, err)
	}
	return nil
}

func (p *Pipeline) progressFunc() progress.Func {
	return func(e progress.Event) {
		if e.Total == 0 {
			p.log.Debugf("%s: %s", e.Source, e.Status)
			return
		}
		p.log.Debugf("%s: %s %.0f%%", e.Source, e.Status, 100*e.Ratio())
	}
}

func dims(g *grid.Grid[uint16]) string {
	if g.Shape().Is3D() {
		return "3d"
	}
	return "2d"
}

// Labels returns the label grid of a label or watershed job.
func (p *Pipeline) Labels() *grid.Grid[int32] { return p.labels }

// Reconstructed returns the result of a reconstruct job.
func (p *Pipeline) Reconstructed() *grid.Grid[uint16] { return p.recon }

// Regions returns the region measurements of a label or watershed job.
func (p *Pipeline) Regions() []regions.Region { return p.stats }

// Dams returns the number of watershed-line voxels.
func (p *Pipeline) Dams() int { return p.dams }

// Connectivity returns the connectivity the job ran with.
func (p *Pipeline) Connectivity() connectivity.Connectivity { return p.conn }

// Elapsed returns the wall time of the last Process call.
func (p *Pipeline) Elapsed() time.Duration { return p.elapsed }
