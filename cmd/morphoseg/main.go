package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"morphoseg/internal/logging"
	"morphoseg/internal/models"
	"morphoseg/pkg/config"
	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/morphology"
	"morphoseg/pkg/pipeline"
	"morphoseg/pkg/reconstruction"
)

func main() {
	defaults := config.DefaultConfig()

	// Parse command line arguments
	op := flag.String("op", string(models.OpWatershed), "Operation: label, watershed or reconstruct")
	inputDir := flag.String("input", "", "Directory containing the input slices (the mask for reconstruct)")
	markersDir := flag.String("markers", "", "Directory containing the marker slices")
	maskDir := flag.String("mask", "", "Directory containing mask slices restricting the watershed")
	outputDir := flag.String("output", "output", "Directory to save the result slices")
	conn := flag.Int("conn", defaults.Processing.Connectivity, "Connectivity: 4 or 8 in 2D, 6, 18 or 26 in 3D (0: largest for the stack)")
	dams := flag.Bool("dams", defaults.Processing.ComputeDams, "Keep watershed lines as label 0")
	binaryMarkers := flag.Bool("binary-markers", defaults.Processing.BinaryMarkers, "Label connected marker components before flooding")
	gradient := flag.Int("gradient", defaults.Processing.GradientRadius, "Flood the morphological gradient of this radius (0: flood the input)")
	gradientShape := flag.String("gradient-shape", defaults.Processing.GradientShape, "Structuring element for the gradient: square, disk, diamond, cube or ball")
	direction := flag.String("direction", defaults.Processing.Direction, "Reconstruction direction: dilation or erosion")
	numCores := flag.Int("cores", defaults.Processing.NumCores, "Number of CPU cores to use (default: all available)")
	configPath := flag.String("config", "", "YAML configuration file providing defaults")
	initConfig := flag.String("init-config", "", "Write a default configuration file to this path and exit")
	logFile := flag.String("log", defaults.Output.LogFile, "Rotating log file (default: stderr)")
	verbose := flag.Bool("verbose", defaults.Output.Verbose, "Log debug messages and progress")
	saveIntermediary := flag.Bool("save-intermediary", defaults.Output.SaveIntermediaryResults, "Save the flooding relief and marker labels")
	intermediaryDir := flag.String("intermediary-dir", defaults.Output.IntermediaryDir, "Directory to save intermediary results")
	slicesDir := flag.String("slices-dir", "", "Extract and save the result along all axes to this directory")
	flag.Parse()

	if *initConfig != "" {
		if err := config.CreateDefaultConfigFile(*initConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *initConfig)
		return
	}

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := defaults
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	// explicit flags override the configuration file
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	pick := func(name string, flagVal, cfgVal interface{}) interface{} {
		if set[name] {
			return flagVal
		}
		return cfgVal
	}
	cfg.Processing.Connectivity = pick("conn", *conn, cfg.Processing.Connectivity).(int)
	cfg.Processing.ComputeDams = pick("dams", *dams, cfg.Processing.ComputeDams).(bool)
	cfg.Processing.BinaryMarkers = pick("binary-markers", *binaryMarkers, cfg.Processing.BinaryMarkers).(bool)
	cfg.Processing.GradientRadius = pick("gradient", *gradient, cfg.Processing.GradientRadius).(int)
	cfg.Processing.GradientShape = pick("gradient-shape", *gradientShape, cfg.Processing.GradientShape).(string)
	cfg.Processing.Direction = pick("direction", *direction, cfg.Processing.Direction).(string)
	cfg.Processing.NumCores = pick("cores", *numCores, cfg.Processing.NumCores).(int)
	cfg.Output.LogFile = pick("log", *logFile, cfg.Output.LogFile).(string)
	cfg.Output.Verbose = pick("verbose", *verbose, cfg.Output.Verbose).(bool)
	cfg.Output.SaveIntermediaryResults = pick("save-intermediary", *saveIntermediary, cfg.Output.SaveIntermediaryResults).(bool)
	cfg.Output.IntermediaryDir = pick("intermediary-dir", *intermediaryDir, cfg.Output.IntermediaryDir).(string)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	level := logging.InfoLevel
	if cfg.Output.Verbose {
		level = logging.DebugLevel
	}
	logger := logging.New(logging.Config{
		File:       cfg.Output.LogFile,
		MaxSizeMB:  cfg.Output.LogMaxSizeMB,
		MaxAgeDays: cfg.Output.LogMaxAgeDays,
		Level:      level,
	})
	defer logger.Shutdown()

	operation, err := models.ParseOperation(*op)
	if err != nil {
		log.Fatalf("%v", err)
	}
	shape, _ := morphology.ParseShape(cfg.Processing.GradientShape)
	dir, _ := reconstruction.ParseDirection(cfg.Processing.Direction)

	params := &pipeline.Params{
		Operation:               operation,
		InputDir:                *inputDir,
		MarkersDir:              *markersDir,
		MaskDir:                 *maskDir,
		OutputDir:               *outputDir,
		Connectivity:            connectivity.Connectivity(cfg.Processing.Connectivity),
		ComputeDams:             cfg.Processing.ComputeDams,
		BinaryMarkers:           cfg.Processing.BinaryMarkers,
		GradientRadius:          cfg.Processing.GradientRadius,
		GradientShape:           shape,
		Direction:               dir,
		NumCores:                cfg.Processing.NumCores,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
		SlicesDir:               *slicesDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.New(params, logger)
	logger.Infof("Starting %s on %s...", operation, *inputDir)
	if err := p.Process(ctx); err != nil {
		logger.Errorf("%s failed: %v", operation, err)
		logger.Shutdown()
		log.Fatalf("%s failed: %v", operation, err)
	}

	fmt.Printf("\n%s completed successfully in %.2f seconds!\n", operation, p.Elapsed().Round(time.Millisecond).Seconds())
	fmt.Printf("Connectivity: %v\n", p.Connectivity())
	if p.Labels() != nil {
		fmt.Printf("Regions: %d\n", len(p.Regions()))
		if params.Operation == models.OpWatershed && params.ComputeDams {
			fmt.Printf("Watershed line voxels: %s\n", logging.Voxels(p.Dams()))
		}
		for _, r := range p.Regions() {
			fmt.Printf("  label %-5d %10s voxels  mean %8.2f  sd %8.2f  centroid (%.1f, %.1f, %.1f)\n",
				r.Label, logging.Voxels(r.Voxels), r.Mean, r.StdDev, r.Centroid[0], r.Centroid[1], r.Centroid[2])
		}
	}
	fmt.Printf("Output saved to: %s\n", *outputDir)
}
