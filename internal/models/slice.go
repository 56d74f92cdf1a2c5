package models

import (
	"fmt"
	"image"
	"strings"
)

// Slice represents a single 2D image of a stack with metadata
type Slice struct {
	// Image is the decoded slice
	Image image.Image

	// Index is the position of this slice in the stack
	Index int

	// Filename is the original filename of the slice
	Filename string
}

// Bounds returns the slice dimensions.
func (s Slice) Bounds() (width, height int) {
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Axis selects the direction orthogonal to an extracted plane
type Axis int

const (
	// AxisX extracts YZ planes
	AxisX Axis = iota
	// AxisY extracts XZ planes
	AxisY
	// AxisZ extracts XY planes, i.e. the original slices
	AxisZ
)

// Axes lists every axis in x, y, z order.
var Axes = []Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z" in either case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
}

// Operation selects what the pipeline computes
type Operation string

const (
	OpLabel       Operation = "label"
	OpWatershed   Operation = "watershed"
	OpReconstruct Operation = "reconstruct"
)

// Operations lists the supported pipeline operations.
var Operations = []Operation{OpLabel, OpWatershed, OpReconstruct}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == strings.ToLower(s) {
			return op, nil
		}
	}
	return "", fmt.Errorf("invalid operation: %s (must be label, watershed, or reconstruct)", s)
}
