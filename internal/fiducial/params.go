// Package fiducial locates a planar quadrilateral fiducial (a Sudoku grid or a
// square binary marker) in a frame, refines its corners to sub-pixel
// precision, rectifies it and estimates its pose relative to the camera.
package fiducial

import (
	"fmt"

	"go.uber.org/multierr"
)

// Mode selects which fiducial the detector looks for.
type Mode string

const (
	// ModeGrid detects a Sudoku playing grid.
	ModeGrid Mode = "grid"
	// ModeMarker detects a square binary marker.
	ModeMarker Mode = "marker"
)

// Selection decides which accepted grid candidate is returned.
type Selection string

const (
	// SelectFirst returns the first accepted candidate in contour order.
	SelectFirst Selection = "first"
	// SelectLargest returns the accepted candidate with the largest area.
	SelectLargest Selection = "largest"
)

// RectifySource selects the image that is warped to the frontal view.
type RectifySource string

const (
	RectifyBinary RectifySource = "binary"
	RectifyGray   RectifySource = "gray"
)

const (
	// FrameMargin is subtracted from the frame area to get the largest
	// candidate area, so the frame border itself never matches.
	FrameMargin = 10000
	// MinChildArea is the smallest bounding area of a counted grid cell.
	MinChildArea = 100
	// MinChildQuads is the number of quadrilateral children a grid needs.
	MinChildQuads = 10
	// GridIntervals is the number of intervals per side for grids.
	GridIntervals = 9
	// MarkerIntervals is the number of intervals per side for markers.
	MarkerIntervals = 7
)

// Params holds the per-frame detection configuration. A Params value is
// never modified while a frame is processed.
type Params struct {
	Mode Mode `yaml:"mode"`

	// Adaptive mean threshold
	BlockSize int     `yaml:"block_size"` // odd, >= 3
	Constant  float64 `yaml:"constant"`

	// Candidate bounding-box area limits in pixels. MaxArea 0 disables the
	// configurable upper limit; the frame margin always applies.
	MinArea int `yaml:"min_area"`
	MaxArea int `yaml:"max_area"`

	Selection     Selection     `yaml:"selection"`
	RectifySource RectifySource `yaml:"rectify_source"`

	// Marker cell binarization threshold (0-255)
	MarkerThreshold int `yaml:"marker_threshold"`

	// Physical side length of the fiducial; pose translation uses the same unit.
	SideLength float64 `yaml:"side_length"`
	// Focal length in pixels. 0 uses the frame width.
	FocalLength float64 `yaml:"focal_length"`

	Verbose bool `yaml:"verbose"`
}

// DefaultParams returns parameters for Sudoku grid detection.
func DefaultParams() Params {
	return Params{
		Mode:            ModeGrid,
		BlockSize:       17,
		Constant:        7,
		MinArea:         5000,
		MaxArea:         0,
		Selection:       SelectLargest,
		RectifySource:   RectifyBinary,
		MarkerThreshold: 100,
		SideLength:      0.2, // meters
		FocalLength:     0,
	}
}

// DefaultMarkerParams returns parameters for binary marker detection.
func DefaultMarkerParams() Params {
	p := DefaultParams()
	p.Mode = ModeMarker
	p.RectifySource = RectifyGray
	p.SideLength = 0.045
	return p
}

// WithBlockSize returns a copy of p with the block size forced odd and at
// least 3.
func (p Params) WithBlockSize(n int) Params {
	if n%2 == 0 {
		n--
	}
	if n < 3 {
		n = 3
	}
	p.BlockSize = n
	return p
}

// WithAreaRange returns a copy of p with the given candidate area limits.
func (p Params) WithAreaRange(minArea, maxArea int) Params {
	p.MinArea = minArea
	p.MaxArea = maxArea
	return p
}

// WithSideLength returns a copy of p with the given fiducial side length.
func (p Params) WithSideLength(side float64) Params {
	p.SideLength = side
	return p
}

// WithFocalLength returns a copy of p with the given focal length in pixels.
func (p Params) WithFocalLength(f float64) Params {
	p.FocalLength = f
	return p
}

// Intervals returns the number of edge intervals per side for the mode.
func (p Params) Intervals() int {
	if p.Mode == ModeMarker {
		return MarkerIntervals
	}
	return GridIntervals
}

// Validate reports every invalid field.
func (p Params) Validate() error {
	var err error
	switch p.Mode {
	case ModeGrid, ModeMarker:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown mode %q", p.Mode))
	}
	if p.BlockSize < 3 || p.BlockSize%2 == 0 {
		err = multierr.Append(err, fmt.Errorf("block_size must be odd and >= 3, got %d", p.BlockSize))
	}
	if p.MinArea < 0 {
		err = multierr.Append(err, fmt.Errorf("min_area must be >= 0, got %d", p.MinArea))
	}
	if p.MaxArea != 0 && p.MaxArea < p.MinArea {
		err = multierr.Append(err, fmt.Errorf("max_area %d is below min_area %d", p.MaxArea, p.MinArea))
	}
	switch p.Selection {
	case SelectFirst, SelectLargest:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown selection %q", p.Selection))
	}
	switch p.RectifySource {
	case RectifyBinary, RectifyGray:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown rectify_source %q", p.RectifySource))
	}
	if p.MarkerThreshold < 0 || p.MarkerThreshold > 255 {
		err = multierr.Append(err, fmt.Errorf("marker_threshold must be in [0,255], got %d", p.MarkerThreshold))
	}
	if p.SideLength <= 0 {
		err = multierr.Append(err, fmt.Errorf("side_length must be positive, got %g", p.SideLength))
	}
	if p.FocalLength < 0 {
		err = multierr.Append(err, fmt.Errorf("focal_length must be >= 0, got %g", p.FocalLength))
	}
	return err
}
