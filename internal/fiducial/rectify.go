package fiducial

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

// minRectifiedSize is the smallest accepted rectified width or height.
const minRectifiedSize = 2

// Rectification maps a canonical quadrilateral onto an upright
// Width x Height rectangle.
type Rectification struct {
	Width   int
	Height  int
	Forward geometry.Homography // frame -> rectified
	Inverse geometry.Homography // rectified -> frame
}

// ComputeRectification sizes the target rectangle from the corners
// (height from |TL-BL|, width from |BR-BL|) and solves both homographies.
func ComputeRectification(corners geometry.Quad) (Rectification, error) {
	sides := corners.SideLengths()
	h := int(sides[geometry.TopLeft])
	w := int(sides[geometry.BottomLeft])
	if w < minRectifiedSize || h < minRectifiedSize {
		return Rectification{}, fmt.Errorf("rectified size %dx%d: %w", w, h, ErrDegenerateGeometry)
	}

	dst := [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: 0, Y: float64(h - 1)},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: float64(w - 1), Y: 0},
	}
	fwd, err := geometry.ComputeHomography(corners, dst)
	if err != nil {
		return Rectification{}, fmt.Errorf("rectify: %w: %v", ErrDegenerateGeometry, err)
	}
	inv, err := fwd.Inverse()
	if err != nil {
		return Rectification{}, fmt.Errorf("rectify: %w: %v", ErrDegenerateGeometry, err)
	}

	return Rectification{Width: w, Height: h, Forward: fwd, Inverse: inv}, nil
}

// BackProject maps a point of the rectified image into the frame.
func (r Rectification) BackProject(p geometry.Point2D) (geometry.Point2D, bool) {
	return r.Inverse.Apply(p)
}

// Warp renders src into a new Width x Height Mat. The caller owns the result.
func (r Rectification) Warp(src gocv.Mat) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.SetDoubleAt(i, j, r.Forward[i*3+j])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(src, &dst, m, image.Point{X: r.Width, Y: r.Height},
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	return dst
}
