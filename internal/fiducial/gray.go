package fiducial

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

// outsideIntensity is returned for samples too close to the image border.
const outsideIntensity = 127

// grayImage converts a single-channel 8-bit Mat into an image.Gray.
func grayImage(m gocv.Mat) (*image.Gray, error) {
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("expected 8-bit single channel mat, got %v", m.Type())
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mat: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("expected gray image, got %T", img)
	}
	return g, nil
}

// sampleSafe returns the bilinear interpolation of the four pixels around p
// using 8.8 fixed-point weights. Points whose floor lies on the last row or
// column, or outside the image, read as 127.
func sampleSafe(img *image.Gray, p geometry.Point2D) int {
	b := img.Bounds()
	x := int(math.Floor(p.X))
	y := int(math.Floor(p.Y))
	if x < 0 || x >= b.Dx()-1 || y < 0 || y >= b.Dy()-1 {
		return outsideIntensity
	}

	dx := int(256 * (p.X - float64(x)))
	dy := int(256 * (p.Y - float64(y)))

	i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p00 := int(img.Pix[i])
	p10 := int(img.Pix[i+1])
	p01 := int(img.Pix[i+img.Stride])
	p11 := int(img.Pix[i+img.Stride+1])

	return (p00*(256-dx)*(256-dy) + p10*dx*(256-dy) + p01*(256-dx)*dy + p11*dx*dy) >> 16
}
