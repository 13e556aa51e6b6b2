package fiducial

import (
	"image"

	"sudoku-ar/pkg/geometry"
)

const (
	stripeWidth     = 3
	minStripeLength = 5
)

// Stripe is a small rectangular sampling window centered on an interval
// point of a side: Width columns along the side, Length rows across it.
type Stripe struct {
	Length        int
	Along         geometry.Point2D // unit vector along the side
	Perpendicular geometry.Point2D // unit vector pointing out of the quad
	values        []int
}

// NewStripe sizes a stripe for the given interval step. outward selects the
// sign of the perpendicular: +1 keeps (along.y, -along.x), -1 flips it.
func NewStripe(step geometry.Point2D, outward float64) *Stripe {
	length := int(0.8 * step.Norm())
	if length < minStripeLength {
		length = minStripeLength
	}
	length |= 1

	along := step.Normalize()
	perp := geometry.Point2D{X: along.Y, Y: -along.X}
	if outward < 0 {
		perp = perp.Scale(-1)
	}

	return &Stripe{
		Length:        length,
		Along:         along,
		Perpendicular: perp,
		values:        make([]int, length*stripeWidth),
	}
}

// Sample fills the stripe with intensities around center. Row r holds the
// cells at perpendicular offset r - Length/2; column c holds along offset c-1.
func (s *Stripe) Sample(img *image.Gray, center geometry.Point2D) {
	half := s.Length >> 1
	for r := 0; r < s.Length; r++ {
		n := float64(r - half)
		for c := 0; c < stripeWidth; c++ {
			m := float64(c - 1)
			p := center.Add(s.Along.Scale(m)).Add(s.Perpendicular.Scale(n))
			s.values[r*stripeWidth+c] = sampleSafe(img, p)
		}
	}
}

// At returns the sampled intensity at row r, column c.
func (s *Stripe) At(r, c int) int {
	return s.values[r*stripeWidth+c]
}

// SobelResponses applies the vertical 3x3 Sobel kernel to every interior
// row. Element k is the response centered on row k+1.
func (s *Stripe) SobelResponses() []float64 {
	out := make([]float64, s.Length-2)
	for k := range out {
		r := k + 1
		top := s.At(r-1, 0) + 2*s.At(r-1, 1) + s.At(r-1, 2)
		bottom := s.At(r+1, 0) + 2*s.At(r+1, 1) + s.At(r+1, 2)
		out[k] = float64(bottom - top)
	}
	return out
}
