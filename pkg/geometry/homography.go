package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a projective system has no unique solution.
var ErrSingular = errors.New("singular projective system")

// Homography is a 3x3 projective transform stored row-major.
type Homography [9]float64

// ComputeHomography returns H with H*src[i] ~ dst[i] for the four
// correspondences, normalized so that H[8] == 1.
func ComputeHomography(src, dst [4]Point2D) (Homography, error) {
	// Build 8x8 system A*h = b for the 8 unknowns (h00..h21), h22=1.
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		// x' = (h00 X + h01 Y + h02)/(h20 X + h21 Y + 1)
		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)

		// y' = (h10 X + h11 Y + h12)/(h20 X + h21 Y + 1)
		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("compute homography: %w: %v", ErrSingular, err)
	}

	var H Homography
	for i := 0; i < 8; i++ {
		H[i] = h.AtVec(i)
	}
	H[8] = 1
	for _, v := range H {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, fmt.Errorf("compute homography: %w", ErrSingular)
		}
	}
	return H, nil
}

// Dense returns the transform as a gonum matrix.
func (h Homography) Dense() *mat.Dense {
	return mat.NewDense(3, 3, h[:])
}

// Inverse returns the inverse transform, normalized so that its last
// element is 1 when that element is non-zero.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.Dense()); err != nil {
		return Homography{}, fmt.Errorf("invert homography: %w: %v", ErrSingular, err)
	}

	var r Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = inv.At(i, j)
		}
	}
	if s := r[8]; math.Abs(s) > 1e-12 {
		for i := range r {
			r[i] /= s
		}
	}
	return r, nil
}

// Apply maps p through the transform. It returns false when p maps to
// the line at infinity.
func (h Homography) Apply(p Point2D) (Point2D, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point2D{}, false
	}
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}
