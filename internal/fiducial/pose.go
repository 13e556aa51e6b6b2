package fiducial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"sudoku-ar/pkg/geometry"
)

// minScale is the smallest accepted norm sum of the first two homography
// columns; below it the corners have collapsed.
const minScale = 1e-9

// Pose is the rigid transform from the fiducial frame to the camera frame.
// The camera looks along -Z, so a visible fiducial has Translation.Z < 0.
type Pose struct {
	Matrix      [16]float64 // row-major 4x4
	Translation r3.Vector
}

// Rotation returns the 3x3 rotation block, row-major.
func (p Pose) Rotation() [9]float64 {
	var r [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = p.Matrix[i*4+j]
		}
	}
	return r
}

// Distance returns the camera to fiducial distance in side-length units.
func (p Pose) Distance() float64 {
	return p.Translation.Norm()
}

// DistanceCM returns the distance in centimeters when the side length is
// given in meters.
func (p Pose) DistanceCM() float64 {
	return p.Distance() * 100
}

// EstimatePose recovers the pose of a square of the given side from its
// canonical image corners (TL, BL, BR, TR). focal is in pixels; 0 uses the
// frame width.
func EstimatePose(corners geometry.Quad, frameWidth, frameHeight int, side, focal float64) (Pose, error) {
	if side <= 0 {
		return Pose{}, fmt.Errorf("side length %g: %w", side, ErrDegenerateGeometry)
	}
	if focal <= 0 {
		focal = float64(frameWidth)
	}
	if focal <= 0 {
		return Pose{}, fmt.Errorf("focal length %g: %w", focal, ErrDegenerateGeometry)
	}

	// Camera-centered image coordinates, y up.
	cx, cy := float64(frameWidth)/2, float64(frameHeight)/2
	var centered [4]geometry.Point2D
	for i, p := range corners {
		centered[i] = geometry.Point2D{X: p.X - cx, Y: cy - p.Y}
	}

	h := side / 2
	model := [4]geometry.Point2D{
		{X: -h, Y: h},  // top-left
		{X: -h, Y: -h}, // bottom-left
		{X: h, Y: -h},  // bottom-right
		{X: h, Y: h},   // top-right
	}

	H, err := geometry.ComputeHomography(model, centered)
	if err != nil {
		return Pose{}, fmt.Errorf("pose: %w: %v", ErrDegenerateGeometry, err)
	}

	// diag(1/f, 1/f, -1) * H = lambda * [r1 r2 t]
	col := func(j int) r3.Vector {
		return r3.Vector{X: H[j] / focal, Y: H[3+j] / focal, Z: -H[6+j]}
	}
	m1, m2, m3 := col(0), col(1), col(2)

	n := m1.Norm() + m2.Norm()
	if n < minScale || math.IsNaN(n) {
		return Pose{}, fmt.Errorf("pose: zero scale: %w", ErrDegenerateGeometry)
	}
	lambda := 2 / n
	if m3.Z*lambda > 0 {
		lambda = -lambda
	}

	r1 := m1.Mul(lambda)
	r2 := m2.Mul(lambda)
	r3c := r1.Cross(r2)
	t := m3.Mul(lambda)

	rot, err := orthonormalize(r1, r2, r3c)
	if err != nil {
		return Pose{}, err
	}

	var pose Pose
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			pose.Matrix[i*4+j] = rot.At(i, j)
		}
	}
	pose.Matrix[3] = t.X
	pose.Matrix[7] = t.Y
	pose.Matrix[11] = t.Z
	pose.Matrix[15] = 1
	pose.Translation = t
	return pose, nil
}

// orthonormalize returns the rotation closest to the matrix with columns
// c1, c2, c3.
func orthonormalize(c1, c2, c3 r3.Vector) (*mat.Dense, error) {
	a := mat.NewDense(3, 3, []float64{
		c1.X, c2.X, c3.X,
		c1.Y, c2.Y, c3.Y,
		c1.Z, c2.Z, c3.Z,
	})

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, fmt.Errorf("pose: svd failed: %w", ErrDegenerateGeometry)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&u, v.T())
	if mat.Det(&r) < 0 {
		// Flip the axis of the smallest singular value.
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		r.Mul(&u, v.T())
	}
	return &r, nil
}
