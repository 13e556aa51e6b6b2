package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ParallelEpsilon is the determinant magnitude below which two lines are
// treated as parallel.
const ParallelEpsilon = 0.001

// ErrTooFewPoints is returned when a fit has fewer points than it needs.
var ErrTooFewPoints = errors.New("too few points")

// Line is an infinite line in point-direction form.
type Line struct {
	Direction Point2D `json:"direction"` // unit length
	Origin    Point2D `json:"origin"`
}

// FitLine fits a line minimizing the sum of squared orthogonal distances
// (L2). The origin is the centroid of the points and the direction is the
// principal axis of their scatter matrix.
func FitLine(points []Point2D) (Line, error) {
	if len(points) < 2 {
		return Line{}, fmt.Errorf("fit line: %w (%d)", ErrTooFewPoints, len(points))
	}

	c := Centroid(points)
	var sxx, sxy, syy float64
	for _, p := range points {
		dx, dy := p.X-c.X, p.Y-c.Y
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	scatter := mat.NewSymDense(2, []float64{sxx, sxy, sxy, syy})
	var eig mat.EigenSym
	if ok := eig.Factorize(scatter, true); !ok {
		return Line{}, fmt.Errorf("fit line: eigen decomposition failed")
	}

	// Eigenvalues are ascending; the last column is the principal axis.
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	dir := Point2D{X: vecs.At(0, 1), Y: vecs.At(1, 1)}.Normalize()
	if dir == (Point2D{}) {
		return Line{}, fmt.Errorf("fit line: degenerate direction")
	}

	return Line{Direction: dir, Origin: c}, nil
}

// Intersect solves for the point shared by l and other. It returns false
// when the determinant magnitude is below ParallelEpsilon.
func (l Line) Intersect(other Line) (Point2D, bool) {
	u0, v0 := l.Direction.X, l.Direction.Y
	x0, y0 := l.Origin.X, l.Origin.Y
	u1, v1 := other.Direction.X, other.Direction.Y
	x1, y1 := other.Origin.X, other.Origin.Y

	a := x1*u0*v1 - y1*u0*u1 - x0*u1*v0 + y0*u0*u1
	b := -x0*v0*v1 + y0*u0*v1 + x1*v0*v1 - y1*v0*u1
	c := v1*u0 - v0*u1

	if math.Abs(c) < ParallelEpsilon {
		return Point2D{}, false
	}
	return Point2D{X: a / c, Y: b / c}, true
}
