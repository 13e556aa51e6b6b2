package fiducial

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

// QuadCandidate is a contour that approximates to a quadrilateral and
// passed the area (and, for grids, child) checks.
type QuadCandidate struct {
	Corners  [4]image.Point
	Area     int // bounding-box area in pixels
	Children int // quadrilateral children, grid mode only
	Index    int // contour index in the tree
}

// Quad returns the candidate corners as floating-point points in contour order.
func (c QuadCandidate) Quad() geometry.Quad {
	var q geometry.Quad
	for i, p := range c.Corners {
		q[i] = geometry.FromImagePoint(p)
	}
	return q
}

// contourShape caches the polygon approximation of one contour.
type contourShape struct {
	corners []image.Point
	area    int
}

func (s contourShape) isQuad() bool {
	return len(s.corners) == 4
}

// shapeOf measures one contour: its bounding-box area and its polygon
// approximation with a tolerance of 2% of the arc length.
func shapeOf(pts []image.Point) contourShape {
	if len(pts) == 0 {
		return contourShape{}
	}
	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()

	r := gocv.BoundingRect(pv)
	s := contourShape{area: r.Dx() * r.Dy()}
	if len(pts) < 3 {
		return s
	}

	epsilon := 0.02 * gocv.ArcLength(pv, true)
	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()
	s.corners = approx.ToPoints()
	return s
}

func analyzeContours(tree ContourTree) []contourShape {
	shapes := make([]contourShape, tree.Len())
	for i, c := range tree.Contours {
		shapes[i] = shapeOf(c.Points)
	}
	return shapes
}

// areaInRange applies the configured limits and the fixed frame margin.
func areaInRange(area, frameArea int, p Params) bool {
	if area < p.MinArea || area > frameArea-FrameMargin {
		return false
	}
	if p.MaxArea > 0 && area > p.MaxArea {
		return false
	}
	return true
}

// countQuadChildren counts the direct children of contour i that
// approximate to quadrilaterals of at least MinChildArea.
func countQuadChildren(tree ContourTree, shapes []contourShape, i int) int {
	count := 0
	for _, c := range tree.Children(i) {
		if shapes[c].isQuad() && shapes[c].area >= MinChildArea {
			count++
		}
	}
	return count
}

// FindGridCandidate returns the quadrilateral that contains at least
// MinChildQuads quadrilateral children. With SelectFirst the first accepted
// contour wins, otherwise the largest.
func FindGridCandidate(tree ContourTree, frameArea int, p Params) (QuadCandidate, error) {
	shapes := analyzeContours(tree)

	var best QuadCandidate
	found := false
	for i, s := range shapes {
		if !s.isQuad() || !areaInRange(s.area, frameArea, p) {
			continue
		}
		children := countQuadChildren(tree, shapes, i)
		if children < MinChildQuads {
			continue
		}

		c := newCandidate(i, s, children)
		if p.Selection == SelectFirst {
			return c, nil
		}
		if !found || c.Area > best.Area {
			best = c
			found = true
		}
	}
	if !found {
		return QuadCandidate{}, fmt.Errorf("grid: %w", ErrNotFound)
	}
	return best, nil
}

// FindMarkerCandidate returns the largest in-range quadrilateral.
func FindMarkerCandidate(tree ContourTree, frameArea int, p Params) (QuadCandidate, error) {
	shapes := analyzeContours(tree)

	var best QuadCandidate
	found := false
	for i, s := range shapes {
		if !s.isQuad() || !areaInRange(s.area, frameArea, p) {
			continue
		}
		if !found || s.area > best.Area {
			best = newCandidate(i, s, 0)
			found = true
		}
	}
	if !found {
		return QuadCandidate{}, fmt.Errorf("marker: %w", ErrNotFound)
	}
	return best, nil
}

// FindCandidate dispatches on the detection mode.
func FindCandidate(tree ContourTree, frameArea int, p Params) (QuadCandidate, error) {
	if p.Mode == ModeMarker {
		return FindMarkerCandidate(tree, frameArea, p)
	}
	return FindGridCandidate(tree, frameArea, p)
}

func newCandidate(index int, s contourShape, children int) QuadCandidate {
	c := QuadCandidate{Area: s.area, Children: children, Index: index}
	copy(c.Corners[:], s.corners)
	return c
}
