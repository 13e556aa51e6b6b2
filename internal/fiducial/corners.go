package fiducial

import (
	"image"

	"sudoku-ar/pkg/geometry"
)

// Refinement holds the per-side edge samples, the fitted lines and the
// resulting corners of one quadrilateral.
type Refinement struct {
	Corners  geometry.Quad
	Samples  [4][]EdgeSample
	Lines    [4]geometry.Line
	LineOK   [4]bool
	Parallel int // corner intersections that fell back to the coarse corner
}

// RefineCorners locates sub-pixel edges on every side of the coarse quad,
// fits a line per side and intersects adjacent lines. The coarse quad must
// be normalized (negative signed area, topmost corner first). Corner i of
// the result lies between side i and side i+1, so the result starts at the
// second coarse corner; a corner whose lines are parallel keeps its coarse
// value.
func RefineCorners(img *image.Gray, coarse geometry.Quad, intervals int) Refinement {
	outward := 1.0
	if geometry.SignedArea(coarse.Points()) < 0 {
		outward = -1
	}

	ref := Refinement{Corners: coarse.Shift(1)}
	for side := 0; side < 4; side++ {
		from := coarse[side]
		to := coarse[(side+1)%4]
		step := to.Sub(from).Scale(1 / float64(intervals))
		stripe := NewStripe(step, outward)

		samples := make([]EdgeSample, 0, intervals-1)
		points := make([]geometry.Point2D, 0, intervals-1)
		for k := 1; k < intervals; k++ {
			s := LocateEdge(img, stripe, from.Add(step.Scale(float64(k))))
			samples = append(samples, s)
			points = append(points, s.Point)
		}
		ref.Samples[side] = samples

		line, err := geometry.FitLine(points)
		if err == nil {
			ref.Lines[side] = line
			ref.LineOK[side] = true
		}
	}

	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		if !ref.LineOK[i] || !ref.LineOK[j] {
			ref.Parallel++
			continue
		}
		p, ok := ref.Lines[i].Intersect(ref.Lines[j])
		if !ok {
			ref.Parallel++
			continue
		}
		ref.Corners[i] = p
	}
	return ref
}
