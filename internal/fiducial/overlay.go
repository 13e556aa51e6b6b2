package fiducial

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

var (
	coarseColor    = color.RGBA{R: 255, A: 255}
	refinedColor   = color.RGBA{B: 255, A: 255}
	unrefinedColor = color.RGBA{R: 255, G: 255, A: 255}
	lineColor      = color.RGBA{G: 255, B: 255, A: 255}

	// Indexed by canonical corner position.
	cornerColors = [4]color.RGBA{
		geometry.TopLeft:     {G: 255, A: 255},
		geometry.BottomLeft:  {R: 255, A: 255},
		geometry.BottomRight: {R: 255, G: 255, B: 255, A: 255},
		geometry.TopRight:    {A: 255},
	}
)

// DrawOverlay draws the coarse quadrilateral, the edge samples, the fitted
// sides and the refined corners of res onto dst.
func DrawOverlay(dst *gocv.Mat, res *Result) {
	if res == nil || res.Status == StatusNotFound {
		return
	}

	coarse := gocv.NewPointsVectorFromPoints([][]image.Point{res.Candidate.Corners[:]})
	defer coarse.Close()
	gocv.Polylines(dst, coarse, true, coarseColor, 1)

	for _, side := range res.Refinement.Samples {
		for _, s := range side {
			c := refinedColor
			if !s.Refined {
				c = unrefinedColor
			}
			gocv.Circle(dst, s.Point.ImagePoint(), 2, c, -1)
		}
	}

	if res.Status == StatusDegenerate && !res.Corners.IsFinite() {
		return
	}
	for i := 0; i < 4; i++ {
		a := res.Corners[i].ImagePoint()
		b := res.Corners[(i+1)%4].ImagePoint()
		gocv.Line(dst, a, b, lineColor, 1)
	}
	for i, p := range res.Corners {
		gocv.Circle(dst, p.ImagePoint(), 5, cornerColors[i], -1)
	}
}
