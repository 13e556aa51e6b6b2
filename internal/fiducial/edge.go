package fiducial

import (
	"image"
	"math"

	"sudoku-ar/pkg/geometry"
)

// EdgeSample is the outcome of sub-pixel edge location at one interval
// point. Unrefined samples carry the unmodified interval point.
type EdgeSample struct {
	Point   geometry.Point2D
	Refined bool
}

// Refined tags a successfully refined edge point.
func Refined(p geometry.Point2D) EdgeSample {
	return EdgeSample{Point: p, Refined: true}
}

// Unrefined tags an interval point whose offset was not a finite number.
func Unrefined(p geometry.Point2D) EdgeSample {
	return EdgeSample{Point: p}
}

// LocateEdge samples the stripe around p and moves p along the stripe
// perpendicular to the parabola vertex of the strongest Sobel response.
func LocateEdge(img *image.Gray, s *Stripe, p geometry.Point2D) EdgeSample {
	s.Sample(img, p)
	responses := s.SobelResponses()
	if len(responses) == 0 {
		return Unrefined(p)
	}

	best := 0
	for k, v := range responses {
		if v > responses[best] {
			best = k
		}
	}

	y1 := responses[best]
	var y0, y2 float64
	if best > 0 {
		y0 = responses[best-1]
	}
	if best < len(responses)-1 {
		y2 = responses[best+1]
	}

	offset := (y2 - y0) / (4*y1 - 2*y0 - 2*y2)
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return Unrefined(p)
	}

	// Response k is centered on stripe row k+1.
	shift := float64(best+1-(s.Length>>1)) + offset
	return Refined(p.Add(s.Perpendicular.Scale(shift)))
}
