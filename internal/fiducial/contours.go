package fiducial

import (
	"image"

	"gocv.io/x/gocv"
)

// noContour marks an absent hierarchy link.
const noContour = -1

// Contour is one traced outline together with its hierarchy links, given
// as indices into the owning ContourTree.
type Contour struct {
	Points     []image.Point
	Next       int
	Prev       int
	FirstChild int
	Parent     int
}

// ContourTree is an arena of contours with their full nesting topology.
type ContourTree struct {
	Contours []Contour
}

// FindContourTree traces every contour of a binary image with full
// topology and simple chain approximation.
func FindContourTree(binary gocv.Mat) ContourTree {
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	contours := gocv.FindContoursWithParams(binary, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	n := contours.Size()
	tree := ContourTree{Contours: make([]Contour, n)}
	for i := 0; i < n; i++ {
		c := Contour{
			Points:     contours.At(i).ToPoints(),
			Next:       noContour,
			Prev:       noContour,
			FirstChild: noContour,
			Parent:     noContour,
		}
		if !hierarchy.Empty() {
			h := hierarchy.GetVeciAt(0, i)
			c.Next, c.Prev, c.FirstChild, c.Parent = int(h[0]), int(h[1]), int(h[2]), int(h[3])
		}
		tree.Contours[i] = c
	}
	return tree
}

// Len returns the number of contours.
func (t ContourTree) Len() int {
	return len(t.Contours)
}

// Children returns the indices of the direct children of contour i: its
// first child followed by that child's siblings.
func (t ContourTree) Children(i int) []int {
	var out []int
	for c := t.Contours[i].FirstChild; c != noContour; c = t.Contours[c].Next {
		out = append(out, c)
	}
	return out
}
