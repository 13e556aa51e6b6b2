package fiducial

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func whiteFrame(w, h int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), h, w, gocv.MatTypeCV8UC3)
}

// fillRect fills the pixels [x0,x1) x [y0,y1).
func fillRect(img *gocv.Mat, x0, y0, x1, y1 int, c color.RGBA) {
	gocv.Rectangle(img, image.Rect(x0, y0, x1, y1), c, -1)
}

func fillQuad(img *gocv.Mat, q geometry.Quad, c color.RGBA) {
	pts := make([]image.Point, 4)
	for i, p := range q {
		pts[i] = image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(img, pv, c)
}

// rotatedSquare returns the canonical corners of an axis-aligned square
// [x0,x0+side] x [y0,y0+side] rotated by deg degrees about center.
func rotatedSquare(x0, y0, side float64, center geometry.Point2D, deg float64) geometry.Quad {
	q := geometry.Quad{
		{X: x0, Y: y0},
		{X: x0, Y: y0 + side},
		{X: x0 + side, Y: y0 + side},
		{X: x0 + side, Y: y0},
	}
	for i := range q {
		q[i] = rotateAbout(q[i], center, deg)
	}
	return q
}

func rotateAbout(p, center geometry.Point2D, deg float64) geometry.Point2D {
	s, c := math.Sincos(deg * math.Pi / 180)
	d := p.Sub(center)
	return geometry.Point2D{
		X: center.X + d.X*c - d.Y*s,
		Y: center.Y + d.X*s + d.Y*c,
	}
}

// gridFrame draws a 360 px Sudoku grid at (60,60) on a 480x480 frame with
// a 6 px outer border and 4 px inner lines.
func gridFrame() gocv.Mat {
	frame := whiteFrame(480, 480)
	drawGrid(&frame, 60, 60, 40)
	return frame
}

// drawGrid draws a 9x9 grid of the given cell size with its top-left
// corner at (x, y).
func drawGrid(img *gocv.Mat, x, y, cell int) {
	fillRect(img, x, y, x+9*cell, y+9*cell, black)
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			x0, x1 := cellSpan(x, cell, i)
			y0, y1 := cellSpan(y, cell, j)
			fillRect(img, x0, y0, x1, y1, white)
		}
	}
}

func cellSpan(origin, cell, i int) (int, int) {
	lo := origin + i*cell + 2
	hi := origin + (i+1)*cell - 2
	if i == 0 {
		lo = origin + 6
	}
	if i == 8 {
		hi = origin + 9*cell - 6
	}
	return lo, hi
}

// markerFrame draws a 6x6 marker of the given cells, 30 px per cell,
// centered in a 400x400 frame and rotated by deg degrees.
func markerFrame(g CellGrid, deg float64) gocv.Mat {
	const cell = 30.0
	center := geometry.NewPoint2D(200, 200)
	origin := 200 - 3*cell

	frame := whiteFrame(400, 400)
	fillQuad(&frame, rotatedSquare(origin, origin, 6*cell, center, deg), black)
	for i := 0; i < MarkerCells; i++ {
		for j := 0; j < MarkerCells; j++ {
			if !g[i][j] {
				continue
			}
			x := origin + float64(j)*cell
			y := origin + float64(i)*cell
			fillQuad(&frame, rotatedSquare(x, y, cell, center, deg), white)
		}
	}
	return frame
}

// cellsFromInner builds a marker grid with a black border around the
// given inner rows, where '1' is white.
func cellsFromInner(rows [4]string) CellGrid {
	var g CellGrid
	for i, row := range rows {
		for j, ch := range row {
			g[i+1][j+1] = ch == '1'
		}
	}
	return g
}

var testMarker = cellsFromInner([4]string{
	"1000",
	"0110",
	"0010",
	"1001",
})

func rectOf(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(x0, y0, x1, y1)
}
