package fiducial

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MarkerCells is the number of cells per marker side, border included.
const MarkerCells = 6

// CellGrid holds binarized marker cells indexed [row][col]; true is white.
type CellGrid [MarkerCells][MarkerCells]bool

// RotateCCW returns the grid rotated 90 degrees counter-clockwise.
func (g CellGrid) RotateCCW() CellGrid {
	var r CellGrid
	for i := 0; i < MarkerCells; i++ {
		for j := 0; j < MarkerCells; j++ {
			r[i][j] = g[j][MarkerCells-1-i]
		}
	}
	return r
}

// innerCode reads the inner 4x4 cells row-major, MSB first, white = 1.
func (g CellGrid) innerCode() uint16 {
	var code uint16
	for i := 1; i < MarkerCells-1; i++ {
		for j := 1; j < MarkerCells-1; j++ {
			code <<= 1
			if g[i][j] {
				code |= 1
			}
		}
	}
	return code
}

func (g CellGrid) borderIsBlack() bool {
	for i := 0; i < MarkerCells; i++ {
		for j := 0; j < MarkerCells; j++ {
			border := i == 0 || j == 0 || i == MarkerCells-1 || j == MarkerCells-1
			if border && g[i][j] {
				return false
			}
		}
	}
	return true
}

// MarkerCode identifies a decoded marker. Rotation is the number of 90
// degree counter-clockwise turns of the observed cells that produce the
// canonical (smallest) code.
type MarkerCode struct {
	Code     uint16
	Rotation int
}

func (c MarkerCode) String() string {
	return fmt.Sprintf("0x%04x (rotation %d)", c.Code, c.Rotation)
}

// DecodeCells validates the border and returns the rotation-invariant code.
func DecodeCells(g CellGrid) (MarkerCode, error) {
	if !g.borderIsBlack() {
		return MarkerCode{}, fmt.Errorf("white border cell: %w", ErrInvalidMarker)
	}

	cur := g
	best := MarkerCode{Code: cur.innerCode()}
	if best.Code == 0 || best.Code == 0xFFFF {
		return MarkerCode{}, fmt.Errorf("uniform code 0x%04x: %w", best.Code, ErrInvalidMarker)
	}
	for k := 1; k < 4; k++ {
		cur = cur.RotateCCW()
		if code := cur.innerCode(); code < best.Code {
			best = MarkerCode{Code: code, Rotation: k}
		}
	}
	return best, nil
}

// SampleCells area-resamples a rectified marker to 6x6 and binarizes every
// cell against threshold.
func SampleCells(rectified gocv.Mat, threshold int) (CellGrid, error) {
	var g CellGrid
	if rectified.Empty() {
		return g, fmt.Errorf("empty marker image: %w", ErrInvalidMarker)
	}

	gray := rectified
	if rectified.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(rectified, &gray, gocv.ColorBGRToGray)
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(gray, &small, image.Point{X: MarkerCells, Y: MarkerCells}, 0, 0, gocv.InterpolationArea)

	for i := 0; i < MarkerCells; i++ {
		for j := 0; j < MarkerCells; j++ {
			g[i][j] = int(small.GetUCharAt(i, j)) > threshold
		}
	}
	return g, nil
}

// DecodeMarker samples and decodes a rectified marker image.
func DecodeMarker(rectified gocv.Mat, threshold int) (MarkerCode, error) {
	g, err := SampleCells(rectified, threshold)
	if err != nil {
		return MarkerCode{}, err
	}
	return DecodeCells(g)
}
