// Package digits cuts a rectified Sudoku grid into its 81 cells and hands
// them to a digit recognizer, either an external process that exchanges
// files or an in-process Tesseract client.
package digits

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

const (
	// GridSize is the number of cells per grid side.
	GridSize = 9
	// CellCount is the number of cells in a grid.
	CellCount = GridSize * GridSize
	// CellSize is the side of an exported cell image in pixels.
	CellSize = 28

	gridPixels     = 360
	marginFraction = 0.05
	maxCropFactor  = 5 // fine crop walks at most 1/maxCropFactor of the cell

	binaryBorderMin = 180 // binary cells: grid lines are white
	grayBorderMax   = 100 // gray cells: grid lines are dark
	emptyInkRatio   = 0.03
)

// Cell is one normalized grid cell. Index is row-major, 0..80.
type Cell struct {
	Index  int
	Image  *image.Gray
	Binary bool // true when cut from the inverted binary image
}

// InkRatio returns the fraction of digit-colored pixels in the central half
// of the cell.
func (c Cell) InkRatio() float64 {
	b := c.Image.Bounds()
	inner := image.Rect(b.Min.X+b.Dx()/4, b.Min.Y+b.Dy()/4, b.Max.X-b.Dx()/4, b.Max.Y-b.Dy()/4)
	if inner.Empty() {
		return 0
	}
	ink := 0
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			v := c.Image.GrayAt(x, y).Y
			if (c.Binary && v > 127) || (!c.Binary && v < 128) {
				ink++
			}
		}
	}
	return float64(ink) / float64(inner.Dx()*inner.Dy())
}

// IsEmpty reports whether the cell holds no digit.
func (c Cell) IsEmpty() bool {
	return c.InkRatio() < emptyInkRatio
}

// ForOCR returns the cell as dark text on a light background.
func (c Cell) ForOCR() image.Image {
	if c.Binary {
		return imaging.Invert(c.Image)
	}
	return c.Image
}

// ExtractCells resizes a rectified grid to 360x360 and cuts it into 81
// cells. binary selects the border color rule used by the fine crop.
func ExtractCells(rectified gocv.Mat, binary bool) ([]Cell, error) {
	if rectified.Empty() {
		return nil, fmt.Errorf("empty grid image")
	}

	gray := rectified
	if rectified.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(rectified, &gray, gocv.ColorBGRToGray)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Point{X: gridPixels, Y: gridPixels}, 0, 0, gocv.InterpolationLinear)

	img, err := resized.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert grid image: %w", err)
	}
	return CellsFromImage(toGray(img), binary), nil
}

// CellsFromImage cuts a square grid image into 81 CellSize x CellSize cells.
func CellsFromImage(grid *image.Gray, binary bool) []Cell {
	b := grid.Bounds()
	pitchX := b.Dx() / GridSize
	pitchY := b.Dy() / GridSize
	marginX := int(marginFraction * float64(pitchX))
	marginY := int(marginFraction * float64(pitchY))

	cells := make([]Cell, 0, CellCount)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			x0 := b.Min.X + col*pitchX
			y0 := b.Min.Y + row*pitchY
			coarse := image.Rect(x0+marginX, y0+marginY, x0+pitchX-marginX, y0+pitchY-marginY)

			fine := fineCrop(grid, coarse, binary)
			crop := imaging.Crop(grid, fine)
			resized := imaging.Resize(crop, CellSize, CellSize, imaging.Lanczos)

			cells = append(cells, Cell{
				Index:  row*GridSize + col,
				Image:  toGray(resized),
				Binary: binary,
			})
		}
	}
	return cells
}

// fineCrop shrinks r by walking inward from the midpoint of each side while
// the pixel still belongs to a grid line, at most 1/5 of the side.
func fineCrop(img *image.Gray, r image.Rectangle, binary bool) image.Rectangle {
	isBorder := func(x, y int) bool {
		v := img.GrayAt(x, y).Y
		if binary {
			return v > binaryBorderMin
		}
		return v < grayBorderMax
	}

	limitX := r.Dx() / maxCropFactor
	limitY := r.Dy() / maxCropFactor
	midX := (r.Min.X + r.Max.X) / 2
	midY := (r.Min.Y + r.Max.Y) / 2

	left := r.Min.X
	for left < r.Min.X+limitX && isBorder(left, midY) {
		left++
	}
	right := r.Max.X - 1
	for right > r.Max.X-1-limitX && isBorder(right, midY) {
		right--
	}
	top := r.Min.Y
	for top < r.Min.Y+limitY && isBorder(midX, top) {
		top++
	}
	bottom := r.Max.Y - 1
	for bottom > r.Max.Y-1-limitY && isBorder(midX, bottom) {
		bottom--
	}

	return image.Rect(left, top, right+1, bottom+1)
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
