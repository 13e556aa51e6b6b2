package digits

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedResults is returned for a results file that does not hold
// exactly 81 digits.
var ErrMalformedResults = errors.New("malformed results")

// Grid holds recognized digits indexed [row][col]; 0 marks an empty cell.
type Grid [GridSize][GridSize]int

// Set stores the digit of the cell with the given row-major index.
func (g *Grid) Set(index, digit int) {
	g[index/GridSize][index%GridSize] = digit
}

// Filled returns the number of non-empty cells.
func (g Grid) Filled() int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func (g Grid) String() string {
	var sb strings.Builder
	for r, row := range g {
		if r > 0 && r%3 == 0 {
			sb.WriteString("------+-------+------\n")
		}
		for c, v := range row {
			if c > 0 && c%3 == 0 {
				sb.WriteString("| ")
			}
			if v == 0 {
				sb.WriteString(".")
			} else {
				sb.WriteString(strconv.Itoa(v))
			}
			if c < GridSize-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseResults reads 81 whitespace separated digits in row-major order.
func ParseResults(r io.Reader) (Grid, error) {
	var g Grid
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	n := 0
	for sc.Scan() {
		if n == CellCount {
			return Grid{}, fmt.Errorf("%w: more than %d values", ErrMalformedResults, CellCount)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil || v < 0 || v > 9 {
			return Grid{}, fmt.Errorf("%w: value %d is %q", ErrMalformedResults, n, sc.Text())
		}
		g.Set(n, v)
		n++
	}
	if err := sc.Err(); err != nil {
		return Grid{}, fmt.Errorf("failed to read results: %w", err)
	}
	if n != CellCount {
		return Grid{}, fmt.Errorf("%w: got %d values, want %d", ErrMalformedResults, n, CellCount)
	}
	return g, nil
}

// LoadResults parses a results file.
func LoadResults(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return Grid{}, err
	}
	defer f.Close()
	return ParseResults(f)
}
