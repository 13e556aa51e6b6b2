package digits

import (
	"errors"
	"strings"
	"testing"
)

func resultsText(digit func(i int) int) string {
	var sb strings.Builder
	for i := 0; i < CellCount; i++ {
		if i > 0 {
			if i%GridSize == 0 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(string(rune('0' + digit(i))))
	}
	sb.WriteString("\n")
	return sb.String()
}

func TestParseResults(t *testing.T) {
	text := resultsText(func(i int) int { return i % 10 })
	g, err := ParseResults(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseResults: %v", err)
	}
	for i := 0; i < CellCount; i++ {
		if got := g[i/GridSize][i%GridSize]; got != i%10 {
			t.Errorf("cell %d = %d, want %d", i, got, i%10)
		}
	}
}

func TestParseResultsErrors(t *testing.T) {
	valid := strings.Fields(resultsText(func(int) int { return 1 }))

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too few", strings.Join(valid[:80], " ")},
		{"too many", strings.Join(append(valid, "1"), " ")},
		{"not a number", strings.Join(append(valid[:80], "x"), " ")},
		{"out of range", strings.Join(append(valid[:80], "10"), " ")},
		{"negative", strings.Join(append(valid[:80], "-1"), " ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseResults(strings.NewReader(tt.input)); !errors.Is(err, ErrMalformedResults) {
				t.Errorf("err = %v, want ErrMalformedResults", err)
			}
		})
	}
}

func TestGridSetAndFilled(t *testing.T) {
	var g Grid
	g.Set(0, 5)
	g.Set(80, 9)
	g.Set(40, 1)

	if g[0][0] != 5 || g[8][8] != 9 || g[4][4] != 1 {
		t.Errorf("Set stored wrong cells: %v", g)
	}
	if got := g.Filled(); got != 3 {
		t.Errorf("Filled = %d, want 3", got)
	}
}

func TestGridString(t *testing.T) {
	var g Grid
	g.Set(0, 7)
	lines := strings.Split(strings.TrimRight(g.String(), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want 11", len(lines))
	}
	if lines[0] != "7 . . | . . . | . . ." {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[3] != "------+-------+------" {
		t.Errorf("separator = %q", lines[3])
	}
}

func TestParseDigit(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"7\n", 7},
		{" 3", 3},
		{"", 0},
		{"x", 0},
		{"0", 0},
		{"a9", 9},
	}
	for _, tt := range tests {
		if got := parseDigit(tt.text); got != tt.want {
			t.Errorf("parseDigit(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestOCRImage(t *testing.T) {
	cells := CellsFromImage(binaryGrid([][2]int{{0, 0}}), true)
	img := ocrImage(cells[0])

	if b := img.Bounds(); b.Dx() != ocrSize || b.Dy() != ocrSize {
		t.Fatalf("ocr image is %dx%d", b.Dx(), b.Dy())
	}
	for _, v := range img.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("ocr image has gray level %d", v)
		}
	}
	// Light background, dark digit in the middle.
	if img.GrayAt(2, 2).Y != 255 {
		t.Errorf("corner = %d, want 255", img.GrayAt(2, 2).Y)
	}
	if img.GrayAt(ocrSize/2, ocrSize/2).Y != 0 {
		t.Errorf("center = %d, want 0", img.GrayAt(ocrSize/2, ocrSize/2).Y)
	}
}
