package fiducial

import (
	"errors"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

func newTestDetector(t *testing.T, p Params) *Detector {
	t.Helper()
	d, err := NewDetector(p)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

func TestNewDetectorRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.BlockSize = 2
	if _, err := NewDetector(p); err == nil {
		t.Error("expected error for invalid params")
	}
}

func TestDetectEmptyFrame(t *testing.T) {
	d := newTestDetector(t, DefaultParams())
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := d.Detect(empty); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("err = %v, want ErrEmptyFrame", err)
	}
}

func TestDetectBlankFrame(t *testing.T) {
	d := newTestDetector(t, DefaultParams())
	frame := whiteFrame(320, 240)
	defer frame.Close()

	res, err := d.Detect(frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	defer res.Close()
	if res.Status != StatusNotFound || !errors.Is(res.Err, ErrNotFound) {
		t.Errorf("status = %v (%v), want not found", res.Status, res.Err)
	}
}

func TestDetectGrid(t *testing.T) {
	d := newTestDetector(t, DefaultParams())
	frame := gridFrame()
	defer frame.Close()

	res, err := d.Detect(frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	defer res.Close()

	if res.Status != StatusFound {
		t.Fatalf("status = %v (%v), want found", res.Status, res.Err)
	}

	want := geometry.Quad{
		{X: 59.5, Y: 59.5},
		{X: 59.5, Y: 419.5},
		{X: 419.5, Y: 419.5},
		{X: 419.5, Y: 59.5},
	}
	for i := range want {
		if dist := res.Corners[i].Distance(want[i]); dist > 1 {
			t.Errorf("corner %d = %v, want %v", i, res.Corners[i], want[i])
		}
	}

	if res.Rectified == nil {
		t.Fatal("no rectified image")
	}
	if w, h := res.Rectified.Cols(), res.Rectified.Rows(); abs(w-360) > 1 || abs(h-360) > 1 {
		t.Errorf("rectified size = %dx%d, want about 360x360", w, h)
	}
	if !res.HasPose || res.Pose.Translation.Z >= 0 {
		t.Errorf("pose = %+v, want a pose in front of the camera", res.Pose)
	}

	// Frame corners map to the rectified image corners and back.
	p, ok := res.Rectification.Forward.Apply(res.Corners.BottomRight())
	if !ok || p.Distance(geometry.NewPoint2D(float64(res.Rectification.Width-1), float64(res.Rectification.Height-1))) > 1e-3 {
		t.Errorf("bottom-right maps to %v", p)
	}
	back, ok := res.Rectification.BackProject(p)
	if !ok || back.Distance(res.Corners.BottomRight()) > 1e-3 {
		t.Errorf("back-projection = %v, want %v", back, res.Corners.BottomRight())
	}
}

func TestRotatedSquarePipeline(t *testing.T) {
	const side = 200.0
	center := geometry.NewPoint2D(200, 200)
	outer := rotatedSquare(100, 100, side, center, 5)
	inner := rotatedSquare(125, 125, side-50, center, 5)

	frame := whiteFrame(400, 400)
	defer frame.Close()
	fillQuad(&frame, outer, black)
	fillQuad(&frame, inner, white)

	p := DefaultMarkerParams()
	gray, binary := Binarize(frame, p)
	defer gray.Close()
	defer binary.Close()

	cand, err := FindMarkerCandidate(FindContourTree(binary), 400*400, p)
	if err != nil {
		t.Fatalf("FindMarkerCandidate: %v", err)
	}

	img, err := grayImage(gray)
	if err != nil {
		t.Fatalf("grayImage: %v", err)
	}
	corners := RefineCorners(img, cand.Quad().Normalized(), p.Intervals()).Corners.Ordered()

	for i, l := range corners.SideLengths() {
		if math.Abs(l-side)/side > 0.02 {
			t.Errorf("side %d length = %.2f, want %.0f within 2%%", i, l, side)
		}
	}
	for i := range outer {
		if d := corners[i].Distance(outer[i]); d > 1.5 {
			t.Errorf("corner %d = %v, want %v", i, corners[i], outer[i])
		}
	}

	rect, err := ComputeRectification(corners)
	if err != nil {
		t.Fatalf("ComputeRectification: %v", err)
	}
	ratio := float64(rect.Width) / float64(rect.Height)
	if math.Abs(ratio-1) > 0.02 {
		t.Errorf("rectified %dx%d is not square", rect.Width, rect.Height)
	}
}

func TestDetectMarker(t *testing.T) {
	want, err := DecodeCells(testMarker)
	if err != nil {
		t.Fatalf("DecodeCells: %v", err)
	}

	for _, deg := range []float64{0, 5, -8} {
		frame := markerFrame(testMarker, deg)
		d := newTestDetector(t, DefaultMarkerParams())
		res, err := d.Detect(frame)
		frame.Close()
		if err != nil {
			t.Fatalf("%v deg: Detect: %v", deg, err)
		}

		if res.Status != StatusFound {
			t.Errorf("%v deg: status = %v (%v), want found", deg, res.Status, res.Err)
		} else {
			if res.Marker != want {
				t.Errorf("%v deg: marker = %v, want %v", deg, res.Marker, want)
			}
			if !res.HasPose || res.Pose.Translation.Z >= 0 {
				t.Errorf("%v deg: pose = %+v, want a pose in front of the camera", deg, res.Pose)
			}
		}
		res.Close()
	}
}

func TestDetectMarkerQuarterTurn(t *testing.T) {
	base, err := DecodeCells(testMarker)
	if err != nil {
		t.Fatalf("DecodeCells: %v", err)
	}

	frame := markerFrame(rotateCW(testMarker), 3)
	defer frame.Close()

	res, err := newTestDetector(t, DefaultMarkerParams()).Detect(frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	defer res.Close()

	if res.Status != StatusFound {
		t.Fatalf("status = %v (%v), want found", res.Status, res.Err)
	}
	if res.Marker.Code != base.Code || res.Marker.Rotation != (base.Rotation+1)%4 {
		t.Errorf("marker = %v, want code %#04x rotation %d", res.Marker, base.Code, (base.Rotation+1)%4)
	}
}

func TestDetectUniformMarkerRejected(t *testing.T) {
	tests := []struct {
		name string
		g    CellGrid
	}{
		{"all black", CellGrid{}},
		{"all white inside", cellsFromInner([4]string{"1111", "1111", "1111", "1111"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := markerFrame(tt.g, 4)
			defer frame.Close()

			res, err := newTestDetector(t, DefaultMarkerParams()).Detect(frame)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			defer res.Close()
			if res.Status != StatusInvalidMarker || !errors.Is(res.Err, ErrInvalidMarker) {
				t.Errorf("status = %v (%v), want invalid marker", res.Status, res.Err)
			}
			if res.HasPose {
				t.Error("pose computed for an invalid marker")
			}
		})
	}
}

func TestComputeRectificationDegenerate(t *testing.T) {
	p := geometry.NewPoint2D(50, 50)
	tests := []struct {
		name    string
		corners geometry.Quad
	}{
		{"coincident", geometry.Quad{p, p, p, p}},
		{"flat", geometry.Quad{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 100, Y: 1}, {X: 100, Y: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeRectification(tt.corners); !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("err = %v, want ErrDegenerateGeometry", err)
			}
		})
	}
}

func TestDrawOverlay(t *testing.T) {
	frame := gridFrame()
	defer frame.Close()

	res, err := newTestDetector(t, DefaultParams()).Detect(frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	defer res.Close()

	DrawOverlay(&frame, res)
	tl := res.Corners.TopLeft().ImagePoint()
	v := frame.GetVecbAt(tl.Y, tl.X)
	// BGR green
	if v[0] != 0 || v[1] != 255 || v[2] != 0 {
		t.Errorf("top-left corner pixel = %v, want green", v)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusFound:         "found",
		StatusNotFound:      "not found",
		StatusDegenerate:    "degenerate",
		StatusInvalidMarker: "invalid marker",
		Status(42):          "Status(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
