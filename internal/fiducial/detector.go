package fiducial

import (
	"errors"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"sudoku-ar/pkg/geometry"
)

// Status summarizes the outcome of one frame.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusDegenerate
	StatusInvalidMarker
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusDegenerate:
		return "degenerate"
	case StatusInvalidMarker:
		return "invalid marker"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result holds everything computed for one frame. Fields after Status are
// filled as far as the pipeline got.
type Result struct {
	Status Status
	Err    error // reason for a status other than StatusFound

	Candidate     QuadCandidate
	Coarse        geometry.Quad // normalized coarse corners
	Refinement    Refinement
	Corners       geometry.Quad // refined, canonical order
	Rectification Rectification
	Rectified     *gocv.Mat // owned by the caller, see Close

	Marker  MarkerCode
	Pose    Pose
	HasPose bool
}

// Close releases the rectified image.
func (r *Result) Close() error {
	if r.Rectified == nil {
		return nil
	}
	err := r.Rectified.Close()
	r.Rectified = nil
	return err
}

// Detector runs the fiducial pipeline on single frames. It holds no
// per-frame state and may be reused for a sequence of frames.
type Detector struct {
	params Params
}

// NewDetector validates p and returns a detector using it.
func NewDetector(p Params) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &Detector{params: p}, nil
}

// Params returns the detector configuration.
func (d *Detector) Params() Params {
	return d.params
}

// Binarize converts a frame to gray and applies the inverted adaptive mean
// threshold, so dark lines become white. The caller closes both Mats.
func Binarize(frame gocv.Mat, p Params) (gray, binary gocv.Mat) {
	gray = gocv.NewMat()
	switch frame.Channels() {
	case 1:
		frame.CopyTo(&gray)
	case 4:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	binary = gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &binary, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary,
		p.BlockSize, float32(p.Constant))
	gocv.BitwiseNot(binary, &binary)
	return gray, binary
}

// Detect runs the pipeline on one BGR (or gray) frame. Expected outcomes
// such as no fiducial in view are reported through Result.Status; the
// error is non-nil only for unusable input.
func (d *Detector) Detect(frame gocv.Mat) (*Result, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}
	p := d.params

	gray, binary := Binarize(frame, p)
	defer gray.Close()
	defer binary.Close()

	res := &Result{}

	tree := FindContourTree(binary)
	cand, err := FindCandidate(tree, frame.Cols()*frame.Rows(), p)
	if err != nil {
		return res.fail(StatusNotFound, err), nil
	}
	res.Candidate = cand
	res.Coarse = cand.Quad().Normalized()

	img, err := grayImage(gray)
	if err != nil {
		return nil, err
	}
	res.Refinement = RefineCorners(img, res.Coarse, p.Intervals())
	res.Corners = res.Refinement.Corners.Ordered()

	if !res.Corners.IsFinite() || !geometry.IsConvex(res.Corners.Points()) {
		return d.degenerate(res, fmt.Errorf("refined corners %v: %w", res.Corners, ErrDegenerateGeometry)), nil
	}

	rect, err := ComputeRectification(res.Corners)
	if err != nil {
		return d.degenerate(res, err), nil
	}
	res.Rectification = rect

	src := binary
	if p.RectifySource == RectifyGray {
		src = gray
	}
	warped := rect.Warp(src)
	res.Rectified = &warped

	poseCorners := res.Corners
	if p.Mode == ModeMarker {
		code, err := DecodeMarker(warped, p.MarkerThreshold)
		if err != nil {
			if p.Verbose {
				log.Printf("Detector: marker rejected: %v", err)
			}
			return res.fail(StatusInvalidMarker, err), nil
		}
		res.Marker = code
		poseCorners = poseCorners.Shift(-code.Rotation)
	}

	pose, err := EstimatePose(poseCorners, frame.Cols(), frame.Rows(), p.SideLength, p.FocalLength)
	if err != nil {
		return d.degenerate(res, err), nil
	}
	res.Pose = pose
	res.HasPose = true
	res.Status = StatusFound
	return res, nil
}

func (r *Result) fail(s Status, err error) *Result {
	r.Status = s
	r.Err = err
	return r
}

func (d *Detector) degenerate(res *Result, err error) *Result {
	if d.params.Verbose {
		log.Printf("Detector: degenerate geometry: %v", err)
	}
	if !errors.Is(err, ErrDegenerateGeometry) {
		err = fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}
	return res.fail(StatusDegenerate, err)
}
