package fiducial

import "errors"

var (
	// ErrNotFound means no qualifying quadrilateral was found in the frame.
	ErrNotFound = errors.New("fiducial not found")
	// ErrDegenerateGeometry means the corners cannot be rectified or posed.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrInvalidMarker means the rectified candidate is not a valid marker.
	ErrInvalidMarker = errors.New("invalid marker")
	// ErrEmptyFrame is returned for an empty input image.
	ErrEmptyFrame = errors.New("empty frame")
)
