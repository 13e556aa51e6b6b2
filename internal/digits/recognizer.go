package digits

import (
	"context"
	"errors"
)

// ErrExternalToolUnavailable is returned when the recognizer process cannot
// be run or produces no results in time.
var ErrExternalToolUnavailable = errors.New("external recognizer unavailable")

// Recognizer turns 81 cells into a digit grid.
type Recognizer interface {
	Recognize(ctx context.Context, cells []Cell) (Grid, error)
}
