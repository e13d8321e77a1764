// Package postprocess - Non-Maximum Suppression over detection boxes.
package postprocess

import "github.com/pkg/errors"

// ErrInvalidArgument reports malformed inputs: a boxes slice whose length is
// not a multiple of 4, a boxes/scores/group-ids length mismatch, or an offset
// outside {0, 1}. It is returned before any suppression work happens; there
// are no partial results.
var ErrInvalidArgument = errors.New("invalid argument")

// validateInputs checks the shared single-group preconditions and returns the
// number of boxes.
func validateInputs(boxes, scores []float32, offset int) (int, error) {
	if len(boxes)%4 != 0 {
		return 0, errors.Wrapf(ErrInvalidArgument,
			"boxes length %d is not a multiple of 4", len(boxes))
	}
	n := len(boxes) / 4
	if n != len(scores) {
		return 0, errors.Wrapf(ErrInvalidArgument,
			"got %d boxes but %d scores", n, len(scores))
	}
	if offset != 0 && offset != 1 {
		return 0, errors.Wrapf(ErrInvalidArgument,
			"offset must be 0 or 1, got %d", offset)
	}
	return n, nil
}
