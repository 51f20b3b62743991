package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks bad durations or configuration. Never retried.
var ErrInvalidInput = errors.New("invalid input")

// WindowError reports a failed speech-engine call for one window.
type WindowError struct {
	Window int
	Err    error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window %d: transcription failed: %v", e.Window, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// CoverageError reports that too many windows remained unrecoverable after
// retries. Missing holds the failed window indices so a caller could
// resubmit just those.
type CoverageError struct {
	Expected int
	Missing  []int
}

func (e *CoverageError) Error() string {
	idx := make([]string, 0, len(e.Missing))
	for _, i := range e.Missing {
		idx = append(idx, fmt.Sprintf("%d", i))
	}
	return fmt.Sprintf("insufficient coverage: %d/%d windows missing (indices %s)",
		len(e.Missing), e.Expected, strings.Join(idx, ","))
}
