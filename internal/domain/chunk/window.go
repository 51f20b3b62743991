package chunk

import "fmt"

// Window is one bounded time-slice of the source audio. Consecutive windows
// overlap by the planner's overlap so the speech engine keeps context across
// boundaries.
type Window struct {
	Index int
	Start float64
	End   float64
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 { return w.End - w.Start }

const (
	DefaultWindowSeconds  = 30.0
	DefaultOverlapSeconds = 2.0
)

// PlanWindows computes the overlapping windows covering [0, totalDuration].
// Window i starts at i*(window-overlap); the final window ends exactly at
// totalDuration even when shorter than the nominal length. The result is
// deterministic for identical inputs.
func PlanWindows(totalDuration, windowSeconds, overlapSeconds float64) ([]Window, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: total duration must be > 0, got %.3f", ErrInvalidInput, totalDuration)
	}
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("%w: window length must be > 0, got %.3f", ErrInvalidInput, windowSeconds)
	}
	if overlapSeconds < 0 || overlapSeconds >= windowSeconds {
		return nil, fmt.Errorf("%w: overlap %.3f must be in [0, window %.3f)", ErrInvalidInput, overlapSeconds, windowSeconds)
	}

	if totalDuration <= windowSeconds {
		return []Window{{Index: 0, Start: 0, End: totalDuration}}, nil
	}

	step := windowSeconds - overlapSeconds
	var out []Window
	for i := 0; ; i++ {
		start := float64(i) * step
		end := start + windowSeconds
		if end >= totalDuration {
			out = append(out, Window{Index: i, Start: start, End: totalDuration})
			break
		}
		out = append(out, Window{Index: i, Start: start, End: end})
	}
	return out, nil
}
