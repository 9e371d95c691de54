// Package trajectory drives a discrete plant over an input profile and
// collects the resulting time, input and output sequences.
//
// Generation is deterministic: re-running a scenario against a freshly reset
// simulator yields a bit-identical [Trajectory]. A [Source] hides whether the
// reference trajectory is replayed from golden data or computed live.
package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpan indicates a time span that is not a positive multiple
	// of the sample interval.
	ErrInvalidSpan = errors.New("trajectory: span is not a positive multiple of the sample interval")

	// ErrInvalidTrajectory indicates mismatched or non-monotonic sequences.
	ErrInvalidTrajectory = errors.New("trajectory: malformed trajectory")

	// ErrUnknownTrajectory indicates a replay lookup for a name that is not
	// stored.
	ErrUnknownTrajectory = errors.New("trajectory: unknown trajectory")

	// ErrUnknownProfile indicates an input profile kind the registry cannot
	// build.
	ErrUnknownProfile = errors.New("trajectory: unknown input profile")
)

// Trajectory holds sampled time, optional input and output sequences of equal
// length.
type Trajectory struct {
	Time   []float64
	Input  []float64
	Output []float64
}

// Sample is one (time, input, output) triple of a trajectory.
type Sample struct {
	Index  int
	Time   float64
	Input  float64
	Output float64
}

func (t *Trajectory) Len() int {
	return len(t.Time)
}

func (t *Trajectory) HasInput() bool {
	return t.Input != nil
}

// Validate checks the length invariants and that time is strictly
// increasing.
func (t *Trajectory) Validate() error {
	if len(t.Time) != len(t.Output) {
		return fmt.Errorf("%w: %d time samples but %d output samples", ErrInvalidTrajectory, len(t.Time), len(t.Output))
	}
	if t.Input != nil && len(t.Input) != len(t.Time) {
		return fmt.Errorf("%w: %d time samples but %d input samples", ErrInvalidTrajectory, len(t.Time), len(t.Input))
	}
	for i := 1; i < len(t.Time); i++ {
		if !(t.Time[i] > t.Time[i-1]) {
			return fmt.Errorf("%w: time not strictly increasing at index %d", ErrInvalidTrajectory, i)
		}
	}
	return nil
}

func (t *Trajectory) Clone() *Trajectory {
	c := &Trajectory{
		Time:   append([]float64(nil), t.Time...),
		Output: append([]float64(nil), t.Output...),
	}
	if t.Input != nil {
		c.Input = append([]float64{}, t.Input...)
	}
	return c
}

// At returns the i-th sample. Input is zero when the trajectory has none.
func (t *Trajectory) At(i int) Sample {
	s := Sample{Index: i, Time: t.Time[i], Output: t.Output[i]}
	if t.Input != nil {
		s.Input = t.Input[i]
	}
	return s
}

// Final returns the last output sample.
func (t *Trajectory) Final() (float64, bool) {
	if len(t.Output) == 0 {
		return 0, false
	}
	return t.Output[len(t.Output)-1], true
}
