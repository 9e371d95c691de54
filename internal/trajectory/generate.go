package trajectory

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/san-kum/plantsim/internal/plant"
)

const (
	// spanTolerance is the relative slack allowed between span/dt and the
	// nearest whole number of samples.
	spanTolerance = 1e-9

	maxSamples = 1 << 27
)

// Stepper advances a plant by one sample. *plant.Simulator implements it.
type Stepper interface {
	Step(u float64) (float64, error)
}

// StepperFunc adapts an ordinary function to Stepper.
type StepperFunc func(u float64) (float64, error)

func (f StepperFunc) Step(u float64) (float64, error) { return f(u) }

// Steps returns the number of intervals N = span/dt. The generated
// trajectory has N+1 samples at t_k = k·dt, k = 0..N.
func Steps(span, dt float64) (int, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return 0, fmt.Errorf("%w: sample interval must be positive, got %v", plant.ErrInvalidParameter, dt)
	}
	if math.IsNaN(span) || math.IsInf(span, 0) || span <= 0 {
		return 0, fmt.Errorf("%w: span %v", ErrInvalidSpan, span)
	}
	ratio := span / dt
	n := math.Round(ratio)
	if n < 1 || math.Abs(ratio-n) > spanTolerance*ratio {
		return 0, fmt.Errorf("%w: span %v, dt %v", ErrInvalidSpan, span, dt)
	}
	if n > maxSamples {
		return 0, fmt.Errorf("%w: span %v needs %.0f samples at dt %v", ErrInvalidSpan, span, n, dt)
	}
	return int(n), nil
}

// Samples validates span and returns a lazy sequence of samples. Each pull
// feeds the profile value at t_k to st and yields the resulting output; a
// stepper error is yielded once and ends the sequence. The sequence can be
// ranged over again, but it continues from whatever state st is in.
func Samples(st Stepper, span, dt float64, p Profile) (iter.Seq2[Sample, error], error) {
	n, err := Steps(span, dt)
	if err != nil {
		return nil, err
	}
	if st == nil || p == nil {
		return nil, fmt.Errorf("%w: nil stepper or profile", plant.ErrInvalidParameter)
	}

	return func(yield func(Sample, error) bool) {
		for k := 0; k <= n; k++ {
			t := float64(k) * dt
			u := p.Value(k, t)
			y, err := st.Step(u)
			if err != nil {
				yield(Sample{Index: k, Time: t, Input: u}, fmt.Errorf("sample %d (t=%.6g): %w", k, t, err))
				return
			}
			if !yield(Sample{Index: k, Time: t, Input: u, Output: y}, nil) {
				return
			}
		}
	}, nil
}

// Generate drives st over span with profile p and collects the trajectory,
// input included. The caller supplies a Ready simulator; it advances by one
// step per sample.
func Generate(ctx context.Context, st Stepper, span, dt float64, p Profile) (*Trajectory, error) {
	seq, err := Samples(st, span, dt, p)
	if err != nil {
		return nil, err
	}
	n, _ := Steps(span, dt)

	traj := &Trajectory{
		Time:   make([]float64, 0, n+1),
		Input:  make([]float64, 0, n+1),
		Output: make([]float64, 0, n+1),
	}
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		if s.Index%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		traj.Time = append(traj.Time, s.Time)
		traj.Input = append(traj.Input, s.Input)
		traj.Output = append(traj.Output, s.Output)
	}
	return traj, nil
}
