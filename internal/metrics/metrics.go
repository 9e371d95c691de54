// Package metrics summarises a trajectory with scalar figures such as
// overshoot and settling time. Metrics observe samples one at a time so they
// can be fed from a stored trajectory or from a live run.
package metrics

import (
	"github.com/san-kum/plantsim/internal/trajectory"
)

type Metric interface {
	Name() string
	Observe(s trajectory.Sample)
	Value() float64
	Reset()
}

type Result struct {
	Name  string
	Value float64
}

// Evaluate resets each metric, feeds it every sample of t and returns the
// values in the order the metrics were given.
func Evaluate(t *trajectory.Trajectory, ms ...Metric) []Result {
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < t.Len(); i++ {
		s := t.At(i)
		for _, m := range ms {
			m.Observe(s)
		}
	}
	out := make([]Result, len(ms))
	for i, m := range ms {
		out[i] = Result{Name: m.Name(), Value: m.Value()}
	}
	return out
}

// StepResponse returns the usual set of step-response figures for a
// reference level.
func StepResponse(target float64) []Metric {
	return []Metric{
		NewFinalValue(),
		NewOvershoot(target),
		NewRiseTime(target),
		NewSettlingTime(target, 0.02),
		NewTrackingError(),
		NewEffort(),
		NewEnergy(),
	}
}
