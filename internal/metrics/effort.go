package metrics

import (
	"math"

	"github.com/san-kum/plantsim/internal/trajectory"
)

// Effort is the mean absolute input.
type Effort struct {
	sum     float64
	samples int
}

func NewEffort() *Effort { return &Effort{} }

func (e *Effort) Name() string { return "effort" }

func (e *Effort) Observe(s trajectory.Sample) {
	e.sum += math.Abs(s.Input)
	e.samples++
}

func (e *Effort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Effort) Reset() {
	e.sum = 0
	e.samples = 0
}

// Energy integrates the squared output over time with the rectangle rule.
type Energy struct {
	total    float64
	lastTime float64
	seen     bool
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "output_energy" }

func (e *Energy) Observe(s trajectory.Sample) {
	if e.seen {
		e.total += s.Output * s.Output * (s.Time - e.lastTime)
	}
	e.lastTime = s.Time
	e.seen = true
}

func (e *Energy) Value() float64 { return e.total }

func (e *Energy) Reset() { *e = Energy{} }

// TrackingError is the largest |input - output| seen.
type TrackingError struct {
	max float64
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (t *TrackingError) Name() string { return "max_tracking_error" }

func (t *TrackingError) Observe(s trajectory.Sample) {
	t.max = math.Max(t.max, math.Abs(s.Input-s.Output))
}

func (t *TrackingError) Value() float64 { return t.max }

func (t *TrackingError) Reset() { t.max = 0 }
